package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"leverflow/errs"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Leverage LeverageConfig `yaml:"leverage"`
	Trading  TradingConfig  `yaml:"trading"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Credentials are never read from the configuration file; they come from
// the environment only so the file can be committed. The secret is used
// solely as an HMAC key and must never be logged.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

type ExchangeConfig struct {
	BaseURL        string               `yaml:"base_url"`
	Timeout        time.Duration        `yaml:"timeout"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	ConnectionPool ConnectionPoolConfig `yaml:"connection_pool"`

	Credentials Credentials `yaml:"-"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type ConnectionPoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// LeverageConfig drives the price-decaying leverage target
// max(init * (ref_price/ask)^decay, min).
type LeverageConfig struct {
	Init     float64 `yaml:"init"`
	RefPrice float64 `yaml:"ref_price"`
	Decay    float64 `yaml:"decay"`
	Min      float64 `yaml:"min"`
}

type TradingConfig struct {
	Quote           string  `yaml:"quote"`
	Base            string  `yaml:"base"`
	OrderSize       string  `yaml:"order_size"`
	NoOrderLimit    float64 `yaml:"no_order_limit"`
	MaxInitPrice    float64 `yaml:"max_init_price"`
	TakeProfitLimit string  `yaml:"take_profit_limit_price"`
	MarginMode      string  `yaml:"margin_mode"`
}

// Market returns the spot instrument id for the configured pair.
func (t TradingConfig) Market() string {
	return t.Base + "-" + t.Quote
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

type MetricsConfig struct {
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

var supportedQuotes = map[string]bool{"USDT": true}
var supportedBases = map[string]bool{"BTC": true, "ETH": true}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "failed to read config file")
	}

	config := Config{
		Exchange: ExchangeConfig{
			BaseURL: "https://www.okx.com",
			Timeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 5,
				BurstSize:         1,
			},
		},
		Trading: TradingConfig{
			MarginMode: "cross",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "failed to parse config file")
	}

	applyEnvOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnvOverrides layers environment values over the file. Credentials
// only exist in the environment; the trading and leverage knobs accept the
// same variable names the deployment already uses.
func applyEnvOverrides(cfg *Config) {
	cfg.Exchange.Credentials = Credentials{
		Key:        strings.TrimSpace(os.Getenv("OKX_API_KEY")),
		Secret:     strings.TrimSpace(os.Getenv("OKX_API_SECRET")),
		Passphrase: strings.TrimSpace(os.Getenv("OKX_API_PASSPHRASE")),
	}

	setString := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	setFloat := func(dst *float64, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setFloat(&cfg.Leverage.Init, "LEVERAGE_INIT")
	setFloat(&cfg.Leverage.RefPrice, "LEVERAGE_REF_PRICE")
	setFloat(&cfg.Leverage.Decay, "LEVERAGE_DECAY")
	setFloat(&cfg.Leverage.Min, "LEVERAGE_MIN")

	setString(&cfg.Trading.Quote, "QUOTE")
	setString(&cfg.Trading.Base, "BASE")
	setString(&cfg.Trading.OrderSize, "ORDER_SIZE")
	setFloat(&cfg.Trading.NoOrderLimit, "NO_ORDER_LIMIT")
	setFloat(&cfg.Trading.MaxInitPrice, "MAX_INIT_PRICE")
	setString(&cfg.Trading.TakeProfitLimit, "TAKE_PROFIT_LIMIT_PRICE")
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return errs.New(errs.KindConfig, "app.name is required")
	}
	if cfg.App.Version == "" {
		return errs.New(errs.KindConfig, "app.version is required")
	}

	creds := cfg.Exchange.Credentials
	if creds.Key == "" {
		return errs.New(errs.KindConfig, "OKX_API_KEY is not provided")
	}
	if creds.Secret == "" {
		return errs.New(errs.KindConfig, "OKX_API_SECRET is not provided")
	}
	if creds.Passphrase == "" {
		return errs.New(errs.KindConfig, "OKX_API_PASSPHRASE is not provided")
	}

	if cfg.Exchange.Timeout <= 0 {
		return errs.New(errs.KindConfig, "exchange.timeout must be greater than 0")
	}

	if cfg.Leverage.Init <= 0 {
		return errs.New(errs.KindConfig, "leverage.init must be greater than 0")
	}
	if cfg.Leverage.RefPrice <= 0 {
		return errs.New(errs.KindConfig, "leverage.ref_price must be greater than 0")
	}
	if cfg.Leverage.Decay <= 0 {
		return errs.New(errs.KindConfig, "leverage.decay must be greater than 0")
	}
	if cfg.Leverage.Min <= 0 {
		return errs.New(errs.KindConfig, "leverage.min must be greater than 0")
	}

	if cfg.Trading.Quote == "" {
		return errs.New(errs.KindConfig, "trading.quote is required")
	}
	if !supportedQuotes[cfg.Trading.Quote] {
		return errs.New(errs.KindConfig, "quote coin %s is not supported", cfg.Trading.Quote)
	}
	if cfg.Trading.Base == "" {
		return errs.New(errs.KindConfig, "trading.base is required")
	}
	if !supportedBases[cfg.Trading.Base] {
		return errs.New(errs.KindConfig, "base coin %s is not supported", cfg.Trading.Base)
	}
	if cfg.Trading.OrderSize == "" {
		return errs.New(errs.KindConfig, "trading.order_size is required")
	}
	if cfg.Trading.NoOrderLimit <= 0 {
		return errs.New(errs.KindConfig, "trading.no_order_limit must be greater than 0")
	}
	if cfg.Trading.MaxInitPrice <= 0 {
		return errs.New(errs.KindConfig, "trading.max_init_price must be greater than 0")
	}
	if cfg.Trading.TakeProfitLimit == "" {
		return errs.New(errs.KindConfig, "trading.take_profit_limit_price is required")
	}
	if cfg.Trading.MarginMode != "cross" {
		return errs.New(errs.KindConfig, "trading.margin_mode %s is not supported", cfg.Trading.MarginMode)
	}

	if cfg.Metrics.CloudWatch.Enabled && cfg.Metrics.CloudWatch.Namespace == "" {
		return errs.New(errs.KindConfig, "metrics.cloudwatch.namespace is required when CloudWatch is enabled")
	}

	return nil
}
