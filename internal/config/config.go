package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	RapidAPI  RapidAPIConfig  `yaml:"rapidapi" mapstructure:"rapidapi"`
	Endpoints EndpointsConfig `yaml:"endpoints" mapstructure:"endpoints"`
	Poll      PollConfig      `yaml:"poll" mapstructure:"poll"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts" mapstructure:"timeouts"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	RateLimit RateLimitConfig `yaml:"ratelimit" mapstructure:"ratelimit"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RapidAPIConfig holds the shared RapidAPI credential and per-API host headers.
type RapidAPIConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	AIDetectorHost string `yaml:"ai_detector_host" mapstructure:"ai_detector_host"`
	TwitterHost    string `yaml:"twitter_host" mapstructure:"twitter_host"`
}

// EndpointsConfig holds the upstream URLs.
type EndpointsConfig struct {
	TokenURL      string `yaml:"token_url" mapstructure:"token_url"`
	SolPriceURL   string `yaml:"sol_price_url" mapstructure:"sol_price_url"`
	TradesURL     string `yaml:"trades_url" mapstructure:"trades_url"`
	AIDetectorURL string `yaml:"ai_detector_url" mapstructure:"ai_detector_url"`
	TwitterURL    string `yaml:"twitter_url" mapstructure:"twitter_url"`
}

// PollConfig configures the polling cadence.
type PollConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
}

// TimeoutsConfig configures per-call timeouts.
type TimeoutsConfig struct {
	FetchSecs int `yaml:"fetch_secs" mapstructure:"fetch_secs"`
	PageSecs  int `yaml:"page_secs" mapstructure:"page_secs"`
	APISecs   int `yaml:"api_secs" mapstructure:"api_secs"`
}

// ExtractConfig configures website text extraction.
type ExtractConfig struct {
	MaxChars     int   `yaml:"max_chars" mapstructure:"max_chars"`
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// RateLimitConfig configures the per-host outbound request limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	AIThreshold float64 `yaml:"ai_threshold" mapstructure:"ai_threshold"`
}

// ServerConfig configures the status server. Port 0 disables it.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Interval returns the poll interval.
func (c PollConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// Fetch returns the timeout for generic JSON fetches.
func (c TimeoutsConfig) Fetch() time.Duration {
	return time.Duration(c.FetchSecs) * time.Second
}

// Page returns the timeout for website downloads.
func (c TimeoutsConfig) Page() time.Duration {
	return time.Duration(c.PageSecs) * time.Second
}

// API returns the timeout for classifier and social API calls.
func (c TimeoutsConfig) API() time.Duration {
	return time.Duration(c.APISecs) * time.Second
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; values already present in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("rapidapi.key", "ENRICHER_RAPIDAPI_KEY", "RAPIDAPI_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind rapidapi key")
	}

	// Defaults
	v.SetDefault("rapidapi.key", "")
	v.SetDefault("rapidapi.ai_detector_host", "ai-content-detector6.p.rapidapi.com")
	v.SetDefault("rapidapi.twitter_host", "twitter-api45.p.rapidapi.com")
	v.SetDefault("endpoints.token_url", "https://frontend-api.pump.fun/coins/latest")
	v.SetDefault("endpoints.sol_price_url", "https://frontend-api.pump.fun/sol-price")
	v.SetDefault("endpoints.trades_url", "https://frontend-api.pump.fun/trades/latest")
	v.SetDefault("endpoints.ai_detector_url", "https://ai-content-detector6.p.rapidapi.com/v1/ai-content-detector")
	v.SetDefault("endpoints.twitter_url", "https://twitter-api45.p.rapidapi.com/screenname.php")
	v.SetDefault("poll.interval_secs", 10)
	v.SetDefault("timeouts.fetch_secs", 5)
	v.SetDefault("timeouts.page_secs", 10)
	v.SetDefault("timeouts.api_secs", 10)
	v.SetDefault("extract.max_chars", 5000)
	v.SetDefault("extract.max_body_bytes", 2<<20)
	v.SetDefault("ratelimit.requests_per_second", 5)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("report.ai_threshold", 0.7)
	v.SetDefault("server.port", 0)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration can drive a polling run. A missing
// RapidAPI key is not an error: classifier and social calls will fail
// upstream and degrade to unavailable.
func (c *Config) Validate() error {
	var errs []string

	for _, f := range []struct{ key, val string }{
		{"endpoints.token_url", c.Endpoints.TokenURL},
		{"endpoints.sol_price_url", c.Endpoints.SolPriceURL},
		{"endpoints.trades_url", c.Endpoints.TradesURL},
		{"endpoints.ai_detector_url", c.Endpoints.AIDetectorURL},
		{"endpoints.twitter_url", c.Endpoints.TwitterURL},
	} {
		if f.val == "" {
			errs = append(errs, f.key+" is required")
		}
	}

	if c.Poll.IntervalSecs <= 0 {
		errs = append(errs, "poll.interval_secs must be > 0")
	}
	if c.Timeouts.FetchSecs <= 0 || c.Timeouts.PageSecs <= 0 || c.Timeouts.APISecs <= 0 {
		errs = append(errs, "timeouts must be > 0")
	}
	if c.Extract.MaxChars <= 0 {
		errs = append(errs, "extract.max_chars must be > 0")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, "ratelimit values must be >= 0")
	}
	if c.Report.AIThreshold < 0 || c.Report.AIThreshold > 1 {
		errs = append(errs, "report.ai_threshold must be within [0,1]")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be within [0,65535]")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}

	if c.RapidAPI.Key == "" {
		zap.L().Warn("config: rapidapi.key is empty, AI and social analysis will be unavailable")
	}

	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RapidAPI.Key != "" {
		c.RapidAPI.Key = "********"
	}
	return c
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
