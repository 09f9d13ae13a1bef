package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults of a run against the reference memorial.
const (
	DefaultMemorialURL = "https://www.findagrave.com/memorial/7236403/archibald-mathies"
	DefaultOutputFile  = "archibald_mathies_memorial.xlsx"
	DefaultErrorLog    = "errors.txt"
	DefaultSheetName   = "Memorial Info"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
)

// Loader names accepted by LOADER.
const (
	LoaderHTTP   = "http"
	LoaderChrome = "chrome"
)

var (
	ErrMissingURL    = errors.New("MEMORIAL_URL is required")
	ErrInvalidURL    = errors.New("MEMORIAL_URL must be an absolute http(s) URL")
	ErrUnknownLoader = errors.New("LOADER must be one of: http, chrome")
	ErrMissingOutput = errors.New("OUTPUT_FILE is required")
)

// Config holds the application configuration.
type Config struct {
	MemorialURL string `mapstructure:"MEMORIAL_URL"`
	OutputFile  string `mapstructure:"OUTPUT_FILE"`
	ErrorLog    string `mapstructure:"ERROR_LOG"`
	SheetName   string `mapstructure:"SHEET_NAME"`

	Loader       string   `mapstructure:"LOADER"`
	UserAgent    string   `mapstructure:"USER_AGENT"`
	ProxyURLs    []string `mapstructure:"PROXY_URLS"`
	FetchTimeout int      `mapstructure:"FETCH_TIMEOUT"` // in seconds

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	CacheTTLHours int    `mapstructure:"CACHE_TTL_HOURS"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	MetricsFile string `mapstructure:"METRICS_FILE"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("MEMORIAL_URL", DefaultMemorialURL)
	v.SetDefault("OUTPUT_FILE", DefaultOutputFile)
	v.SetDefault("ERROR_LOG", DefaultErrorLog)
	v.SetDefault("SHEET_NAME", DefaultSheetName)
	v.SetDefault("LOADER", LoaderHTTP)
	v.SetDefault("USER_AGENT", DefaultUserAgent)
	v.SetDefault("PROXY_URLS", []string{})
	v.SetDefault("FETCH_TIMEOUT", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_HOURS", 48)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("METRICS_FILE", "")
	v.SetDefault("SERVER_PORT", "8080")
}

// Load reads configuration from the optional .env file and environment
// variables into v, then decodes and validates it.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; a pure-environment configuration is valid.
	_ = v.ReadInConfig()

	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values a run cannot do without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MemorialURL) == "" {
		return ErrMissingURL
	}
	u, err := url.ParseRequestURI(c.MemorialURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	if c.Loader != LoaderHTTP && c.Loader != LoaderChrome {
		return ErrUnknownLoader
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return ErrMissingOutput
	}
	return nil
}

// Timeout returns FETCH_TIMEOUT as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// CacheTTL returns CACHE_TTL_HOURS as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}
