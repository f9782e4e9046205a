package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Timestamp TimestampConfig `yaml:"timestamp" mapstructure:"timestamp"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourcesConfig lists the spreadsheet exports the dashboard reads.
type SourcesConfig struct {
	Activities SourceConfig `yaml:"activities" mapstructure:"activities"`
	Library    SourceConfig `yaml:"library" mapstructure:"library"`
}

// SourceConfig addresses one export. Format is csv, xlsx or auto.
// Delimiter is a single CSV separator character, ',' when empty.
type SourceConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	Format    string `yaml:"format" mapstructure:"format"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// DelimiterRune returns the configured CSV separator, or 0 for the default.
func (s SourceConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// CacheConfig controls how long a loaded table is served before refetching.
type CacheConfig struct {
	TTLSecs int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// DashboardConfig holds page chrome settings.
type DashboardConfig struct {
	Title       string `yaml:"title" mapstructure:"title"`
	Footer      string `yaml:"footer" mapstructure:"footer"`
	RefreshSecs int    `yaml:"refresh_secs" mapstructure:"refresh_secs"`
	Columns     int    `yaml:"columns" mapstructure:"columns"`
}

// FetchConfig configures outbound export downloads.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// NormalizeConfig configures column normalization.
type NormalizeConfig struct {
	Placeholder string `yaml:"placeholder" mapstructure:"placeholder"`
}

// TimestampConfig configures how form timestamps are read.
type TimestampConfig struct {
	DayFirst bool   `yaml:"day_first" mapstructure:"day_first"`
	Location string `yaml:"location" mapstructure:"location"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheTTL returns the cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSecs) * time.Second
}

// FetchTimeout returns the per-request download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSecs) * time.Second
}

// TimeLocation resolves the configured timestamp location. Empty means the
// process's local zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Timestamp.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timestamp.Location)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load location %q", c.Timestamp.Location)
	}
	return loc, nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.activities.url", "https://docs.google.com/spreadsheets/d/1usygK9pJTsMOkcvXFByrn0d0yqjJiJX9Vl715UIz1bY/export?format=csv&gid=1905231957")
	v.SetDefault("sources.activities.format", "auto")
	v.SetDefault("sources.activities.sheet", "")
	v.SetDefault("sources.activities.delimiter", "")
	v.SetDefault("sources.library.url", "https://docs.google.com/spreadsheets/d/1G6BpbdZ4Ve6MQpAA85I5Ya9Fz2MNH4i5YBSqbvrCNL4/export?format=csv&gid=1068115575")
	v.SetDefault("sources.library.format", "auto")
	v.SetDefault("sources.library.sheet", "")
	v.SetDefault("sources.library.delimiter", "")
	v.SetDefault("cache.ttl_secs", 60)
	v.SetDefault("dashboard.title", "Dashboard de Actividades")
	v.SetDefault("dashboard.footer", "Gestión de Documentos de Soporte Eléctrico")
	v.SetDefault("dashboard.refresh_secs", 10)
	v.SetDefault("dashboard.columns", 3)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 0)
	v.SetDefault("fetch.user_agent", "dco-dashboard/1.0")
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("normalize.placeholder", "NOT AVAILABLE")
	v.SetDefault("timestamp.day_first", false)
	v.SetDefault("timestamp.location", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command needs. mode is "serve" for the
// HTTP server or "cli" for one-shot table commands.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Dashboard.Columns < 1 {
			problems = append(problems, "dashboard.columns must be at least 1")
		}
		if c.Dashboard.RefreshSecs < 0 {
			problems = append(problems, "dashboard.refresh_secs must not be negative")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if c.Cache.TTLSecs < 0 {
		problems = append(problems, "cache.ttl_secs must not be negative")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		problems = append(problems, "fetch.max_retries must not be negative")
	}
	for name, src := range map[string]SourceConfig{"activities": c.Sources.Activities, "library": c.Sources.Library} {
		switch src.Format {
		case "", "auto", "csv", "xlsx":
		default:
			problems = append(problems, "sources."+name+".format must be auto, csv or xlsx")
		}
		if d := src.Delimiter; d != "" && (utf8.RuneCountInString(d) != 1 || strings.ContainsAny(d, "\"\r\n")) {
			problems = append(problems, "sources."+name+".delimiter must be a single character")
		}
	}
	if _, err := c.TimeLocation(); err != nil {
		problems = append(problems, "timestamp.location is not a known time zone")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
