package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SourceConfig holds the settings for the published deadline page.
type SourceConfig struct {
	// URL is the page that lists deadlines under month headings.
	URL string `mapstructure:"url" yaml:"url"`

	UserAgent  string `mapstructure:"user_agent" yaml:"user_agent"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// CredentialKey names a keyring entry holding a bearer token for the
	// page. Empty means the page is public.
	CredentialKey string `mapstructure:"credential_key" yaml:"credential_key"`

	// CacheTTLSec is how long a fetched document is reused.
	CacheTTLSec int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// RatePerSec caps requests to the source host.
	RatePerSec float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`

	// IgnoreRobots disables the robots.txt check.
	IgnoreRobots bool `mapstructure:"ignore_robots" yaml:"ignore_robots"`

	// BaseURL resolves relative links when URL names a saved local copy
	// of the page.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// IsRemote reports whether URL is fetched over HTTP rather than read
// from disk.
func (s SourceConfig) IsRemote() bool {
	return strings.HasPrefix(s.URL, "http://") || strings.HasPrefix(s.URL, "https://")
}

// FilePath returns the local path named by URL, without a file:// prefix.
func (s SourceConfig) FilePath() string {
	return strings.TrimPrefix(s.URL, "file://")
}

// DatabaseConfig selects the deadline store.
type DatabaseConfig struct {
	// URL is a file path, ":memory:", or a libsql:// URL.
	URL string `mapstructure:"url" yaml:"url"`
}

// HarvestConfig tunes the extraction and matching pipeline.
type HarvestConfig struct {
	IntervalHours       int     `mapstructure:"interval_hours" yaml:"interval_hours"`
	Workers             int     `mapstructure:"workers" yaml:"workers"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	DuplicateWindowDays int     `mapstructure:"duplicate_window_days" yaml:"duplicate_window_days"`
	CleanupDays         int     `mapstructure:"cleanup_days" yaml:"cleanup_days"`
	DefaultTitle        string  `mapstructure:"default_title" yaml:"default_title"`
	Timezone            string  `mapstructure:"timezone" yaml:"timezone"`

	// LegacyDateOrder tries month-day before ranges, which reads
	// "June 3-5" as a single date on June 3.
	LegacyDateOrder bool `mapstructure:"legacy_date_order" yaml:"legacy_date_order"`
}

// Interval returns the scheduling interval of the periodic harvest.
func (h HarvestConfig) Interval() time.Duration {
	if h.IntervalHours <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(h.IntervalHours) * time.Hour
}

// Location resolves Timezone, falling back to the local zone.
func (h HarvestConfig) Location() (*time.Location, error) {
	if h.Timezone == "" || strings.EqualFold(h.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", h.Timezone, err)
	}
	return loc, nil
}

// HTTPConfig holds the admin API listener settings.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Source   SourceConfig   `mapstructure:"source" yaml:"source"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Harvest  HarvestConfig  `mapstructure:"harvest" yaml:"harvest"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/deadline-harvester/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "deadline-harvester", "config.yaml")
}

// defaultDatabasePath returns the default location of the SQLite file.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "deadlines.db"
	}
	return filepath.Join(home, ".local", "share", "deadline-harvester", "deadlines.db")
}

// setDefaults registers every default on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", "")
	v.SetDefault("source.user_agent", "deadline-harvester/1.0")
	v.SetDefault("source.timeout_sec", 30)
	v.SetDefault("source.credential_key", "")
	v.SetDefault("source.cache_ttl_sec", 300)
	v.SetDefault("source.rate_per_sec", 1.0)
	v.SetDefault("source.ignore_robots", false)
	v.SetDefault("source.base_url", "")
	v.SetDefault("database.url", defaultDatabasePath())
	v.SetDefault("harvest.interval_hours", 6)
	v.SetDefault("harvest.workers", 4)
	v.SetDefault("harvest.similarity_threshold", 0.8)
	v.SetDefault("harvest.duplicate_window_days", 7)
	v.SetDefault("harvest.cleanup_days", 30)
	v.SetDefault("harvest.default_title", "Deadline")
	v.SetDefault("harvest.timezone", "Local")
	v.SetDefault("harvest.legacy_date_order", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a Viper instance bound to path with defaults and
// HARVESTER_* environment overrides applied. A .env file in the working
// directory is loaded first when present.
func NewViper(path string) *viper.Viper {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// ReadViper returns a Viper instance for path with the file read in. A
// missing file is not an error; defaults and environment overrides apply.
func ReadViper(path string) (*viper.Viper, error) {
	v := NewViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, nil
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults and environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v, err := ReadViper(path)
	if err != nil {
		return nil, err
	}
	return DecodeConfig(v)
}

// DecodeConfig unmarshals the current state of v into an AppConfig.
func DecodeConfig(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Harvest.Workers < 1 {
		cfg.Harvest.Workers = 1
	}
	if cfg.Harvest.SimilarityThreshold <= 0 || cfg.Harvest.SimilarityThreshold > 1 {
		cfg.Harvest.SimilarityThreshold = 0.8
	}
	if cfg.Harvest.DuplicateWindowDays < 0 {
		cfg.Harvest.DuplicateWindowDays = 7
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("source", cfg.Source)
	v.Set("database", cfg.Database)
	v.Set("harvest", cfg.Harvest)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
