package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/launchdash/launchdash/pkg/types"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort     = 8050
	DefaultDatasetPath  = "data/spacex_launch_dash.csv"
	DefaultTable        = "launches"
	DefaultCacheTTL     = 5 * time.Minute
	DefaultTitle        = "SpaceX Launch Records Dashboard"
	DefaultSliderStep   = 100
	DefaultMarkInterval = 1000
	DefaultPingPeriod   = 54 * time.Second
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
)

// Config is the parsed config.yaml.
type Config struct {
	Server    ServerConfig  `yaml:"server"`
	Dataset   DatasetConfig `yaml:"dataset"`
	Cache     CacheConfig   `yaml:"cache"`
	Dashboard Dashboard     `yaml:"dashboard"`
	Hub       HubConfig     `yaml:"hub"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, chart endpoints and WebSocket hub
	// listen on (default 8050).
	HTTPPort int `yaml:"http_port"`

	// UIDir, when set, is served as static files at /.
	UIDir string `yaml:"ui_dir"`
}

// DatasetConfig names the tabular source loaded once at startup.
type DatasetConfig struct {
	// Path is a .csv, .xlsx, .db, .sqlite or .sqlite3 file.
	Path string `yaml:"path"`

	// Sheet selects the xlsx sheet. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// Table is the table read from SQL sources (default "launches").
	Table string `yaml:"table"`

	// Driver is "sqlite" or "postgres" and is only used with DSNEnv.
	Driver string `yaml:"driver"`

	// DSNEnv is the name of the environment variable holding a database DSN.
	// When set it takes precedence over Path.
	DSNEnv string `yaml:"dsn_env"`

	// AllowUnknownSites accepts launch sites outside the known four.
	AllowUnknownSites bool `yaml:"allow_unknown_sites"`
}

// DSN returns the database DSN resolved from the environment.
func (d DatasetConfig) DSN() string {
	if d.DSNEnv == "" {
		return ""
	}
	return os.Getenv(d.DSNEnv)
}

// CacheConfig controls memoization of computed views.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Dashboard holds presentation settings. It is the only section applied
// on hot reload.
type Dashboard struct {
	Title string `yaml:"title" json:"title"`

	// DefaultSite is the site selection used when a request names none.
	DefaultSite types.SiteSelection `yaml:"default_site" json:"default_site"`

	// SliderStep is the payload slider step in kg.
	SliderStep int `yaml:"slider_step" json:"slider_step"`

	// MarkInterval is the spacing of slider marks in kg.
	MarkInterval int `yaml:"mark_interval" json:"mark_interval"`
}

// HubConfig tunes the WebSocket hub.
type HubConfig struct {
	PingPeriod time.Duration `yaml:"ping_period"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is what
// the server runs with when no config file is given.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		Dataset: DatasetConfig{
			Path:  DefaultDatasetPath,
			Table: DefaultTable,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     DefaultCacheTTL,
		},
		Dashboard: Dashboard{
			Title:        DefaultTitle,
			DefaultSite:  types.All,
			SliderStep:   DefaultSliderStep,
			MarkInterval: DefaultMarkInterval,
		},
		Hub: HubConfig{
			PingPeriod: DefaultPingPeriod,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}

	d := cfg.Dataset
	if d.Path == "" && d.DSNEnv == "" {
		return errors.New("dataset: one of path or dsn_env is required")
	}
	if d.DSNEnv != "" {
		switch d.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("dataset.driver %q unknown: want sqlite|postgres when dsn_env is set", d.Driver)
		}
	}

	if cfg.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}

	if err := cfg.Dashboard.Validate(); err != nil {
		return err
	}

	if cfg.Hub.PingPeriod <= 0 {
		return fmt.Errorf("hub.ping_period %v must be positive", cfg.Hub.PingPeriod)
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown: want debug|info|warn|error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q unknown: want json|text", cfg.Logging.Format)
	}
	return nil
}

// Validate checks the dashboard section on its own, as hot reload applies
// it without the rest of the file.
func (d Dashboard) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("dashboard.title must not be empty")
	}
	site := types.SiteID(d.DefaultSite)
	if !d.DefaultSite.IsAll() && !site.IsKnown() {
		return fmt.Errorf("dashboard.default_site %q unknown: want ALL or a known launch site", d.DefaultSite)
	}
	if d.SliderStep <= 0 {
		return fmt.Errorf("dashboard.slider_step %d must be positive", d.SliderStep)
	}
	if d.MarkInterval <= 0 {
		return fmt.Errorf("dashboard.mark_interval %d must be positive", d.MarkInterval)
	}
	return nil
}
