package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single ICS subscription feeding the household
// calendar. Color / Owner / Household are display metadata attached to every
// event produced by the source; the layout engine carries them through
// untouched.
type SourceConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Color is an optional display hint (e.g. "#2f6f4f").
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
	// Owner is the household member this source belongs to, if any.
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty"`
	// Household marks shared (whole-household) sources.
	Household bool `yaml:"household,omitempty" json:"household,omitempty"`
}

// LayoutConfig holds the grid geometry knobs consumed by internal/layout.
type LayoutConfig struct {
	// HourUnit is the rendered height of one hour in the time grid, in pixels.
	HourUnit int `yaml:"hour_unit" json:"hour_unit"`
	// MinHeight is the minimum rendered event height in pixels, so very
	// short events stay visible and tappable.
	MinHeight int `yaml:"min_height" json:"min_height"`
	// MaxRows caps the number of stacked multi-day rows per week band.
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone
	// (e.g. "Europe/Berlin"). "Local" uses the host timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the
	// week in calendar views. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// driving periodic ICS refresh and preview capture.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DataDir is where the ICS cache and the rendered preview live.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Layout holds the grid geometry settings.
	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// Sources is the list of subscribed ICS feeds.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// envOverrides are environment-variable overrides applied on top of the
// config file, mainly for containerized deploys. Variables use the HOMECAL_
// prefix, e.g. HOMECAL_LISTEN, HOMECAL_TIMEZONE.
type envOverrides struct {
	Listen   string `envconfig:"LISTEN"`
	Timezone string `envconfig:"TIMEZONE"`
	DataDir  string `envconfig:"DATA_DIR"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Local",
		WeekStart:   "sunday",
		RefreshCron: "*/15 * * * *",
		DataDir:     "/var/lib/homecal",
		Layout: LayoutConfig{
			HourUnit:  64,
			MinHeight: 32,
			MaxRows:   10,
		},
		Sources:   []SourceConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch c.WeekStart {
	case "sunday", "monday":
		// ok
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.DataDir == "" {
		c.DataDir = "/var/lib/homecal"
	}
	if c.Layout.HourUnit <= 0 {
		c.Layout.HourUnit = 64
	}
	if c.Layout.MinHeight <= 0 {
		c.Layout.MinHeight = 32
	}
	if c.Layout.MaxRows <= 0 {
		c.Layout.MaxRows = 10
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

// ApplyEnv overlays HOMECAL_* environment variables onto the config.
func (c *Config) ApplyEnv() error {
	var ov envOverrides
	if err := envconfig.Process("homecal", &ov); err != nil {
		return err
	}
	if ov.Listen != "" {
		c.Listen = ov.Listen
	}
	if ov.Timezone != "" {
		c.Timezone = ov.Timezone
	}
	if ov.DataDir != "" {
		c.DataDir = ov.DataDir
	}
	return nil
}

// Location resolves the configured timezone, falling back to time.Local on
// failure.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday maps the week_start setting to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
//
// Environment overrides (HOMECAL_*) are applied last in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			if err := cfg.ApplyEnv(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.ApplyEnv(); err != nil {
		return &cfg, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".homecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
