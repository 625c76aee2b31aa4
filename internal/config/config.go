package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds optional HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and the ICS feed.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for schedule dates and the ICS
	// feed (e.g. "Europe/Lisbon"). Defaults to "Local".
	Timezone string `yaml:"timezone" json:"timezone"`

	// DatabasePath is the SQLite database file location.
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// HorizonDays is how far ahead schedule entries are generated for
	// foods without a bounded progression duration.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// RefreshCron is a cron-style schedule (e.g. "30 2 * * *") on which
	// upcoming entries are regenerated while the server runs.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// FeedSecret signs calendar feed tokens. FOODCAL_FEED_SECRET
	// overrides it without touching the file.
	FeedSecret string `yaml:"feed_secret" json:"-"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on the
	// API endpoints. /health and the token-bearing feed stay open.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Local",
		DatabasePath: "foodcal.db",
		HorizonDays:  90,
		RefreshCron:  "30 2 * * *",
		FeedSecret:   "",
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values so that partially filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "foodcal.db"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 90
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "30 2 * * *"
	}
	if s := os.Getenv("FOODCAL_FEED_SECRET"); s != "" {
		c.FeedSecret = s
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600) and
// returned. Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			if err := Save(path, cfg); err != nil {
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

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions. The feed secret lives here, hence the mode.
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

	tmp, err := os.CreateTemp(dir, ".foodcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
