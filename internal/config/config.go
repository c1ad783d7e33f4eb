// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	SinkNone = "none"
	SinkFile = "file"
	SinkSES  = "ses"
)

const (
	defaultCacheSize             = 128
	defaultKeepPerTheme          = 20
	defaultExportsPerHourPerUser = 60
	defaultExportsPerHourPerIP   = 120
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type SESConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	Recipient       string `yaml:"recipient"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type ExportConfig struct {
	Sink      string    `yaml:"sink"`
	Directory string    `yaml:"directory"`
	CacheSize int       `yaml:"cache_size"`
	SES       SESConfig `yaml:"ses"`
}

type RetentionConfig struct {
	// Schedule is a standard five-field cron expression. Empty disables pruning.
	Schedule     string `yaml:"schedule"`
	KeepPerTheme int    `yaml:"keep_per_theme"`
}

type RateLimitConfig struct {
	ExportsPerHourPerUser int `yaml:"exports_per_hour_per_user"`
	ExportsPerHourPerIP   int `yaml:"exports_per_hour_per_ip"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		TrustProxy  bool   `yaml:"trust_proxy"`
		APIKeyHash  string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Export    ExportConfig    `yaml:"export"`
	Retention RetentionConfig `yaml:"retention"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.APIKeyHash = os.Getenv("APP_API_KEY_HASH")
	cfg.Export.SES.AccessKeyID = os.Getenv("SES_ACCESS_KEY_ID")
	cfg.Export.SES.SecretAccessKey = os.Getenv("SES_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and fills defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Export.Sink == "" {
		c.Export.Sink = SinkNone
	}
	if c.Export.CacheSize == 0 {
		c.Export.CacheSize = defaultCacheSize
	}
	if c.Retention.KeepPerTheme == 0 {
		c.Retention.KeepPerTheme = defaultKeepPerTheme
	}
	if c.RateLimit.ExportsPerHourPerUser == 0 {
		c.RateLimit.ExportsPerHourPerUser = defaultExportsPerHourPerUser
	}
	if c.RateLimit.ExportsPerHourPerIP == 0 {
		c.RateLimit.ExportsPerHourPerIP = defaultExportsPerHourPerIP
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Export.Sink {
	case SinkNone:
	case SinkFile:
		if c.Export.Directory == "" {
			return fmt.Errorf("export directory is required for the file sink")
		}
	case SinkSES:
		if c.Export.SES.Region == "" || c.Export.SES.Sender == "" || c.Export.SES.Recipient == "" {
			return fmt.Errorf("export ses region, sender and recipient are required for the ses sink")
		}
	default:
		return fmt.Errorf("unsupported export sink: %s", c.Export.Sink)
	}
	if c.Export.CacheSize < 0 {
		return fmt.Errorf("export cache_size must not be negative")
	}

	if c.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(c.Retention.Schedule); err != nil {
			return fmt.Errorf("invalid retention schedule %q: %w", c.Retention.Schedule, err)
		}
	}
	if c.Retention.KeepPerTheme < 1 {
		return fmt.Errorf("retention keep_per_theme must be at least 1")
	}

	if c.RateLimit.ExportsPerHourPerUser < 1 || c.RateLimit.ExportsPerHourPerIP < 1 {
		return fmt.Errorf("rate limits must be at least 1 per hour")
	}

	return nil
}
