package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the timeledger application
type Config struct {
	Database    DatabaseConfig
	Time        TimeConfig
	Display     DisplayConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir      string `env:"TL_DB_DIR"`
	Filename string `env:"TL_DB_FILENAME"`
}

// TimeConfig holds time handling configuration
type TimeConfig struct {
	DisplayFormat string `env:"TL_TIME_DISPLAY_FORMAT"`
	Timezone      string `env:"TL_TIMEZONE"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat string `env:"TL_DISPLAY_DATE_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	UserID  string        `env:"TL_USER"`
	Timeout time.Duration `env:"TL_APP_TIMEOUT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".timeledger")

	return &Config{
		Database: DatabaseConfig{
			Dir:      defaultDBDir,
			Filename: "timeledger.db",
		},
		Time: TimeConfig{
			DisplayFormat: "2006-01-02 15:04",
			Timezone:      "",
		},
		Display: DisplayConfig{
			DateFormat: "2006-01-02",
		},
		Application: ApplicationConfig{
			UserID:  "default",
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetLocation resolves the configured business timezone. Empty means the
// system's local timezone; an unknown name is a configuration error.
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Time.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Time.Timezone)
	if err != nil {
		return nil, &ConfigError{Field: "time.timezone", Message: "unknown timezone: " + c.Time.Timezone}
	}
	return loc, nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	if dir := os.Getenv("TL_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TL_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}

	if format := os.Getenv("TL_TIME_DISPLAY_FORMAT"); format != "" {
		c.Time.DisplayFormat = format
	}
	if tz := os.Getenv("TL_TIMEZONE"); tz != "" {
		c.Time.Timezone = tz
	}

	if format := os.Getenv("TL_DISPLAY_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}

	if user := os.Getenv("TL_USER"); user != "" {
		c.Application.UserID = user
	}
	if timeout := os.Getenv("TL_APP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Application.Timeout = d
		}
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Time.DisplayFormat == "" {
		return &ConfigError{Field: "time.display_format", Message: "display format cannot be empty"}
	}
	if c.Application.UserID == "" {
		return &ConfigError{Field: "application.user_id", Message: "user id cannot be empty"}
	}
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if _, err := c.GetLocation(); err != nil {
		return err
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
