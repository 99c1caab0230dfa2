// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the monitor.
type Config struct {
	PollingIntervalSeconds int            `mapstructure:"polling_interval_seconds"`
	Device                 DeviceConfig   `mapstructure:"device"`
	Database               DatabaseConfig `mapstructure:"database"`
	Logging                LoggingConfig  `mapstructure:"logging"`
}

// DeviceConfig carries cloud device API credentials.
type DeviceConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// DatabaseConfig carries the event store connection settings. Ignored in
// dry-run mode.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the config file, expanding $VAR references from the
// environment so credentials can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s — copy config.yaml.example to %s and fill it in", path, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(strings.NewReader(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings every mode needs. Database settings are
// validated separately by ValidateDatabase since dry-run never touches them.
func (c *Config) Validate() error {
	if c.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("polling_interval_seconds must be > 0, got %d", c.PollingIntervalSeconds)
	}
	if c.Device.BaseURL == "" {
		return errors.New("device.base_url is required")
	}
	if c.Device.Email == "" || c.Device.Password == "" {
		return errors.New("device.email and device.password are required")
	}
	return nil
}

// ValidateDatabase checks the event store settings needed in live mode.
func (c *Config) ValidateDatabase() error {
	if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
		return errors.New("database.host, database.name and database.user are required unless running with -dry-run")
	}
	return nil
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}

// ConnString builds the event store connection string.
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("polling_interval_seconds", 30)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
