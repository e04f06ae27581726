package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds configuration for the log server
type AppConfig struct {
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// ServerSettings contains HTTP server configuration
type ServerSettings struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RecentReports  int           `yaml:"recent_reports"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// DatabaseSettings contains report persistence configuration
type DatabaseSettings struct {
	Enabled       bool          `yaml:"enabled"`
	Path          string        `yaml:"path"`
	BatchSize     int           `yaml:"batch_size"`
	FlushPeriod   time.Duration `yaml:"flush_period"`
	ChannelSize   int           `yaml:"channel_size"`
	RetentionDays int           `yaml:"retention_days"`
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
}

// LoadAppConfig loads server configuration from a YAML file
func LoadAppConfig(path string) (*AppConfig, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config AppConfig
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyDefaults()
	config.OverrideFromEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// ApplyDefaults sets default values for server config
func (ac *AppConfig) ApplyDefaults() {
	if ac.Server.Port == 0 {
		ac.Server.Port = 8090
	}
	if ac.Server.Host == "" {
		ac.Server.Host = "0.0.0.0"
	}
	if ac.Server.ReadTimeout == 0 {
		ac.Server.ReadTimeout = 60 * time.Second
	}
	if ac.Server.WriteTimeout == 0 {
		ac.Server.WriteTimeout = 10 * time.Second
	}
	if ac.Server.RecentReports == 0 {
		ac.Server.RecentReports = 500
	}
	if ac.Database.Path == "" {
		ac.Database.Path = "./data/clothesline.db"
	}
	if ac.Database.BatchSize == 0 {
		ac.Database.BatchSize = 50
	}
	if ac.Database.FlushPeriod == 0 {
		ac.Database.FlushPeriod = 5 * time.Second
	}
	if ac.Database.ChannelSize == 0 {
		ac.Database.ChannelSize = 500
	}
	if ac.Database.RetentionDays == 0 {
		ac.Database.RetentionDays = 90
	}
	if ac.Database.CleanupPeriod == 0 {
		ac.Database.CleanupPeriod = 1 * time.Hour
	}
	if ac.Logging.Level == "" {
		ac.Logging.Level = "info"
	}
	if ac.Logging.Format == "" {
		ac.Logging.Format = "json"
	}
}

// OverrideFromEnv overrides config from environment variables
func (ac *AppConfig) OverrideFromEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			ac.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		ac.Server.Host = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		ac.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		ac.Logging.Level = v
	}
}

// Validate checks if server configuration is valid
func (ac *AppConfig) Validate() error {
	if ac.Server.Port < 1 || ac.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if ac.Server.RecentReports < 10 {
		return fmt.Errorf("recent reports buffer must be at least 10")
	}
	if ac.Database.Enabled && ac.Database.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}
	if ac.Database.Enabled && ac.Database.RetentionDays < 1 {
		return fmt.Errorf("retention days must be at least 1")
	}
	return nil
}

func (ac *AppConfig) String() string {
	return fmt.Sprintf("AppConfig{Server: %+v, Database: %+v, Logging: %+v}",
		ac.Server,
		ac.Database,
		ac.Logging,
	)
}
