package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Claude       ClaudeConfig       `mapstructure:"claude"`
	Saiba        SaibaConfig        `mapstructure:"saiba"`
	Extraction   ExtractionConfig   `mapstructure:"extraction"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Cache        CacheConfig        `mapstructure:"cache"`
	JobProcessor JobProcessorConfig `mapstructure:"job_processor"`
	Auth         AuthConfig         `mapstructure:"auth"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClaudeConfig holds the bootstrap configuration for the Claude extraction API.
// The API key and model can be overridden at runtime via Policy Reader Settings;
// these values seed the settings row on first boot.
type ClaudeConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	Version   string `mapstructure:"version"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"`
}

// SaibaConfig holds the bootstrap configuration for the SAIBA ERP API.
// Credentials can be overridden at runtime via Policy Reader Settings.
type SaibaConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Timeout     int    `mapstructure:"timeout"`
	SyncTimeout int    `mapstructure:"sync_timeout"`
}

// ExtractionConfig holds document extraction pipeline configuration
type ExtractionConfig struct {
	TextLimit           int `mapstructure:"text_limit"`
	MaxRetries          int `mapstructure:"max_retries"`
	StuckRequeueMinutes int `mapstructure:"stuck_requeue_minutes"`
	StuckFailMinutes    int `mapstructure:"stuck_fail_minutes"`
	MonitorInterval     int `mapstructure:"monitor_interval"`
}

// StorageConfig holds uploaded document storage configuration
type StorageConfig struct {
	UploadDir   string `mapstructure:"upload_dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// CacheConfig holds caching configuration
type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	DefaultTTL  int  `mapstructure:"default_ttl"`
	AliasMapTTL int  `mapstructure:"alias_map_ttl"`
	SettingsTTL int  `mapstructure:"settings_ttl"`
}

// JobProcessorConfig holds background job processing configuration
type JobProcessorConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Workers    int  `mapstructure:"workers"`
	MaxRetries int  `mapstructure:"max_retries"`
	JobTimeout int  `mapstructure:"job_timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// LoadConfig loads configuration from environment and config files
func LoadConfig() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("server.shutdown_timeout", 30)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("claude.base_url", "https://api.anthropic.com/v1/messages")
	viper.SetDefault("claude.model", "claude-3-5-sonnet-20241022")
	viper.SetDefault("claude.version", "2023-06-01")
	viper.SetDefault("claude.max_tokens", 4000)
	viper.SetDefault("claude.timeout", 180)
	viper.SetDefault("saiba.timeout", 30)
	viper.SetDefault("saiba.sync_timeout", 60)
	viper.SetDefault("extraction.text_limit", 200000)
	viper.SetDefault("extraction.max_retries", 3)
	viper.SetDefault("extraction.stuck_requeue_minutes", 5)
	viper.SetDefault("extraction.stuck_fail_minutes", 30)
	viper.SetDefault("extraction.monitor_interval", 60)
	viper.SetDefault("storage.upload_dir", "./uploads")
	viper.SetDefault("storage.max_upload_mb", 25)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.default_ttl", 300)
	viper.SetDefault("cache.alias_map_ttl", 3600)
	viper.SetDefault("cache.settings_ttl", 300)
	viper.SetDefault("job_processor.enabled", true)
	viper.SetDefault("job_processor.workers", 4)
	viper.SetDefault("job_processor.max_retries", 3)
	viper.SetDefault("job_processor.job_timeout", 300)
	viper.SetDefault("auth.jwt_secret", "change-this-secret-in-production")
	viper.SetDefault("auth.token_ttl_hours", 24)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
