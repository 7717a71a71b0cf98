// Package config handles application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Fetch    FetchConfig
	API      APIConfig
	Rate     RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Env      string
	LogLevel string
}

// IsDevelopment returns true if the app is running in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development" || a.Env == "dev"
}

// IsProduction returns true if the app is running in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the server address in host:port format.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	NameTTL  time.Duration
}

// FetchConfig controls the simulated remote user lookup.
type FetchConfig struct {
	Delay           time.Duration
	PlaceholderName string
}

// APIConfig holds settings for the outbound profile API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	var err error

	// App config
	cfg.App.Env = v.GetString("APP_ENV")
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")

	// Server config
	cfg.Server.Host = v.GetString("SERVER_HOST")
	if cfg.Server.Port, err = getInt(v, "SERVER_PORT"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDuration(v, "SERVER_READ_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDuration(v, "SERVER_WRITE_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.Server.ShutdownTimeout, err = getDuration(v, "SERVER_SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}

	// Database config
	cfg.Database.Host = v.GetString("DB_HOST")
	if cfg.Database.Port, err = getInt(v, "DB_PORT"); err != nil {
		return nil, err
	}
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.DBName = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSLMODE")
	if cfg.Database.MaxOpenConns, err = getInt(v, "DB_MAX_OPEN_CONNS"); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = getInt(v, "DB_MAX_IDLE_CONNS"); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = getDuration(v, "DB_CONN_MAX_LIFETIME"); err != nil {
		return nil, err
	}

	// Redis config
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	if cfg.Redis.Port, err = getInt(v, "REDIS_PORT"); err != nil {
		return nil, err
	}
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getInt(v, "REDIS_DB"); err != nil {
		return nil, err
	}
	if cfg.Redis.PoolSize, err = getInt(v, "REDIS_POOL_SIZE"); err != nil {
		return nil, err
	}
	if cfg.Redis.NameTTL, err = getDuration(v, "REDIS_NAME_TTL"); err != nil {
		return nil, err
	}

	// Fetch config
	if cfg.Fetch.Delay, err = getDuration(v, "FETCH_DELAY"); err != nil {
		return nil, err
	}
	if cfg.Fetch.Delay < 0 {
		return nil, fmt.Errorf("invalid FETCH_DELAY: must not be negative")
	}
	cfg.Fetch.PlaceholderName = v.GetString("FETCH_PLACEHOLDER_NAME")

	// API config
	cfg.API.BaseURL = v.GetString("API_BASE_URL")
	if cfg.API.Timeout, err = getDuration(v, "API_TIMEOUT"); err != nil {
		return nil, err
	}

	// Rate limit config
	if cfg.Rate.Enabled, err = getBool(v, "RATE_LIMIT_ENABLED"); err != nil {
		return nil, err
	}
	if cfg.Rate.RPS, err = getFloat(v, "RATE_LIMIT_RPS"); err != nil {
		return nil, err
	}
	if cfg.Rate.Burst, err = getInt(v, "RATE_LIMIT_BURST"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 5*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "testkata")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "testkata")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_NAME_TTL", 10*time.Minute)

	v.SetDefault("FETCH_DELAY", 100*time.Millisecond)
	v.SetDefault("FETCH_PLACEHOLDER_NAME", "Test User")

	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("API_TIMEOUT", time.Second)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 50.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)
}

// DatabaseEnabled returns true if database configuration is provided.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != "" && c.Database.Password != ""
}

// RedisEnabled returns true if Redis configuration is provided.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// APIEnabled returns true if an outbound profile API is configured.
func (c *Config) APIEnabled() bool {
	return c.API.BaseURL != ""
}

func getInt(v *viper.Viper, key string) (int, error) {
	value, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getFloat(v *viper.Viper, key string) (float64, error) {
	value, err := cast.ToFloat64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getBool(v *viper.Viper, key string) (bool, error) {
	value, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
