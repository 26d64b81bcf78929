package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PostgresConfig holds database connection configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	URL      string `mapstructure:"url"`
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// CoinGeckoConfig holds CoinGecko API-related configuration
type CoinGeckoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	ProjectName string `mapstructure:"project_name"`
	LogLevel    string `mapstructure:"log_level"`
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5434")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "")
	viper.SetDefault("postgres.dbname", "pricefetch")
	viper.SetDefault("postgres.url", "")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("cache.backend", "redis")
	viper.SetDefault("cache.ttl", "300s")

	viper.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("coingecko.api_key", "")
	viper.SetDefault("coingecko.timeout", "10s")

	viper.SetDefault("app.project_name", "PriceFetch")
	viper.SetDefault("app.log_level", "info")

	// Bind environment variables
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.shutdown_timeout", "SHUTDOWN_TIMEOUT")
	viper.BindEnv("postgres.host", "POSTGRES_SERVER")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.dbname", "POSTGRES_DB")
	viper.BindEnv("postgres.url", "DATABASE_URL")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.ttl", "CACHE_TTL")
	viper.BindEnv("coingecko.base_url", "COINGECKO_BASE_URL")
	viper.BindEnv("coingecko.api_key", "COINGECKO_API_KEY")
	viper.BindEnv("coingecko.timeout", "COINGECKO_TIMEOUT")
	viper.BindEnv("app.project_name", "PROJECT_NAME")
	viper.BindEnv("app.log_level", "LOG_LEVEL")

	// Try to read from config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
		}
		// Continue with environment variables and defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DatabaseURL returns the Postgres DSN, preferring an explicit DATABASE_URL
// over the assembled connection parameters.
func (c *Config) DatabaseURL() string {
	if c.Postgres.URL != "" {
		return c.Postgres.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.Postgres.User, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.DBName)
}
