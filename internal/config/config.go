package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type StreamConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxLifetime   time.Duration `mapstructure:"max_lifetime"`
	SnapshotLimit int           `mapstructure:"snapshot_limit"`
}

type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Max    int           `mapstructure:"max"`
}

type Config struct {
	DatabaseURL string          `mapstructure:"database_url"`
	ServerPort  string          `mapstructure:"server_port"`
	JWTSecret   string          `mapstructure:"jwt_secret"`
	Stream      StreamConfig    `mapstructure:"stream"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}

	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}

	if config.Stream.PollInterval <= 0 {
		config.Stream.PollInterval = 5 * time.Second
	}
	if config.Stream.MaxLifetime <= 0 {
		config.Stream.MaxLifetime = 5 * time.Minute
	}
	if config.Stream.SnapshotLimit <= 0 {
		config.Stream.SnapshotLimit = 20
	}

	if config.RateLimit.Window <= 0 {
		config.RateLimit.Window = time.Minute
	}
	if config.RateLimit.Max <= 0 {
		config.RateLimit.Max = 60
	}

	return &config
}
