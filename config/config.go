package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the WhiteKnight services
type Config struct {
	API struct {
		Host           string        `mapstructure:"host"`
		Port           int           `mapstructure:"port"`
		ReadTimeout    time.Duration `mapstructure:"read_timeout"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
		IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
		TLS            bool          `mapstructure:"tls"`
		CertFile       string        `mapstructure:"cert_file"`
		KeyFile        string        `mapstructure:"key_file"`
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
		TrustProxy     bool          `mapstructure:"trust_proxy"`
		RateLimit      struct {
			RequestsPerSecond int `mapstructure:"requests_per_second"`
			Burst             int `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"api"`

	// StatusPage is the static status dashboard, a separate process from the API
	StatusPage struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"status_page"`

	Storage struct {
		Backend         string        `mapstructure:"backend"`
		SQLitePath      string        `mapstructure:"sqlite_path"`
		CacheSize       int           `mapstructure:"cache_size"`
		MetricsInterval time.Duration `mapstructure:"metrics_interval"`
	} `mapstructure:"storage"`

	// Events configures external sinks for domain events. The dashboard
	// stream always receives events regardless of these settings.
	Events struct {
		Redis struct {
			Enabled  bool   `mapstructure:"enabled"`
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
			Channel  string `mapstructure:"channel"`
		} `mapstructure:"redis"`
		Webhook struct {
			Enabled bool              `mapstructure:"enabled"`
			URL     string            `mapstructure:"url"`
			Headers map[string]string `mapstructure:"headers"`
			Timeout time.Duration     `mapstructure:"timeout"`
		} `mapstructure:"webhook"`
	} `mapstructure:"events"`

	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func setDefaults() {
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8000)
	viper.SetDefault("api.read_timeout", 15*time.Second)
	viper.SetDefault("api.write_timeout", 15*time.Second)
	viper.SetDefault("api.idle_timeout", 60*time.Second)
	viper.SetDefault("api.tls", false)
	viper.SetDefault("api.cert_file", "server.crt")
	viper.SetDefault("api.key_file", "server.key")
	viper.SetDefault("api.allowed_origins", []string{"http://localhost:8888", "http://127.0.0.1:8888"})
	viper.SetDefault("api.trust_proxy", false)
	viper.SetDefault("api.rate_limit.requests_per_second", 50)
	viper.SetDefault("api.rate_limit.burst", 100)

	viper.SetDefault("status_page.host", "0.0.0.0")
	viper.SetDefault("status_page.port", 8888)

	viper.SetDefault("storage.backend", BackendMemory)
	viper.SetDefault("storage.sqlite_path", "data/whiteknight.db")
	viper.SetDefault("storage.cache_size", 1024)
	viper.SetDefault("storage.metrics_interval", 30*time.Second)

	viper.SetDefault("events.redis.enabled", false)
	viper.SetDefault("events.redis.addr", "localhost:6379")
	viper.SetDefault("events.redis.password", "")
	viper.SetDefault("events.redis.db", 0)
	viper.SetDefault("events.redis.channel", "whiteknight:events")
	viper.SetDefault("events.webhook.enabled", false)
	viper.SetDefault("events.webhook.url", "")
	viper.SetDefault("events.webhook.timeout", 10*time.Second)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", "whiteknight")

	viper.SetDefault("logging.level", "info")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("WHITEKNIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Shorter names for the settings most often overridden in containers
	_ = viper.BindEnv("api.port", "WHITEKNIGHT_API_PORT", "PORT")
	_ = viper.BindEnv("storage.backend", "WHITEKNIGHT_STORAGE_BACKEND")
	_ = viper.BindEnv("storage.sqlite_path", "WHITEKNIGHT_SQLITE_PATH")
	_ = viper.BindEnv("events.redis.addr", "WHITEKNIGHT_REDIS_ADDR")
	_ = viper.BindEnv("logging.level", "WHITEKNIGHT_LOG_LEVEL")
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// APIAddr returns the host:port the API listens on
func (c *Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// StatusPageAddr returns the host:port the status page listens on
func (c *Config) StatusPageAddr() string {
	return fmt.Sprintf("%s:%d", c.StatusPage.Host, c.StatusPage.Port)
}

func validateConfig(config *Config) error {
	servers := []struct {
		name string
		port int
		host string
	}{
		{"api", config.API.Port, config.API.Host},
		{"status_page", config.StatusPage.Port, config.StatusPage.Host},
	}
	for _, s := range servers {
		if s.port < 1 || s.port > 65535 {
			return fmt.Errorf("invalid %s port: %d (must be 1-65535)", s.name, s.port)
		}
		if s.host == "" {
			return fmt.Errorf("invalid %s host: host cannot be empty", s.name)
		}
	}

	if config.API.TLS && (config.API.CertFile == "" || config.API.KeyFile == "") {
		return fmt.Errorf("api.tls requires cert_file and key_file")
	}

	if config.API.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests_per_second must be positive")
	}
	if config.API.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	for _, origin := range config.API.AllowedOrigins {
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("invalid allowed origin: %q (must be * or an http(s) origin)", origin)
		}
	}

	switch config.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %q (must be %s or %s)", config.Storage.Backend, BackendMemory, BackendSQLite)
	}
	if config.Storage.CacheSize < 0 {
		return fmt.Errorf("storage.cache_size cannot be negative")
	}

	if config.Events.Redis.Enabled && config.Events.Redis.Addr == "" {
		return fmt.Errorf("events.redis.addr is required when redis events are enabled")
	}
	if config.Events.Webhook.Enabled {
		parsed, err := url.Parse(config.Events.Webhook.URL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("invalid events.webhook.url: %q", config.Events.Webhook.URL)
		}
	}

	if _, err := zapcore.ParseLevel(config.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}

	return nil
}
