package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"SentinelConsole/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval"`
			Threshold int           `yaml:"threshold"`
		} `yaml:"collector"`
	} `yaml:"log"`
	AdminAPI struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"admin_api"`
	Session struct {
		Backend         string        `yaml:"backend"` // memory or redis
		TTL             time.Duration `yaml:"ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"session"`
	Redis struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		PoolTimeout  time.Duration `yaml:"pool_timeout"`
	} `yaml:"redis"`
	Polling struct {
		MarketData    time.Duration `yaml:"market_data"`
		OrderBook     time.Duration `yaml:"order_book"`
		TradeHistory  time.Duration `yaml:"trade_history"`
		Surveillance  time.Duration `yaml:"surveillance"`
		OrderBookSym  string        `yaml:"order_book_symbol"`
		TradeSym      string        `yaml:"trade_symbol"`
		SymbolChoices int           `yaml:"symbol_choices"`
	} `yaml:"polling"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SnapshotTopic string   `yaml:"snapshot_topic"`
		LogTopic      string   `yaml:"log_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		AutoCreate    bool     `yaml:"auto_create_topics"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Pipeline struct {
			MaxPerSecond int `yaml:"max_per_second"`
			BufferSize   int `yaml:"buffer_size"`
		} `yaml:"pipeline"`
	} `yaml:"kafka"`
	RateLimit struct {
		LoginBurst     float64 `yaml:"login_burst"`
		LoginPerSecond float64 `yaml:"login_per_second"`
	} `yaml:"rate_limit"`
}

// Default returns a configuration that runs against a local backend with no external services.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8090
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowRequest = time.Second
	c.Server.AllowedOrigins = []string{"*"}
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Log.Collector.Interval = 30 * time.Second
	c.Log.Collector.Threshold = 100
	c.AdminAPI.BaseURL = "http://localhost:3000/api/admin"
	c.AdminAPI.Timeout = 10 * time.Second
	c.Session.Backend = "memory"
	c.Session.TTL = 12 * time.Hour
	c.Session.CleanupInterval = time.Minute
	c.Redis.Host = "localhost"
	c.Redis.Port = 6379
	c.Redis.Prefix = "sentinel"
	c.Redis.PoolSize = 10
	c.Redis.MinIdleConns = 5
	c.Redis.PoolTimeout = 30 * time.Second
	c.Polling.MarketData = 5 * time.Second
	c.Polling.OrderBook = 2 * time.Second
	c.Polling.TradeHistory = 5 * time.Second
	c.Polling.Surveillance = 5 * time.Second
	c.Polling.OrderBookSym = "RELIANCE.NSE"
	c.Polling.TradeSym = "ALL"
	c.Polling.SymbolChoices = 4
	c.Kafka.SnapshotTopic = "sentinel.console.snapshots"
	c.Kafka.LogTopic = "sentinel.console.logs"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.Linger = 500 * time.Millisecond
	c.Kafka.Producer.BatchBytes = 1048576
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Pipeline.MaxPerSecond = 2
	c.Kafka.Pipeline.BufferSize = 256
	c.RateLimit.LoginBurst = 5
	c.RateLimit.LoginPerSecond = 0.2
	return c
}

// Load reads a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML (optional), a .env file (optional), and overrides with
// environment variables. Priority: ENV > .env > YAML > defaults.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			c = loaded
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		default:
			return nil, err
		}
	}

	_ = godotenv.Load()
	c.ApplyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ADMIN_API_URL"); v != "" {
		c.AdminAPI.BaseURL = v
	}
	c.AdminAPI.Timeout = util.ParseDurationDefault(os.Getenv("ADMIN_API_TIMEOUT"), c.AdminAPI.Timeout)
	if v := os.Getenv("CONSOLE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CONSOLE_HOST"); v != "" {
		c.Server.Host = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("CONSOLE_PORT"), c.Server.Port)
	if v := os.Getenv("CONSOLE_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = util.SplitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	c.Redis.Port = util.ParseIntDefault(os.Getenv("REDIS_PORT"), c.Redis.Port)
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = len(c.Kafka.Brokers) > 0
	}
	if v := os.Getenv("KAFKA_SNAPSHOT_TOPIC"); v != "" {
		c.Kafka.SnapshotTopic = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	u, err := url.Parse(c.AdminAPI.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("admin_api.base_url must be an absolute URL, got '%s'", c.AdminAPI.BaseURL)
	}
	if c.AdminAPI.Timeout <= 0 {
		return fmt.Errorf("admin_api.timeout must be positive")
	}
	c.AdminAPI.BaseURL = strings.TrimRight(c.AdminAPI.BaseURL, "/")
	if c.Session.Backend != "memory" && c.Session.Backend != "redis" {
		return fmt.Errorf("session.backend must be 'memory' or 'redis', got '%s'", c.Session.Backend)
	}
	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("session.cleanup_interval must be positive")
	}
	for name, d := range map[string]time.Duration{
		"market_data":   c.Polling.MarketData,
		"order_book":    c.Polling.OrderBook,
		"trade_history": c.Polling.TradeHistory,
		"surveillance":  c.Polling.Surveillance,
	} {
		if d <= 0 {
			return fmt.Errorf("polling.%s must be positive", name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
