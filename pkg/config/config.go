package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"ShortBasket/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Provider struct {
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout"`
		Retries      int           `yaml:"retries"`
		RateCapacity int           `yaml:"rate_capacity"`
		RateRefill   float64       `yaml:"rate_refill"`
	} `yaml:"provider"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbol         string        `yaml:"symbol"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Strategy struct {
		BenchmarkSymbol   string  `yaml:"benchmark_symbol"`
		MaxShortPositions int     `yaml:"max_short_positions"`
		PriceChangeWeight float64 `yaml:"price_change_weight"`
		VolumeWeight      float64 `yaml:"volume_weight"`
		VolatilityWeight  float64 `yaml:"volatility_weight"`
		FundingRateWeight float64 `yaml:"funding_rate_weight"`
	} `yaml:"strategy"`
	Temperature struct {
		MaxEntries   int           `yaml:"max_entries"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
	} `yaml:"temperature"`
	Cache struct {
		Type      string        `yaml:"type"` // memory | redis | layered
		ResultTTL time.Duration `yaml:"result_ttl"`
		Redis     struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	LogSink struct {
		Enabled bool `yaml:"enabled"`
		Kafka   struct {
			Brokers      []string `yaml:"brokers"`
			Topic        string   `yaml:"topic"`
			RequiredAcks int      `yaml:"required_acks"`
			Compression  string   `yaml:"compression"`
			Producer     struct {
				MaxAttempts  int           `yaml:"max_attempts"`
				Linger       time.Duration `yaml:"linger"`
				BatchBytes   int           `yaml:"batch_bytes"`
				BatchSize    int           `yaml:"batch_size"`
				WriteTimeout time.Duration `yaml:"write_timeout"`
				ReadTimeout  time.Duration `yaml:"read_timeout"`
				Async        bool          `yaml:"async"`
			} `yaml:"producer"`
		} `yaml:"kafka"`
	} `yaml:"log_sink"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("STREAM_WEBSOCKET_URL"); v != "" {
		c.Stream.WebSocketURL = v
	}
	if v := os.Getenv("BENCHMARK_SYMBOL"); v != "" {
		c.Strategy.BenchmarkSymbol = v
	}
	if v := os.Getenv("CACHE_TYPE"); v != "" {
		c.Cache.Type = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.Cache.Redis.DB = util.ParseIntDefault(v, c.Cache.Redis.DB)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.LogSink.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.LogSink.Kafka.Topic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Strategy.BenchmarkSymbol == "" {
		return fmt.Errorf("strategy.benchmark_symbol is required")
	}
	if c.Strategy.MaxShortPositions < 0 {
		return fmt.Errorf("strategy.max_short_positions must be >= 0")
	}
	sum := c.Strategy.PriceChangeWeight + c.Strategy.VolumeWeight +
		c.Strategy.VolatilityWeight + c.Strategy.FundingRateWeight
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("strategy weights must sum to 1, got %.6f", sum)
	}
	switch c.Cache.Type {
	case "", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.type must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Type)
	}
	if c.Cache.Type == "redis" || c.Cache.Type == "layered" {
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for cache.type '%s'", c.Cache.Type)
		}
	}
	if c.Stream.Enabled && c.Stream.WebSocketURL == "" {
		return fmt.Errorf("stream.websocket_url is required when stream is enabled")
	}
	if c.LogSink.Enabled && len(c.LogSink.Kafka.Brokers) == 0 {
		return fmt.Errorf("log_sink.kafka.brokers cannot be empty when log sink is enabled")
	}
	return nil
}
