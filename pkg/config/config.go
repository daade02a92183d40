package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Manifold/internal/domain/models"
	"Manifold/internal/repository"
	"Manifold/internal/services/interpreter"
	"Manifold/internal/services/manifold"
	"Manifold/internal/services/multiscale"
	"Manifold/internal/usecase"
	applogger "Manifold/pkg/logger"
	xutil "Manifold/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production"`

	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
		DisableCORS     bool          `yaml:"disable_cors"`
		// CORSOrigins lists the origins allowed to read the API; empty allows any.
		CORSOrigins []string `yaml:"cors_origins"`
		// RateLimit is requests per second per client IP; 0 disables it.
		RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
		RateBurst int     `yaml:"rate_burst" default:"20"`
		// CacheTTL is how long single-horizon readings are served from cache.
		CacheTTL time.Duration `yaml:"cache_ttl" default:"15s"`
	} `yaml:"server"`

	Logger applogger.Config `yaml:"logger"`

	Engine      manifold.Config        `yaml:"engine"`
	Interpreter interpreter.Thresholds `yaml:"interpreter"`
	Multiscale  multiscale.Config      `yaml:"multiscale"`

	Analysis struct {
		Window  int           `yaml:"window" default:"500" validate:"gte=12"`
		Timeout time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
	} `yaml:"analysis"`

	Monitor struct {
		usecase.MonitorConfig `yaml:",inline"`

		Symbols     []string         `yaml:"symbols" validate:"dive,required"`
		Horizons    []models.Horizon `yaml:"horizons" default:"[\"short\"]"`
		HistorySize int              `yaml:"history_size" default:"1000" validate:"gte=1"`
		// StateTTL bounds how long a watched key's last snapshot outlives its loop.
		StateTTL time.Duration `yaml:"state_ttl" default:"24h"`
	} `yaml:"monitor"`

	Feed repository.ResilientConfig `yaml:"feed"`

	ClickHouse struct {
		Host             string        `yaml:"host" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"manifold"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"manifold"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string        `yaml:"topic" default:"manifold.alerts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`

	Webhook struct {
		URL     string            `yaml:"url" validate:"omitempty,url"`
		Timeout time.Duration     `yaml:"timeout" default:"5s"`
		Headers map[string]string `yaml:"headers"`
	} `yaml:"webhook"`
}

var validate = validator.New()

// Load applies defaults, overlays a YAML configuration file and validates
// the result.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads a .env file when present, reads the YAML and overrides
// it with environment variables before validation.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults go in first so the YAML only replaces what it names and an
	// explicit zero survives.
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MANIFOLD_SYMBOLS"); v != "" {
		c.Monitor.Symbols = xutil.SplitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = xutil.SplitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR port: %w", err)
		}
		c.Redis.Host, c.Redis.Port, c.Redis.Enabled = host, p, true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("ALERT_WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}
	return nil
}

func (c *Config) finalize() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	for _, h := range c.Monitor.Horizons {
		if !models.IsValidHorizon(h) {
			return fmt.Errorf("validate config: monitor.horizons: unknown horizon %q", h)
		}
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("validate config: engine: %w", err)
	}
	return nil
}
