package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP      HTTP
	Lifecycle Lifecycle
	Storage   Storage
	Redis     Redis
	Stream    Stream
	Client    Client
}

type HTTP struct {
	Port           int      `env:"PORT" envDefault:"5000"`
	Prefix         string   `env:"API_PREFIX"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Lifecycle struct {
	ThresholdMinutes int           `env:"TASK_TIMEOUT_MINUTES" envDefault:"4320"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

type Storage struct {
	Driver  string `env:"STORAGE_DRIVER" envDefault:"file"`
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
	Reload  bool   `env:"STORAGE_RELOAD" envDefault:"false"`
	Seed    bool   `env:"SEED_SAMPLE_TASKS" envDefault:"true"`
}

// SQLitePath is where the sqlite driver keeps its database.
func (s Storage) SQLitePath() string {
	return filepath.Join(s.DataDir, "tasks.db")
}

type Redis struct {
	Addr     string `env:"Redis_Address" envDefault:"localhost:6379"`
	Password string `env:"Redis_Password"`
	DB       int    `env:"Redis_DB"`
	TasksKey string `env:"Redis_TasksKey" envDefault:"taskboard:tasks"`
}

type Stream struct {
	Delay       time.Duration `env:"STREAM_DELAY" envDefault:"1500ms"`
	FailureRate float64       `env:"STREAM_FAILURE_RATE" envDefault:"0.1"`
}

type Client struct {
	BaseURL          string        `env:"API_URL" envDefault:"http://localhost:5000"`
	PollInterval     time.Duration `env:"CLIENT_POLL_INTERVAL" envDefault:"30s"`
	EvaluateInterval time.Duration `env:"CLIENT_EVALUATE_INTERVAL" envDefault:"60s"`
	Retries          int           `env:"CLIENT_RETRIES" envDefault:"3"`
	BaseBackoff      time.Duration `env:"CLIENT_BASE_BACKOFF" envDefault:"500ms"`
	MaxBackoff       time.Duration `env:"CLIENT_MAX_BACKOFF" envDefault:"5s"`
	Timeout          time.Duration `env:"CLIENT_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	c, err := Parse(env.Options{})
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func Parse(opts env.Options) (*Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverMemory, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Lifecycle.ThresholdMinutes <= 0 {
		return fmt.Errorf("TASK_TIMEOUT_MINUTES must be positive, got %d", c.Lifecycle.ThresholdMinutes)
	}
	if c.Lifecycle.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.Lifecycle.SweepInterval)
	}
	if p := c.HTTP.Prefix; p != "" && (!strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/")) {
		return fmt.Errorf("API_PREFIX must start with '/' and not end with one, got %q", p)
	}
	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("CLIENT_POLL_INTERVAL must be positive, got %s", c.Client.PollInterval)
	}
	if c.Client.EvaluateInterval <= 0 {
		return fmt.Errorf("CLIENT_EVALUATE_INTERVAL must be positive, got %s", c.Client.EvaluateInterval)
	}
	if c.Client.Retries < 0 {
		return fmt.Errorf("CLIENT_RETRIES must not be negative, got %d", c.Client.Retries)
	}
	if c.Stream.FailureRate < 0 || c.Stream.FailureRate > 1 {
		return fmt.Errorf("STREAM_FAILURE_RATE must be within [0, 1], got %v", c.Stream.FailureRate)
	}
	return nil
}
