package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LEDGER"

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

type Config struct {
	Environment string      `mapstructure:"environment"`
	Log         LogConfig   `mapstructure:"log"`
	HTTP        HTTPConfig  `mapstructure:"http"`
	Store       StoreConfig `mapstructure:"store"`
	Kafka       KafkaConfig `mapstructure:"kafka"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	// File enables a rotated log file next to the console output.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EventBuffer     int           `mapstructure:"event_buffer"`
}

type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Badger  BadgerConfig `mapstructure:"badger"`
	Redis   RedisConfig  `mapstructure:"redis"`
}

type BadgerConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
	// EncryptionKey is hex or base64; empty disables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
}

type RedisConfig struct {
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	ClientID         string   `mapstructure:"client_id"`
	SubmissionsTopic string   `mapstructure:"submissions_topic"`
	EventsTopic      string   `mapstructure:"events_topic"`
	Group            string   `mapstructure:"group"`
	Workers          int      `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.event_buffer", 256)

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.badger.path", "data/ledger")
	v.SetDefault("store.badger.in_memory", false)
	v.SetDefault("store.badger.encryption_key", "")
	v.SetDefault("store.redis.addresses", []string{"localhost:6379"})
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.max_retries", 3)
	v.SetDefault("store.redis.pool_size", 10)
	v.SetDefault("store.redis.min_idle_conns", 2)
	v.SetDefault("store.redis.dial_timeout", 5*time.Second)
	v.SetDefault("store.redis.read_timeout", 3*time.Second)
	v.SetDefault("store.redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:19092"})
	v.SetDefault("kafka.client_id", "ledgerd")
	v.SetDefault("kafka.submissions_topic", "trade-submissions")
	v.SetDefault("kafka.events_topic", "trade-recorded")
	v.SetDefault("kafka.group", "ledgerd")
	v.SetDefault("kafka.workers", 8)
}

// Load reads .env, then every existing YAML file in paths (later files
// override earlier ones), then LEDGER_* environment variables such as
// LEDGER_STORE_BACKEND or LEDGER_KAFKA_BROKERS=a:9092,b:9092.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if !c.Store.Badger.InMemory && strings.TrimSpace(c.Store.Badger.Path) == "" {
			errs = append(errs, errors.New("store.badger.path is required"))
		}
	case BackendRedis:
		if len(c.Store.Redis.Addresses) == 0 {
			errs = append(errs, errors.New("store.redis.addresses is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of memory, badger, redis", c.Store.Backend))
	}

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.EventBuffer <= 0 {
		errs = append(errs, errors.New("http.event_buffer must be positive"))
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required"))
		}
		if c.Kafka.SubmissionsTopic == "" || c.Kafka.EventsTopic == "" {
			errs = append(errs, errors.New("kafka topics are required"))
		}
		if c.Kafka.Workers <= 0 {
			errs = append(errs, errors.New("kafka.workers must be positive"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
