package redis

import "time"

// Config holds the connection settings passed to redis.NewUniversalClient.
// A single address yields a plain client, several yield a cluster client.
type Config struct {
	addresses []string
	password  string
	db        int

	maxRetries   int
	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	poolSize     int
	minIdleConns int
}

type Option func(*Config)

func WithAddresses(addrs ...string) Option {
	return func(c *Config) {
		c.addresses = addrs
	}
}

// WithAuth selects the password and logical database. db is ignored by
// cluster deployments.
func WithAuth(password string, db int) Option {
	return func(c *Config) {
		c.password = password
		c.db = db
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(c *Config) {
		c.maxRetries = maxRetries
	}
}

// WithTimeouts sets dial, read and write timeouts; zero keeps the go-redis
// default for that timeout.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(c *Config) {
		c.dialTimeout = dial
		c.readTimeout = read
		c.writeTimeout = write
	}
}

func WithPool(size, minIdle int) Option {
	return func(c *Config) {
		c.poolSize = size
		c.minIdleConns = minIdle
	}
}
