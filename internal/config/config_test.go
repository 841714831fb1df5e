package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	require.Equal(t, []string{"localhost:19092"}, cfg.Kafka.Brokers)
	require.False(t, cfg.Kafka.Enabled)
	require.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
store:
  backend: badger
  badger:
    path: /var/lib/ledger
kafka:
  enabled: true
  workers: 4
http:
  shutdown_timeout: 3s
`), 0o600))

	t.Setenv("LEDGER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LEDGER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, BackendBadger, cfg.Store.Backend)
	require.Equal(t, "/var/lib/ledger", cfg.Store.Badger.Path)
	require.Equal(t, 4, cfg.Kafka.Workers)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_STORE_BACKEND=redis\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEDGER_STORE_BACKEND") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendRedis, cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "etcd" },
			wantErr: `store.backend "etcd"`,
		},
		{
			name:    "badger without path",
			mutate:  func(c *Config) { c.Store.Backend = BackendBadger; c.Store.Badger.Path = "" },
			wantErr: "store.badger.path is required",
		},
		{
			name: "badger in memory needs no path",
			mutate: func(c *Config) {
				c.Store.Backend = BackendBadger
				c.Store.Badger.Path = ""
				c.Store.Badger.InMemory = true
			},
		},
		{
			name:    "kafka without workers",
			mutate:  func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Workers = 0 },
			wantErr: "kafka.workers must be positive",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func validConfig() *Config {
	return &Config{
		HTTP:  HTTPConfig{Addr: ":8080", EventBuffer: 16},
		Store: StoreConfig{Backend: BackendMemory, Badger: BadgerConfig{Path: "data"}},
		Kafka: KafkaConfig{
			Brokers:          []string{"localhost:9092"},
			SubmissionsTopic: "s",
			EventsTopic:      "e",
			Workers:          1,
		},
	}
}
