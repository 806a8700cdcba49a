package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 0, cfg.MaxAttempts)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 1000, cfg.Synth.Size)
	assert.Equal(t, 50, cfg.Trainer.Epochs)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CARDIOFOLA_RETRY_DELAY", "250ms")
	t.Setenv("CARDIOFOLA_MAX_ATTEMPTS", "5")
	t.Setenv("CARDIOFOLA_SEED", "99")

	cfg := ConfigFromEnv()
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, uint64(99), cfg.Seed)
}

func TestConfigFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("CARDIOFOLA_RETRY_DELAY", "soon")
	t.Setenv("CARDIOFOLA_MAX_ATTEMPTS", "many")
	t.Setenv("CARDIOFOLA_SEED", "-1")

	assert.Equal(t, DefaultConfig(), ConfigFromEnv())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardiofola.yaml")
	err := os.WriteFile(path, []byte(`
retry_delay: 500ms
max_attempts: 4
seed: 7
trainer:
  epochs: 10
synth:
  size: 200
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 10, cfg.Trainer.Epochs)
	assert.Equal(t, 32, cfg.Trainer.BatchSize, "unset keys keep defaults")
	assert.Equal(t, 200, cfg.Synth.Size)
	assert.Equal(t, 20.0, cfg.Synth.Age.Min)
}

func TestLoadConfigFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardiofola.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\n"), 0o644))
	t.Setenv("CARDIOFOLA_SEED", "8")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), cfg.Seed)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_attempts: [1, 2]\n"), 0o644))
	_, err = LoadConfigFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("trainer:\n  epochs: 0\n"), 0o644))
	_, err = LoadConfigFile(invalid)
	assert.ErrorContains(t, err, "trainer")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }},
		{"negative attempts", func(c *Config) { c.MaxAttempts = -1 }},
		{"empty synth", func(c *Config) { c.Synth.Size = 0 }},
		{"bad batch", func(c *Config) { c.Trainer.BatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
