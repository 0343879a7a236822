package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := New()
	cfg.JWTSecret = "test-secret"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 60*time.Second, cfg.HeartbeatTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"port too low", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"timeout below interval", func(c *Config) { c.HeartbeatTimeout = c.HeartbeatInterval / 2 }},
		{"negative respond timeout", func(c *Config) { c.RespondTimeoutSec = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			cfg.JWTSecret = "test-secret"
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverridesUnsetFlags(t *testing.T) {
	t.Setenv("ROACHPOKER_PORT", "9191")
	t.Setenv("ROACHPOKER_JWT_SECRET", "from-env")

	cfg := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))
	BindEnv(viper.New(), fs)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestFlagBeatsEnv(t *testing.T) {
	t.Setenv("ROACHPOKER_PORT", "9191")

	cfg := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "7070"}))
	BindEnv(viper.New(), fs)

	assert.Equal(t, 7070, cfg.Port)
}
