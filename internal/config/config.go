package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the server reads,
// e.g. --listen-port becomes ROACHPOKER_LISTEN_PORT.
const EnvPrefix = "ROACHPOKER"

// Config holds every runtime setting for the server. Values come from
// flags, from ROACHPOKER_* environment variables, or from an optional .env
// file loaded before flag parsing.
type Config struct {
	Bind       string
	Port       int
	PublicURL  string // external base URL used in invite links and QR codes
	CORSOrigin []string

	DatabaseURL string // Postgres DSN; empty disables persistence
	RedisAddr   string // Redis host:port; empty disables the action log
	RedisPass   string

	JWTSecret string

	HeartbeatInterval time.Duration // how often clients are expected to ping
	HeartbeatTimeout  time.Duration // silence longer than this evicts the connection
	SweepInterval     time.Duration // how often the liveness sweep runs

	RespondTimeoutSec int // default respond deadline for new rooms (0 = off)
	ReconnectGraceSec int // deadline extension granted on reconnect

	LogLevel string
	LogJSON  bool
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Bind:              "0.0.0.0",
		Port:              8080,
		PublicURL:         "http://localhost:8080",
		CORSOrigin:        []string{"*"},
		HeartbeatInterval: 30 * time.Second,
		HeartbeatTimeout:  60 * time.Second,
		SweepInterval:     30 * time.Second,
		RespondTimeoutSec: 60,
		ReconnectGraceSec: 15,
		LogLevel:          "info",
	}
}

// RegisterFlags declares every flag on fs, writing into c.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Bind, "bind", "b", c.Bind, "address to bind to (env: ROACHPOKER_BIND)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "port to listen on (env: ROACHPOKER_PORT)")
	fs.StringVar(&c.PublicURL, "public-url", c.PublicURL, "external base URL for invite links (env: ROACHPOKER_PUBLIC_URL)")
	fs.StringSliceVar(&c.CORSOrigin, "cors-origin", c.CORSOrigin, "allowed CORS origins (env: ROACHPOKER_CORS_ORIGIN)")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "Postgres DSN, empty disables persistence (env: ROACHPOKER_DATABASE_URL)")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address, empty disables the action log (env: ROACHPOKER_REDIS_ADDR)")
	fs.StringVar(&c.RedisPass, "redis-pass", c.RedisPass, "Redis password (env: ROACHPOKER_REDIS_PASS)")
	fs.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "HMAC secret for player tokens (env: ROACHPOKER_JWT_SECRET)")
	fs.DurationVar(&c.HeartbeatInterval, "heartbeat-interval", c.HeartbeatInterval, "expected client heartbeat cadence (env: ROACHPOKER_HEARTBEAT_INTERVAL)")
	fs.DurationVar(&c.HeartbeatTimeout, "heartbeat-timeout", c.HeartbeatTimeout, "silence before a connection is evicted (env: ROACHPOKER_HEARTBEAT_TIMEOUT)")
	fs.DurationVar(&c.SweepInterval, "sweep-interval", c.SweepInterval, "liveness sweep cadence (env: ROACHPOKER_SWEEP_INTERVAL)")
	fs.IntVar(&c.RespondTimeoutSec, "respond-timeout", c.RespondTimeoutSec, "default respond deadline in seconds, 0 disables (env: ROACHPOKER_RESPOND_TIMEOUT)")
	fs.IntVar(&c.ReconnectGraceSec, "reconnect-grace", c.ReconnectGraceSec, "deadline extension on reconnect in seconds (env: ROACHPOKER_RECONNECT_GRACE)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: trace/debug/info/warn/error (env: ROACHPOKER_LOG_LEVEL)")
	fs.BoolVar(&c.LogJSON, "log-json", c.LogJSON, "emit JSON logs (env: ROACHPOKER_LOG_JSON)")
}

// BindEnv wires every registered flag to its ROACHPOKER_* environment
// variable via viper and applies env values to flags the caller didn't set.
func BindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required")
	}
	if c.HeartbeatTimeout <= c.HeartbeatInterval {
		return fmt.Errorf("heartbeat-timeout (%s) must exceed heartbeat-interval (%s)", c.HeartbeatTimeout, c.HeartbeatInterval)
	}
	if c.RespondTimeoutSec < 0 || c.ReconnectGraceSec < 0 {
		return fmt.Errorf("respond-timeout and reconnect-grace must not be negative")
	}
	return nil
}

// ListenAddr returns the bind address in host:port form.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
