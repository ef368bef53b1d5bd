package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissing = errors.New("required environment variable is not set")
	ErrInvalid = errors.New("invalid environment variable")
)

type Config struct {
	ListenAddr string

	PushoverToken  string
	PushoverUser   string
	PushoverAPIURL string
	AlertMessage   string

	HeartbeatTimeout time.Duration
	CheckInterval    time.Duration
	Debounce         time.Duration

	DatabaseURL string
	LogLevel    string
	LogFile     string
}

// Load reads the configuration from the environment. Every missing or
// malformed variable is reported in the returned error.
func Load() (*Config, error) {
	l := &loader{}
	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", "0.0.0.0:3000"),

		PushoverToken:  l.requireEnv("PUSHOVER_TOKEN"),
		PushoverUser:   l.requireEnv("PUSHOVER_USER"),
		PushoverAPIURL: getEnv("PUSHOVER_API_URL", "https://api.pushover.net"),
		AlertMessage:   getEnv("ALERT_MESSAGE", "❌ Poop Monitor is offline!"),

		HeartbeatTimeout: l.getSeconds("HEARTBEAT_TIMEOUT_SECS", 90),
		CheckInterval:    l.getSeconds("CHECK_INTERVAL_SECS", 10),
		Debounce:         l.getSeconds("DEBOUNCE_SECS", 300),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	if cfg.CheckInterval <= 0 {
		l.errs = append(l.errs, fmt.Errorf("%w: CHECK_INTERVAL_SECS must be greater than zero", ErrInvalid))
	}

	if err := errors.Join(l.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

type loader struct {
	errs []error
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (l *loader) requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		l.errs = append(l.errs, fmt.Errorf("%w: %s", ErrMissing, key))
	}
	return v
}

// getSeconds parses a non-negative whole number of seconds.
func (l *loader) getSeconds(key string, fallback uint64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%w: %s=%q must be a number of seconds", ErrInvalid, key, v))
		return time.Duration(fallback) * time.Second
	}
	return time.Duration(n) * time.Second
}
