// Package config loads server settings from flags and TTT_* environment
// variables. Flags win over the environment, which wins over defaults.
package config

import (
    "errors"
    "flag"
    "fmt"
    "io"
    "strconv"
    "time"

    "github.com/rs/zerolog"
)

// ErrInvalid wraps every flag or environment value that fails to parse.
var ErrInvalid = errors.New("invalid config")

// Config holds the server settings.
type Config struct {
    Addr            string
    LogLevel        zerolog.Level
    LogJSON         bool
    Heartbeat       time.Duration
    ShutdownTimeout time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
    return Config{
        Addr:            ":8080",
        LogLevel:        zerolog.InfoLevel,
        Heartbeat:       15 * time.Second,
        ShutdownTimeout: 5 * time.Second,
    }
}

// Load parses args (without the program name). getenv may be nil.
func Load(args []string, getenv func(string) string) (Config, error) {
    if getenv == nil {
        getenv = func(string) string { return "" }
    }
    cfg := Default()
    level := cfg.LogLevel.String()

    env := func(key string, apply func(string) error) error {
        v := getenv(key)
        if v == "" {
            return nil
        }
        if err := apply(v); err != nil {
            return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
        }
        return nil
    }
    errs := []error{
        env("TTT_ADDR", func(v string) error { cfg.Addr = v; return nil }),
        env("TTT_LOG_LEVEL", func(v string) error { level = v; return nil }),
        env("TTT_LOG_JSON", func(v string) (err error) { cfg.LogJSON, err = strconv.ParseBool(v); return }),
        env("TTT_HEARTBEAT", func(v string) (err error) { cfg.Heartbeat, err = time.ParseDuration(v); return }),
        env("TTT_SHUTDOWN_TIMEOUT", func(v string) (err error) { cfg.ShutdownTimeout, err = time.ParseDuration(v); return }),
    }
    if err := errors.Join(errs...); err != nil {
        return Config{}, err
    }

    fs := flag.NewFlagSet("server", flag.ContinueOnError)
    fs.SetOutput(io.Discard)
    fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
    fs.StringVar(&level, "log-level", level, "trace|debug|info|warn|error")
    fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "emit JSON logs instead of console output")
    fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "idle ping interval for event streams")
    fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown limit")
    if err := fs.Parse(args); err != nil {
        return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
    }

    lvl, err := zerolog.ParseLevel(level)
    if err != nil || level == "" {
        return Config{}, fmt.Errorf("%w: log level %q", ErrInvalid, level)
    }
    cfg.LogLevel = lvl
    if cfg.Heartbeat <= 0 || cfg.ShutdownTimeout <= 0 {
        return Config{}, fmt.Errorf("%w: durations must be positive", ErrInvalid)
    }
    return cfg, nil
}
