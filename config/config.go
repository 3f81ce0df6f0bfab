// Package config assembles the server configuration from an optional .env
// file, the process environment and command line flags, in increasing order
// of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr      string
	LogLevel        logrus.Level
	LogFormat       string
	AllowedOrigins  []string
	SeedSample      bool
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

const (
	defaultListenAddr      = ":5000"
	defaultMaxBodyBytes    = 1 << 20
	defaultShutdownTimeout = 5 * time.Second
)

// Load reads envFile (skipped when empty or missing) and then parses args,
// which must not include the program name.
func Load(envFile string, args []string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logrus.WithField("file", envFile).Info("No .env file found")
		}
	}

	cfg := &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", defaultListenAddr),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SeedSample:      true,
		MaxBodyBytes:    defaultMaxBodyBytes,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if v := os.Getenv("SEED_SAMPLE_OVERLAY"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_SAMPLE_OVERLAY %q: %w", v, err)
		}
		cfg.SeedSample = seed
	}

	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_BODY_BYTES %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	fs := flag.NewFlagSet("overlay-server", flag.ContinueOnError)
	listenAddr := fs.String("listen", cfg.ListenAddr, "Set the server listen address")
	logLevel := fs.String("loglevel", getEnv("LOG_LEVEL", "info"), "Set the logging level: debug, info, warn, error, fatal, panic")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.ListenAddr = *listenAddr

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want text or json", cfg.LogFormat)
	}

	return cfg, nil
}

// Formatter returns the logrus formatter selected by LogFormat.
func (c *Config) Formatter() logrus.Formatter {
	if c.LogFormat == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
