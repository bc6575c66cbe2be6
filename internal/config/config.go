// Package config loads server settings from the environment, falling back to
// an optional .env file and then to defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/water-tracker/internal/auth"
)

// Defaults. The API listens on all interfaces, port 8085.
const (
	DefaultPort            = 8085
	DefaultDBPath          = "data/water_tracker.db"
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	Host            string // empty = all interfaces
	Port            int
	DBPath          string
	LogLevel        slog.Level
	BcryptCost      int
	ShutdownTimeout time.Duration
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration. Process environment variables win over entries of
// envFile; a missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}

	return fromLookup(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileVars[key]
	})
}

func fromLookup(lookup func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Host:   get("HOST", ""),
		DBPath: get("DB_PATH", DefaultDBPath),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", strconv.Itoa(DefaultPort))); err != nil || cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", lookup("PORT"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", lookup("LOG_LEVEL"), err)
	}

	cfg.BcryptCost, err = strconv.Atoi(get("BCRYPT_COST", strconv.Itoa(auth.DefaultCost)))
	if err != nil || cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("config: invalid BCRYPT_COST %q (want %d-%d)", lookup("BCRYPT_COST"), bcrypt.MinCost, bcrypt.MaxCost)
	}

	cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String()))
	if err != nil || cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("config: invalid SHUTDOWN_TIMEOUT %q", lookup("SHUTDOWN_TIMEOUT"))
	}

	return cfg, nil
}
