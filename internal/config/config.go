// Package config carries the tool's runtime settings. Defaults come
// from the environment; an optional TOML file overrides them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// Serve mode.
	Port           string `toml:"port"`
	APIKey         string `toml:"api_key"` // empty disables auth
	MaxUploadBytes int64  `toml:"max_upload_bytes"`

	// File emission.
	Workers int `toml:"workers"`

	// Upload client.
	RulateURL      string        `toml:"rulate_url"`
	RulateUsername string        `toml:"rulate_username"`
	RulatePassword string        `toml:"rulate_password"`
	HTTPTimeout    time.Duration `toml:"http_timeout"`

	// PDF extraction.
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

func Load() Config {
	cfg := Config{
		Port:           envOr("GLAVTOOL_PORT", "8091"),
		APIKey:         os.Getenv("GLAVTOOL_API_KEY"),
		MaxUploadBytes: envInt64("GLAVTOOL_MAX_UPLOAD_BYTES", 52428800), // 50MB

		Workers: envInt("GLAVTOOL_WORKERS", 4),

		RulateURL:      envOr("RULATE_URL", "https://tl.rulate.ru"),
		RulateUsername: os.Getenv("RULATE_USERNAME"),
		RulatePassword: os.Getenv("RULATE_PASSWORD"),
		HTTPTimeout:    envDuration("GLAVTOOL_HTTP_TIMEOUT", 30*time.Second),

		PDFFallbackPdftotext: envBool("GLAVTOOL_PDF_FALLBACK_PDFTOTEXT", true),
	}

	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// ApplyFile overlays settings from a TOML file onto the config. Keys
// absent from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.normalize()
	return nil
}

// ValidateUpload checks the settings the upload client cannot run without.
func (c Config) ValidateUpload() error {
	if c.RulateUsername == "" {
		return fmt.Errorf("RULATE_USERNAME is required")
	}
	if c.RulatePassword == "" {
		return fmt.Errorf("RULATE_PASSWORD is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
