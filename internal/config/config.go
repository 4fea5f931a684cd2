package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/gatekeeper/internal/engine/artifact"
)

// Version is the gatekeeper release.
const Version = "0.4.0"

// Config holds all gatekeeper configuration.
type Config struct {
	Engine          EngineConfig
	Server          ServerConfig
	Output          OutputConfig
	LogLevel        string
	ShutdownTimeout time.Duration
}

// EngineConfig holds classification pipeline settings.
type EngineConfig struct {
	ModelDir            string
	ConfidenceThreshold float64
	Fallback            bool   // degrade to rules when models are missing
	MetadataPath        string // optional YAML overlay for the metadata table
	RulesPath           string // optional YAML rule table
	MinWords            int
	LanguageGuard       bool
}

// ServerConfig holds HTTP server and highlight store settings.
type ServerConfig struct {
	Addr       string
	DBPath     string // empty disables the highlight store
	WebhookURL string
}

// OutputConfig holds result sink settings.
type OutputConfig struct {
	File        string
	FileMaxSize int64
	Pretty      bool
	Verbosity   string // "minimal", "standard"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Engine: EngineConfig{
			ModelDir:            getenv("GATEKEEPER_MODEL_DIR", "models"),
			ConfidenceThreshold: getenvFloat("GATEKEEPER_CONFIDENCE_THRESHOLD", 0.55),
			Fallback:            getenvBool("GATEKEEPER_FALLBACK", true),
			MetadataPath:        os.Getenv("GATEKEEPER_METADATA_PATH"),
			RulesPath:           os.Getenv("GATEKEEPER_RULES_PATH"),
			MinWords:            getenvInt("GATEKEEPER_MIN_WORDS", 3),
			LanguageGuard:       getenvBool("GATEKEEPER_LANGUAGE_GUARD", false),
		},
		Server: ServerConfig{
			Addr:       getenv("GATEKEEPER_ADDR", "127.0.0.1:3000"),
			DBPath:     getenvAllowEmpty("GATEKEEPER_DB_PATH", "highlights.db"),
			WebhookURL: os.Getenv("GATEKEEPER_WEBHOOK_URL"),
		},
		Output: OutputConfig{
			File:        os.Getenv("GATEKEEPER_OUTPUT_FILE"),
			FileMaxSize: int64(getenvInt("GATEKEEPER_OUTPUT_FILE_MAX_SIZE", 0)),
			Pretty:      getenvBool("GATEKEEPER_OUTPUT_PRETTY", false),
			Verbosity:   getenv("GATEKEEPER_OUTPUT_VERBOSITY", "standard"),
		},
		LogLevel:        getenv("GATEKEEPER_LOG_LEVEL", "info"),
		ShutdownTimeout: getenvDuration("GATEKEEPER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports every invalid setting in one error.
func (c Config) Validate() error {
	var errs []error

	if t := c.Engine.ConfidenceThreshold; math.IsNaN(t) || t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold must be in [0, 1], got %v", c.Engine.ConfidenceThreshold))
	}
	if c.Engine.MinWords < 0 {
		errs = append(errs, fmt.Errorf("min words must be >= 0, got %d", c.Engine.MinWords))
	}
	if !c.Engine.Fallback && !artifact.Available(c.Engine.ModelDir) {
		errs = append(errs, fmt.Errorf("model dir %q has no stage manifests and GATEKEEPER_FALLBACK is off", c.Engine.ModelDir))
	}
	for _, f := range []struct{ env, path string }{
		{"GATEKEEPER_METADATA_PATH", c.Engine.MetadataPath},
		{"GATEKEEPER_RULES_PATH", c.Engine.RulesPath},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.env, err))
		}
	}

	switch strings.ToLower(c.Output.Verbosity) {
	case "minimal", "standard":
	default:
		errs = append(errs, fmt.Errorf("verbosity must be minimal or standard, got %q", c.Output.Verbosity))
	}
	if c.Output.FileMaxSize < 0 {
		errs = append(errs, fmt.Errorf("output file max size must be >= 0, got %d", c.Output.FileMaxSize))
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, fmt.Errorf("addr %q: %w", c.Server.Addr, err))
	}
	if c.Server.WebhookURL != "" {
		u, err := url.Parse(c.Server.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("GATEKEEPER_WEBHOOK_URL must be an http(s) URL, got %q", c.Server.WebhookURL))
		}
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvAllowEmpty distinguishes unset (fallback) from set-but-empty ("").
func getenvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
