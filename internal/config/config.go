// ABOUTME: Configuration loader for the yts client
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL         = "http://localhost:8080/api"
	DefaultSessionBackend = "file"
	DefaultHTTPTimeout    = 10 * time.Minute
	DefaultCacheTTL       = 5 * time.Minute
	appDirName            = "yts"
)

type Config struct {
	// Backend
	APIURL      string
	HTTPTimeout time.Duration // summary generation can take minutes

	// Local state
	ConfigDir      string
	SessionBackend string // file, sqlite or memory
	DownloadDir    string
	CacheTTL       time.Duration

	// Google sign-in (optional)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleIDToken      string // pre-obtained credential forwarded verbatim

	// Logging
	LogLevel  string
	LogFormat string

	NerdFonts string
}

// GoogleConfigured returns true if the loopback sign-in flow can run
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Overrides holds command-line values that take precedence over the environment
type Overrides struct {
	APIURL         string
	ConfigDir      string
	SessionBackend string
	// Ephemeral keeps the session in memory for this process only
	Ephemeral bool
}

// Load reads an optional .env file from the working directory, then the environment
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:      getEnv("YTS_API_URL", DefaultAPIURL),
		HTTPTimeout: getEnvDuration("YTS_HTTP_TIMEOUT", DefaultHTTPTimeout),

		ConfigDir:      getEnv("YTS_CONFIG_DIR", DefaultConfigDir()),
		SessionBackend: strings.ToLower(getEnv("YTS_SESSION_BACKEND", DefaultSessionBackend)),
		DownloadDir:    getEnv("YTS_DOWNLOAD_DIR", "."),
		CacheTTL:       getEnvDuration("YTS_CACHE_TTL", DefaultCacheTTL),

		GoogleClientID:     os.Getenv("YTS_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("YTS_GOOGLE_CLIENT_SECRET"),
		GoogleIDToken:      os.Getenv("YTS_GOOGLE_ID_TOKEN"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		NerdFonts: os.Getenv("YTS_NERD_FONTS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides non-empty values and re-validates the result
func (c *Config) Apply(o Overrides) error {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.ConfigDir != "" {
		c.ConfigDir = o.ConfigDir
	}
	if o.SessionBackend != "" {
		c.SessionBackend = strings.ToLower(o.SessionBackend)
	}
	if o.Ephemeral {
		c.SessionBackend = "memory"
	}
	return c.Validate()
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("YTS_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	switch c.SessionBackend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("YTS_SESSION_BACKEND must be file, sqlite or memory, got %q", c.SessionBackend)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("YTS_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.ConfigDir == "" {
		return errors.New("cannot determine config directory: set YTS_CONFIG_DIR")
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// loadDotEnv loads path into the environment without overriding existing
// variables. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "10m") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
