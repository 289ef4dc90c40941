package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads a local .env file when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and formats env tags cannot express.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d (must be 1-65535)", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (want json or text)", c.LogFormat)
	}
	if c.CountdownTarget != "" {
		if _, err := time.Parse(time.RFC3339, c.CountdownTarget); err != nil {
			return fmt.Errorf("invalid COUNTDOWN_TARGET %q: %w", c.CountdownTarget, err)
		}
	}
	if c.StreamFPS < 1 || c.StreamFPS > 120 {
		return fmt.Errorf("invalid STREAM_FPS: %d (must be 1-120)", c.StreamFPS)
	}
	if c.SubmitDelay < 0 || c.SubmitMinDuration < 0 {
		return fmt.Errorf("submit delays must be non-negative")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid BASE_URL %q", c.BaseURL)
		}
	}
	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid SHEETS_WEBHOOK_URL %q", c.WebhookURL)
		}
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("invalid WEBHOOK_TIMEOUT: %v", c.WebhookTimeout)
	}
	if c.DedupeWindow < 0 {
		return fmt.Errorf("invalid DEDUPE_WINDOW: %v", c.DedupeWindow)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Target parses COUNTDOWN_TARGET. ok is false when it is unset.
func (c *Config) Target() (time.Time, bool) {
	if c.CountdownTarget == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.CountdownTarget)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewLogger builds the logrus logger described by the config.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if strings.EqualFold(c.LogFormat, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
