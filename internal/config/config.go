// Package config loads the service configuration from the environment.
package config

import "time"

// Config holds all settings, parsed by github.com/caarlos0/env.
type Config struct {
	// Server
	Port        int    `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"salespage"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Page content
	ContentPath     string `env:"CONTENT_PATH"`
	CountdownTarget string `env:"COUNTDOWN_TARGET"`
	StreamFPS       int    `env:"STREAM_FPS" envDefault:"30"`

	// Submissions
	SubmitDelay       time.Duration `env:"SUBMIT_DELAY" envDefault:"0s"`
	SubmitMinDuration time.Duration `env:"SUBMIT_MIN_DURATION" envDefault:"0s"`
	WebhookURL        string        `env:"SHEETS_WEBHOOK_URL"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries uint64        `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`

	// Duplicate suppression
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	DedupeWindow  time.Duration `env:"DEDUPE_WINDOW" envDefault:"10m"`

	// Telemetry
	OtelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
	OtelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}
