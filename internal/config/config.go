package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const (
	DefaultEventsAPIURL      = "http://localhost:3000"
	DefaultGCTime            = 5 * time.Minute
	DefaultRequestsPerSecond = 10.0
)

type Config struct {
	eventsAPIURL      string
	sentryDSN         string
	otlpEndpoint      string
	staleTime         time.Duration
	gcTime            time.Duration
	requestsPerSecond float64
	logLevel          slog.Level
	env               environment
}

// EventsAPIURL is empty in development when no URL is configured, meaning the mocked API should be used
func (c *Config) EventsAPIURL() string {
	return c.eventsAPIURL
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) OTLPEndpoint() string {
	return c.otlpEndpoint
}

// StaleTime is used by views that don't pick their own
func (c *Config) StaleTime() time.Duration {
	return c.staleTime
}

func (c *Config) GCTime() time.Duration {
	return c.gcTime
}

func (c *Config) RequestsPerSecond() float64 {
	return c.requestsPerSecond
}

// LogLevel defaults to warn, the logs share the terminal with the views
func (c *Config) LogLevel() slog.Level {
	return c.logLevel
}

func (c *Config) Environment() string {
	return string(c.env)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, eventsAPIURL: %s, staleTime: %s, gcTime: %s, requestsPerSecond: %g, logLevel: %s, ...}",
		string(c.env), c.eventsAPIURL, c.staleTime, c.gcTime, c.requestsPerSecond, c.logLevel,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}
	invalidValue := func(key, value string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s (%s)", ErrInvalidValue, key, value)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("EVENTLIGHT_ENVIRONMENT")
	if !ok {
		return missingKey("EVENTLIGHT_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return invalidValue("EVENTLIGHT_ENVIRONMENT", rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	eventsAPIURL := os.Getenv("EVENTS_API_URL")
	sentryDSN := os.Getenv("SENTRY_DSN")
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if eventsAPIURL != "" {
		parsed, err := url.Parse(eventsAPIURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return invalidValue("EVENTS_API_URL", eventsAPIURL)
		}
	}

	staleTime := time.Duration(0)
	if raw := os.Getenv("EVENTLIGHT_STALE_TIME"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			return invalidValue("EVENTLIGHT_STALE_TIME", raw)
		}
		staleTime = parsed
	}

	gcTime := DefaultGCTime
	if raw := os.Getenv("EVENTLIGHT_GC_TIME"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return invalidValue("EVENTLIGHT_GC_TIME", raw)
		}
		gcTime = parsed
	}

	requestsPerSecond := DefaultRequestsPerSecond
	if raw := os.Getenv("EVENTLIGHT_REQUESTS_PER_SECOND"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return invalidValue("EVENTLIGHT_REQUESTS_PER_SECOND", raw)
		}
		requestsPerSecond = parsed
	}

	logLevel := slog.LevelWarn
	if raw := os.Getenv("EVENTLIGHT_LOG_LEVEL"); raw != "" {
		if err := logLevel.UnmarshalText([]byte(raw)); err != nil {
			return invalidValue("EVENTLIGHT_LOG_LEVEL", raw)
		}
	}

	if env == production || env == staging {
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
		if eventsAPIURL == "" {
			eventsAPIURL = DefaultEventsAPIURL
		}
	}

	return Config{
		eventsAPIURL:      eventsAPIURL,
		sentryDSN:         sentryDSN,
		otlpEndpoint:      otlpEndpoint,
		staleTime:         staleTime,
		gcTime:            gcTime,
		requestsPerSecond: requestsPerSecond,
		logLevel:          logLevel,
		env:               env,
	}, nil
}
