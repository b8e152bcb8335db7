package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultFeedBaseURL     = "https://opendata.paris.fr"
	DefaultFeedDataset     = "velib-disponibilite-en-temps-reel"
	DefaultGeocoderBaseURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent       = "velib-go/1.0"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration

	// Sent with every outbound request, feed and geocoder alike
	UserAgent string

	// Station feed
	FeedBaseURL    string
	FeedDataset    string
	FeedMaxRecords int

	// Geocoding
	GeocoderBaseURL string

	// Nearby search radius in meters
	MaxDistance float64

	PollSchedule  string
	SnapshotTable string
	MapBucket     string
	MapDir        string
	Port          string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithFeed(baseURL, dataset string, maxRecords int) Option {
	return func(c *Config) {
		c.FeedBaseURL = baseURL
		c.FeedDataset = dataset
		if maxRecords > 0 {
			c.FeedMaxRecords = maxRecords
		}
	}
}

func WithGeocoder(baseURL string) Option {
	return func(c *Config) {
		c.GeocoderBaseURL = baseURL
	}
}

// WithUserAgent sets the User-Agent of outbound HTTP requests
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		if userAgent != "" {
			c.UserAgent = userAgent
		}
	}
}

// WithMaxDistance sets the nearby search radius; negative values are ignored
func WithMaxDistance(meters float64) Option {
	return func(c *Config) {
		if meters >= 0 {
			c.MaxDistance = meters
		}
	}
}

func WithPollSchedule(schedule string) Option {
	return func(c *Config) {
		c.PollSchedule = schedule
	}
}

func WithSnapshotTable(table string) Option {
	return func(c *Config) {
		c.SnapshotTable = table
	}
}

func WithMapOutput(bucket, dir string) Option {
	return func(c *Config) {
		c.MapBucket = bucket
		c.MapDir = dir
	}
}

func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:     "production",
		LogLevel:        zerolog.InfoLevel,
		HTTPTimeout:     10 * time.Second,
		UserAgent:       DefaultUserAgent,
		FeedBaseURL:     DefaultFeedBaseURL,
		FeedDataset:     DefaultFeedDataset,
		FeedMaxRecords:  100,
		GeocoderBaseURL: DefaultGeocoderBaseURL,
		MaxDistance:     500,
		PollSchedule:    "@every 60s",
		SnapshotTable:   "velib-snapshots",
		MapDir:          "static",
		Port:            "5000",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Console output for local work, structured JSON elsewhere
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithFeed(
			getEnvOrDefault("VELIB_BASE_URL", DefaultFeedBaseURL),
			getEnvOrDefault("VELIB_DATASET", DefaultFeedDataset),
			getEnvInt("VELIB_MAX_RECORDS", 100),
		),
		WithUserAgent(getEnvOrDefault("HTTP_USER_AGENT", DefaultUserAgent)),
		WithGeocoder(getEnvOrDefault("GEOCODER_BASE_URL", DefaultGeocoderBaseURL)),
		WithMaxDistance(getFloatEnvOrDefault("MAX_DISTANCE_METERS", 500)),
		WithPollSchedule(getEnvOrDefault("POLL_SCHEDULE", "@every 60s")),
		WithSnapshotTable(getEnvOrDefault("SNAPSHOT_TABLE", "velib-snapshots")),
		WithMapOutput(os.Getenv("MAP_BUCKET"), getEnvOrDefault("MAP_DIR", "static")),
		WithPort(getEnvOrDefault("PORT", "5000")),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultValue
}
