package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds cache and persistence tuning
type CacheConfig struct {
	// Geocoding LRU settings
	GeocodeLRUSize       int
	GeocodeLRUTTLMinutes int

	// Snapshot table settings
	SnapshotTTLDays int

	// Batch processing settings
	BatchSize       int
	MaxBatchRetries int

	EnableGeocodeCache bool
}

const (
	// Default values
	defaultGeocodeLRUSize    = 1000
	defaultGeocodeTTLMinutes = 24 * 60
	defaultSnapshotTTLDays   = 30
	defaultBatchSize         = 25
	defaultMaxBatchRetries   = 3

	// DynamoDB rejects BatchWriteItem calls with more items than this
	maxDynamoBatchSize = 25
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		GeocodeLRUSize:       getEnvInt("CACHE_GEOCODE_LRU_SIZE", defaultGeocodeLRUSize),
		GeocodeLRUTTLMinutes: getEnvInt("CACHE_GEOCODE_TTL_MINUTES", defaultGeocodeTTLMinutes),
		SnapshotTTLDays:      getEnvInt("CACHE_SNAPSHOT_TTL_DAYS", defaultSnapshotTTLDays),
		BatchSize:            getEnvInt("CACHE_BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries:      getEnvInt("CACHE_MAX_BATCH_RETRIES", defaultMaxBatchRetries),
		EnableGeocodeCache:   getEnvBool("CACHE_ENABLE_GEOCODE", true),
	}

	if config.BatchSize <= 0 || config.BatchSize > maxDynamoBatchSize {
		log.Warn().Int("BatchSize", config.BatchSize).Msg("Batch size out of range, using default")
		config.BatchSize = defaultBatchSize
	}
	if config.MaxBatchRetries < 1 {
		config.MaxBatchRetries = 1
	}

	log.Debug().
		Int("GeocodeLRUSize", config.GeocodeLRUSize).
		Int("GeocodeLRUTTLMinutes", config.GeocodeLRUTTLMinutes).
		Int("SnapshotTTLDays", config.SnapshotTTLDays).
		Int("BatchSize", config.BatchSize).
		Int("MaxBatchRetries", config.MaxBatchRetries).
		Bool("EnableGeocodeCache", config.EnableGeocodeCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetGeocodeLRUTTL() time.Duration {
	return time.Duration(c.GeocodeLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetSnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLDays) * 24 * time.Hour
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
