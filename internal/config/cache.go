package config

import "time"

// CacheConfig defines settings for the cache-aside layer. Prefix namespaces
// every key so the portal can share a Redis instance with other services.
// Each cached view carries its own TTL because the aggregates change at
// different rates.
type CacheConfig struct {
	Enabled       bool
	Prefix        string
	PropertiesTTL time.Duration
	OverviewTTL   time.Duration
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:       envStr("CACHE_ENABLED", "true") == "true",
		Prefix:        envStr("CACHE_PREFIX", "portal"),
		PropertiesTTL: envDur("CACHE_PROPERTIES_TTL", 60*time.Second),
		OverviewTTL:   envDur("CACHE_OVERVIEW_TTL", 30*time.Second),
	}
}
