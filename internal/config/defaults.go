package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "seolens/1.0 (+https://github.com/seolens/seolens)"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultFlushInterval     = 30 * time.Second
	DefaultQueueCapacity     = 50
	DefaultRateLimitRPS      = 5.0
	DefaultRateLimitBurst    = 10
	DefaultCacheTTL          = 5 * time.Minute
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
	DefaultRenderHeadless    = true
	DefaultConcurrency       = 3
	DefaultMaxConcurrency    = 16
)

// DefaultHistoryPath is the history database location relative to $HOME
const DefaultHistoryPath = ".seolens/history.db"
