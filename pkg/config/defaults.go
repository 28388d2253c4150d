package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tradedesk"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0
	DefaultCacheTTL    = 30 * time.Second
	DefaultCachePrefix = "meetings"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultTimeZone = "UTC"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 10 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMeetingEventsTopic   = "meeting-events"
	DefaultMeetingEventsGroupID = "meetings-cache"
	DefaultSweepInterval        = 5 * time.Minute
)
