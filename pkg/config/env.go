package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvCacheEnabled  = "CACHE_ENABLED"
	EnvCacheTTL      = "CACHE_TTL"
	EnvCachePrefix   = "CACHE_PREFIX"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvTimeZone = "TIME_ZONE"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMeetingEventsTopic   = "MEETING_EVENTS_TOPIC"
	EnvMeetingEventsGroupID = "MEETING_EVENTS_GROUP_ID"
	EnvSweepInterval        = "SWEEP_INTERVAL"
)
