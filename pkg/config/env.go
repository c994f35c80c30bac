package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultAvailStart    = "DEFAULT_AVAIL_START"
	EnvDefaultAvailEnd      = "DEFAULT_AVAIL_END"
	EnvDefaultMaxLengthMins = "DEFAULT_MAX_LENGTH_MINS"
	EnvDefaultBookAheadDays = "DEFAULT_BOOK_AHEAD_DAYS"
	EnvDefaultMaxConcurrent = "DEFAULT_MAX_CONCURRENT"
	EnvDefaultBufferMins    = "DEFAULT_BUFFER_MINS"
	EnvDefaultTimeZone      = "DEFAULT_TIME_ZONE"

	EnvNotifyTopic    = "NOTIFY_TOPIC"
	EnvNotifyDLQTopic = "NOTIFY_DLQ_TOPIC"
	EnvNotifyGroupID  = "NOTIFY_GROUP_ID"
)
