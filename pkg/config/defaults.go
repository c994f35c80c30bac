package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookable"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 20 * time.Second

	DefaultPaginationLimit = 100

	// Rule defaults applied to newly created things when the owner leaves a
	// field unset.
	DefaultDefaultAvailStart    = "09:00"
	DefaultDefaultAvailEnd      = "17:00"
	DefaultDefaultMaxLengthMins = 120
	DefaultDefaultBookAheadDays = 30
	DefaultDefaultMaxConcurrent = 3
	DefaultDefaultBufferMins    = 0
	DefaultDefaultTimeZone      = "UTC"

	DefaultNotifyTopic    = "reservation-events"
	DefaultNotifyDLQTopic = "reservation-events-dlq"
	DefaultNotifyGroupID  = "bookable-notifier"
)
