package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"bookable/pkg/client"
	"bookable/pkg/logger"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Rule defaults for newly created things.
	DefaultAvailStart    string
	DefaultAvailEnd      string
	DefaultMaxLengthMins int
	DefaultBookAheadDays int
	DefaultMaxConcurrent int
	DefaultBufferMins    int
	DefaultTimeZone      string

	NotifyTopic    string
	NotifyDLQTopic string
	NotifyGroupID  string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultAvailStart:    getEnvStr(EnvDefaultAvailStart, DefaultDefaultAvailStart),
		DefaultAvailEnd:      getEnvStr(EnvDefaultAvailEnd, DefaultDefaultAvailEnd),
		DefaultMaxLengthMins: getEnvNum(EnvDefaultMaxLengthMins, DefaultDefaultMaxLengthMins),
		DefaultBookAheadDays: getEnvNum(EnvDefaultBookAheadDays, DefaultDefaultBookAheadDays),
		DefaultMaxConcurrent: getEnvNum(EnvDefaultMaxConcurrent, DefaultDefaultMaxConcurrent),
		DefaultBufferMins:    getEnvNum(EnvDefaultBufferMins, DefaultDefaultBufferMins),
		DefaultTimeZone:      getEnvStr(EnvDefaultTimeZone, DefaultDefaultTimeZone),

		NotifyTopic:    getEnvStr(EnvNotifyTopic, DefaultNotifyTopic),
		NotifyDLQTopic: getEnvStr(EnvNotifyDLQTopic, DefaultNotifyDLQTopic),
		NotifyGroupID:  getEnvStr(EnvNotifyGroupID, DefaultNotifyGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

var (
	timeRegex     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if !timeRegex.MatchString(cfg.DefaultAvailStart) {
		errors = append(errors, fmt.Sprintf("DefaultAvailStart must be in HH:MM format, got: %s", cfg.DefaultAvailStart))
	}
	if !timeRegex.MatchString(cfg.DefaultAvailEnd) {
		errors = append(errors, fmt.Sprintf("DefaultAvailEnd must be in HH:MM format, got: %s", cfg.DefaultAvailEnd))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be a valid IANA zone, got: %s", cfg.DefaultTimeZone))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.DefaultMaxLengthMins < 30 {
		errors = append(errors, fmt.Sprintf("DefaultMaxLengthMins must be at least one slot (30), got: %d", cfg.DefaultMaxLengthMins))
	}
	if cfg.DefaultBookAheadDays <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultBookAheadDays must be positive, got: %d", cfg.DefaultBookAheadDays))
	}
	if cfg.DefaultMaxConcurrent <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultMaxConcurrent must be positive, got: %d", cfg.DefaultMaxConcurrent))
	}
	if cfg.DefaultBufferMins < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferMins cannot be negative, got: %d", cfg.DefaultBufferMins))
	}

	if cfg.NotifyTopic == "" {
		errors = append(errors, "NotifyTopic cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_avail_start", cfg.DefaultAvailStart,
		"default_avail_end", cfg.DefaultAvailEnd,
		"default_max_length_mins", cfg.DefaultMaxLengthMins,
		"default_book_ahead_days", cfg.DefaultBookAheadDays,
		"default_max_concurrent", cfg.DefaultMaxConcurrent,
		"default_buffer_mins", cfg.DefaultBufferMins,
		"default_time_zone", cfg.DefaultTimeZone,
		"notify_topic", cfg.NotifyTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
