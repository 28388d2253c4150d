package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"tradedesk/pkg/logger"
)

// Config is the broker-level setup shared by the meeting event producer
// and the notification consumer. Topics and group ids come from the
// service config.
type Config struct {
	Brokers    []string
	DLQEnabled bool

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int // -1 all replicas, 0 none, 1 leader
	ProducerCompression  string
	ProducerAsync        bool

	ConsumerStartOffset       int64 // -1 newest, -2 oldest
	ConsumerMinBytes          int
	ConsumerMaxBytes          int
	ConsumerMaxWait           time.Duration
	ConsumerCommitInterval    time.Duration
	ConsumerHeartbeatInterval time.Duration
	ConsumerSessionTimeout    time.Duration
	ConsumerRebalanceTimeout  time.Duration
	ConsumerMaxRetries        int

	// EnableMiddleware wraps the consumer handler with logging and recovery.
	EnableMiddleware bool
}

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

func Load() (*Config, error) {
	var brokers []string
	for _, b := range strings.Split(envOr(EnvKafkaBrokers, DefaultKafkaBrokers, parseString), ",") {
		brokers = append(brokers, strings.TrimSpace(b))
	}

	cfg := &Config{
		Brokers:    brokers,
		DLQEnabled: envOr(EnvKafkaDLQEnabled, DefaultDLQEnabled, strconv.ParseBool),

		ProducerMaxAttempts:  envOr(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts, strconv.Atoi),
		ProducerBatchTimeout: envOr(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout, time.ParseDuration),
		ProducerRequireAcks:  envOr(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks, strconv.Atoi),
		ProducerCompression:  envOr(EnvKafkaProducerCompression, DefaultProducerCompression, parseString),
		ProducerAsync:        envOr(EnvKafkaProducerAsync, DefaultProducerAsync, strconv.ParseBool),

		ConsumerStartOffset:       envOr(EnvKafkaConsumerStartOffset, int64(DefaultConsumerStartOffset), parseInt64),
		ConsumerMinBytes:          envOr(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes, strconv.Atoi),
		ConsumerMaxBytes:          envOr(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes, strconv.Atoi),
		ConsumerMaxWait:           envOr(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait, time.ParseDuration),
		ConsumerCommitInterval:    envOr(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval, time.ParseDuration),
		ConsumerHeartbeatInterval: envOr(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval, time.ParseDuration),
		ConsumerSessionTimeout:    envOr(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout, time.ParseDuration),
		ConsumerRebalanceTimeout:  envOr(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout, time.ParseDuration),
		ConsumerMaxRetries:        envOr(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries, strconv.Atoi),

		EnableMiddleware: envOr(EnvKafkaEnableMiddleware, DefaultEnableMiddleware, strconv.ParseBool),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	return cfg, nil
}

// Validate reports every bad setting at once.
func (cfg *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(cfg.Brokers) == 0 {
		fail("%s: at least one broker is required", EnvKafkaBrokers)
	}
	for i, b := range cfg.Brokers {
		if b == "" {
			fail("%s: broker %d is empty", EnvKafkaBrokers, i)
		}
	}

	if !slices.Contains(compressions, cfg.ProducerCompression) {
		fail("%s: %q is not one of %v", EnvKafkaProducerCompression, cfg.ProducerCompression, compressions)
	}
	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		fail("%s: %d is not -1, 0 or 1", EnvKafkaProducerRequireAcks, cfg.ProducerRequireAcks)
	}
	if cfg.ConsumerStartOffset < -2 {
		fail("%s: %d is not -1, -2 or an absolute offset", EnvKafkaConsumerStartOffset, cfg.ConsumerStartOffset)
	}
	if cfg.ConsumerMaxRetries < 0 {
		fail("%s: %d is negative", EnvKafkaConsumerMaxRetries, cfg.ConsumerMaxRetries)
	}

	for env, n := range map[string]int{
		EnvKafkaProducerMaxAttempts: cfg.ProducerMaxAttempts,
		EnvKafkaConsumerMinBytes:    cfg.ConsumerMinBytes,
		EnvKafkaConsumerMaxBytes:    cfg.ConsumerMaxBytes,
	} {
		if n <= 0 {
			fail("%s: %d is not positive", env, n)
		}
	}
	for env, d := range map[string]time.Duration{
		EnvKafkaProducerBatchTimeout:      cfg.ProducerBatchTimeout,
		EnvKafkaConsumerMaxWait:           cfg.ConsumerMaxWait,
		EnvKafkaConsumerCommitInterval:    cfg.ConsumerCommitInterval,
		EnvKafkaConsumerHeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		EnvKafkaConsumerSessionTimeout:    cfg.ConsumerSessionTimeout,
		EnvKafkaConsumerRebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
	} {
		if d <= 0 {
			fail("%s: %s is not positive", env, d)
		}
	}

	return errors.Join(errs...)
}

// DLQTopic returns the dead-letter topic for topic, or "" when dead
// lettering is off.
func (cfg *Config) DLQTopic(topic string) string {
	if !cfg.DLQEnabled {
		return ""
	}
	return topic + DLQTopicSuffix
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka config",
		"brokers", cfg.Brokers,
		"dlq_enabled", cfg.DLQEnabled,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_wait", cfg.ConsumerMaxWait,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

// envOr parses the variable, falling back when it is unset or unparsable.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
