package kafka_config

import "time"

// Environment keys, each next to the value used when it is unset.
const (
	EnvKafkaBrokers     = "KAFKA_BROKERS"
	DefaultKafkaBrokers = "localhost:9092"

	EnvKafkaDLQEnabled = "KAFKA_DLQ_ENABLED"
	DefaultDLQEnabled  = true
	DLQTopicSuffix     = ".dlq"

	EnvKafkaProducerMaxAttempts = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	DefaultProducerMaxAttempts  = 3

	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	DefaultProducerBatchTimeout  = 10 * time.Millisecond

	EnvKafkaProducerRequireAcks = "KAFKA_PRODUCER_REQUIRE_ACKS"
	DefaultProducerRequireAcks  = -1

	EnvKafkaProducerCompression = "KAFKA_PRODUCER_COMPRESSION"
	DefaultProducerCompression  = "snappy"

	EnvKafkaProducerAsync = "KAFKA_PRODUCER_ASYNC"
	DefaultProducerAsync  = false

	EnvKafkaConsumerStartOffset = "KAFKA_CONSUMER_START_OFFSET"
	DefaultConsumerStartOffset  = -1

	EnvKafkaConsumerMinBytes = "KAFKA_CONSUMER_MIN_BYTES"
	DefaultConsumerMinBytes  = 1

	// meeting events are a few hundred bytes
	EnvKafkaConsumerMaxBytes = "KAFKA_CONSUMER_MAX_BYTES"
	DefaultConsumerMaxBytes  = 1 << 20

	EnvKafkaConsumerMaxWait = "KAFKA_CONSUMER_MAX_WAIT"
	DefaultConsumerMaxWait  = 500 * time.Millisecond

	EnvKafkaConsumerCommitInterval = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	DefaultConsumerCommitInterval  = time.Second

	EnvKafkaConsumerHeartbeatInterval = "KAFKA_CONSUMER_HEARTBEAT_INTERVAL"
	DefaultConsumerHeartbeatInterval  = 3 * time.Second

	EnvKafkaConsumerSessionTimeout = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	DefaultConsumerSessionTimeout  = 10 * time.Second

	EnvKafkaConsumerRebalanceTimeout = "KAFKA_CONSUMER_REBALANCE_TIMEOUT"
	DefaultConsumerRebalanceTimeout  = time.Minute

	EnvKafkaConsumerMaxRetries = "KAFKA_CONSUMER_MAX_RETRIES"
	DefaultConsumerMaxRetries  = 3

	EnvKafkaEnableMiddleware = "KAFKA_ENABLE_MIDDLEWARE"
	DefaultEnableMiddleware  = true
)
