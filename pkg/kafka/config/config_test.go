package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("Brokers = %v, want [%s]", cfg.Brokers, DefaultKafkaBrokers)
	}
	if cfg.ProducerCompression != "snappy" || cfg.ProducerRequireAcks != -1 {
		t.Errorf("producer = %s/%d, want snappy/-1", cfg.ProducerCompression, cfg.ProducerRequireAcks)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaConsumerMaxWait, "2s")
	t.Setenv(EnvKafkaProducerMaxAttempts, "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v, want trimmed k1, k2", cfg.Brokers)
	}
	if cfg.ConsumerMaxWait != 2*time.Second {
		t.Errorf("ConsumerMaxWait = %v, want 2s", cfg.ConsumerMaxWait)
	}
	if cfg.ProducerMaxAttempts != DefaultProducerMaxAttempts {
		t.Errorf("ProducerMaxAttempts = %d, want default on bad input", cfg.ProducerMaxAttempts)
	}
}

func TestLoad_RejectsBadSettings(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092,")
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaConsumerSessionTimeout, "0s")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	for _, env := range []string{EnvKafkaBrokers, EnvKafkaProducerCompression, EnvKafkaConsumerSessionTimeout} {
		if !strings.Contains(err.Error(), env) {
			t.Errorf("error %q does not name %s", err, env)
		}
	}
}

func TestConfig_DLQTopic(t *testing.T) {
	cfg := &Config{DLQEnabled: true}
	if got := cfg.DLQTopic("meeting.booked"); got != "meeting.booked.dlq" {
		t.Errorf("DLQTopic() = %q, want meeting.booked.dlq", got)
	}

	cfg.DLQEnabled = false
	if got := cfg.DLQTopic("meeting.booked"); got != "" {
		t.Errorf("DLQTopic() with DLQ off = %q, want empty", got)
	}
}
