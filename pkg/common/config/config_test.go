package config

import (
	"strings"
	"testing"
)

func TestValidateEnumeratesMissingFields(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail on an empty config")
	}

	for _, key := range []string{
		"YOUTUBE_API_KEY",
		"YOUTUBE_BASE_URL",
		"KAFKA_BROKERS",
		"POSTGRES_HOST",
		"REDIS_HOST",
	} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in validation error, got: %v", key, err)
		}
	}
}

func TestValidatePassesWithAPIKey(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "test-key")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults plus api key to validate, got: %v", err)
	}
}

func TestLoadSplitsKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")

	cfg := Load()
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-b:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}
