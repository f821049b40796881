package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis (raw payload store)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers    []string
	KafkaGroupID    string
	FetchJobTopic   string
	ProcessJobTopic string

	// YouTube Data API
	YouTubeAPIKey     string
	YouTubeBaseURL    string
	YouTubeMaxRetries int
	YouTubeBackoff    time.Duration
	YouTubeRateLimit  float64
	YouTubeTimeout    time.Duration

	// Analysis (downstream stage, stubbed)
	OpenAIAPIKey string
	OpenAIModel  string

	// Harvest worker
	WatchlistPath    string
	WatchlistRefresh time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tubeharvest"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tubeharvest123"),
		PostgresDB:       getEnv("POSTGRES_DB", "tubeharvest"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:    getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "tubeharvest-pipeline"),
		FetchJobTopic:   getEnv("FETCH_JOB_TOPIC", "harvest.fetch-jobs"),
		ProcessJobTopic: getEnv("PROCESS_JOB_TOPIC", "harvest.process-jobs"),

		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		YouTubeBaseURL:    getEnv("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		YouTubeMaxRetries: getIntEnv("YOUTUBE_MAX_RETRIES", 3),
		YouTubeBackoff:    getDuration("YOUTUBE_BACKOFF", 1*time.Second),
		YouTubeRateLimit:  getFloatEnv("YOUTUBE_RATE_LIMIT_RPS", 5),
		YouTubeTimeout:    getDuration("YOUTUBE_TIMEOUT", 30*time.Second),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		WatchlistPath:    getEnv("WATCHLIST_PATH", ""),
		WatchlistRefresh: getDuration("WATCHLIST_REFRESH", 6*time.Hour),
	}
}

// Validate reports every missing required field at once so a
// misconfigured deploy fails on first boot instead of mid-run.
func (c *Config) Validate() error {
	var missing []string

	if c.YouTubeAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if c.YouTubeBaseURL == "" {
		missing = append(missing, "YOUTUBE_BASE_URL")
	}
	if len(c.KafkaBrokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if c.PostgresHost == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.RedisHost == "" {
		missing = append(missing, "REDIS_HOST")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
