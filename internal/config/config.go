package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	SQLite  SQLiteConfig
	Factory FactoryDefaults
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  TopicConfig
}

type TopicConfig struct {
	CreationRequests string
	CreationAcks     string
}

type RedisConfig struct {
	Addr string
}

type SQLiteConfig struct {
	DSN string
}

// FactoryDefaults seeds the factory config row on first boot. After that
// the stored row is authoritative and only admin operations change it.
type FactoryDefaults struct {
	Admin            string
	TemplateID       string
	PassPrice        int64
	PassDuration     int64
	GracePeriod      int64
	SettlementDenom  string
	PaymentAddress   string
	HousePercentage  int
	ArtistPercentage int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID: getEnv("KAFKA_GROUP_ID", "pass-factory-group"),
			Topics: TopicConfig{
				CreationRequests: getEnv("KAFKA_TOPIC_CREATION_REQUESTS", "collection-creation-requests"),
				CreationAcks:     getEnv("KAFKA_TOPIC_CREATION_ACKS", "collection-creation-acks"),
			},
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		SQLite: SQLiteConfig{
			DSN: getEnv("SQLITE_DSN", "file:ms-passes.db?cache=shared"),
		},
		Factory: FactoryDefaults{
			Admin:            getEnv("FACTORY_ADMIN", "looopadmin"),
			TemplateID:       getEnv("COLLECTION_TEMPLATE_ID", "collection-service:v1"),
			PassPrice:        getEnvInt64("PASS_PRICE", 10),
			PassDuration:     getEnvInt64("PASS_DURATION_SECONDS", 30*24*3600),
			GracePeriod:      getEnvInt64("GRACE_PERIOD_SECONDS", 3*24*3600),
			SettlementDenom:  getEnv("SETTLEMENT_DENOM", "uxion"),
			PaymentAddress:   getEnv("PAYMENT_ADDRESS", "looophouse"),
			HousePercentage:  getEnvInt("HOUSE_PERCENTAGE", 30),
			ArtistPercentage: getEnvInt("ARTIST_PERCENTAGE", 70),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
