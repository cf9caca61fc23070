package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	RedisURL string

	KafkaBroker            string
	KafkaNotificationTopic string

	JWTSecret        string
	JWTRefreshSecret string

	// ChatWindowHours is how long a non-premium direct room stays open.
	ChatWindowHours int
}

func Load() *Config {
	// Best effort; real env vars win over the file anyway.
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "maum"),
		DBPassword: getEnv("DB_PASSWORD", "maum_dev_password"),
		DBName:     getEnv("DB_NAME", "maum"),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		KafkaBroker:            getEnv("KAFKA_BROKER", ""),
		KafkaNotificationTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "notifications"),

		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret-change-me"),

		ChatWindowHours: getEnvInt("CHAT_WINDOW_HOURS", 72),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
