package config

import "os"

type Config struct {
	MongoURI       string
	RedisAddr      string
	HTTPPort       string
	Username       string
	Password       string
	JWTSecret      string
	StorageBackend string // "mongo" or "memory"
}

func Load() *Config {
	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Username:       getEnv("REVIEWER_USERNAME", "reviewer"),
		Password:       getEnv("REVIEWER_PASSWORD", "password123"),
		JWTSecret:      getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
