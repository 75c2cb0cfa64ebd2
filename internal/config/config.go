package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	MongoURI     string
	DatabaseName string
	HTTPPort     string
	AppEnv       string
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from the environment, loading a .env file first
// if one exists. MONGO_URI and GEMINI_API_KEY are both optional: without a
// Mongo URI the service runs on the in-memory store, and without an API key
// the chat endpoint serves templated fallback replies.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return Config{
		MongoURI:     getEnv("MONGO_URI", ""),
		DatabaseName: getEnv("DATABASE_NAME", "edusense"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "dev"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
