package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	MongoURI        string
	DBName          string
	MongoTimeout    time.Duration
	RateLimitPerMin int
}

// Load returns application config populated from environment variables.
// MONGO_URL and DB_NAME carry no defaults; Validate reports them missing.
func Load() App {
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        os.Getenv("MONGO_URL"),
		DBName:          os.Getenv("DB_NAME"),
		MongoTimeout:    durationEnv("MONGO_TIMEOUT", 5*time.Second),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
	}
}

// Validate checks the settings that have no usable default.
func (a App) Validate() error {
	if a.MongoURI == "" {
		return errors.New("MONGO_URL is required")
	}
	if a.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
