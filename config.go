package main

import (
	"os"

	"github.com/joho/godotenv"
)

// config holds the server settings read from the environment.
type config struct {
	DBURL   string
	Addr    string
	GinMode string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads .env when present and then the process environment.
// A missing .env is fine: deployed instances set the variables directly.
func loadConfig() config {
	_ = godotenv.Load()
	return config{
		DBURL:   os.Getenv("DB_URL"),
		Addr:    getEnvOrDefault("HOST", "localhost") + ":" + getEnvOrDefault("PORT", "3000"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}
