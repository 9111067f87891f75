package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

// Config is the environment-supplied service configuration. PGConn and
// MongoURI are required; missing values are a fatal startup error, never a
// runtime one.
type Config struct {
	Port           string
	PGConn         string
	MongoURI       string
	AllowedOrigins []string
	Schema         domain.Generation
	Projection     domain.Shape
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	pgConn := os.Getenv("PG_CONN")
	if pgConn == "" {
		return nil, fmt.Errorf("PG_CONN is not set")
	}
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		PGConn:         pgConn,
		MongoURI:       mongoURI,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		Schema:         domain.Generation(getEnv("SCHEMA_GENERATION", string(domain.GenerationExtended))),
		Projection:     domain.Shape(getEnv("PROJECTION", string(domain.ShapeRegistro))),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
