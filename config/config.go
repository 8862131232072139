package config

import (
	"fmt"
	"os"
)

// Config holds the environment-driven settings the service needs at boot.
type Config struct {
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	ServerPort  string
}

// Load reads the configuration from environment variables. MONGO_URI and
// JWT_SECRET are required; the rest fall back to development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDBName: os.Getenv("MONGO_DB_NAME"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		ServerPort:  os.Getenv("SERVER_PORT"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set in the environment variables")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set in the environment variables")
	}
	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "pm_db"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	return cfg, nil
}
