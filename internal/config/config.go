package config

import "os"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	ArbiterKey  string
}

// Load reads configuration from environment variables. DatabaseURL and
// RedisURL may be empty, in which case the corresponding integrations are
// disabled; ArbiterKey has no default and is validated at startup.
func Load() *Config {
	return &Config{
		Port:        envOrDefault("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ArbiterKey:  os.Getenv("ARBITER_PRIVATE_KEY"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
