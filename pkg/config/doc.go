// Package config loads application configuration from the environment into
// typed structs.
//
// It combines github.com/joho/godotenv (optional .env bootstrap) with
// github.com/caarlos0/env/v11 (struct tag parsing) and caches each parsed
// struct type for the lifetime of the process, so every caller of
// Load[RedisConfig] observes identical values no matter when it runs.
//
// Typical use:
//
//	type RegistryConfig struct {
//	    DatabaseURL string `env:"REGISTRY_DATABASE_URL,required"`
//	    MaxConns    int    `env:"REGISTRY_MAX_CONNS" envDefault:"10"`
//	}
//
//	var cfg RegistryConfig
//	config.MustLoad(&cfg)
//
// Errors are sentinel-wrapped and comparable with errors.Is.
package config
