// Package config handles configuration loading for the gifting service.
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Secrets are provisioned here at
// process start and injected into the services that need them.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string

	JWTSecret  string
	CronSecret string
}

// Load reads configuration from config.yaml and the environment, with
// development defaults for everything except the secrets.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mlbb_gifters")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")

	if err := v.ReadInConfig(); err != nil {
		log.Println("no config file found, using defaults and environment")
	}

	cfg := &Config{
		Port:          v.GetString("PORT"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		CronSecret:    v.GetString("CRON_SECRET"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.CronSecret == "" {
		log.Fatal("CRON_SECRET is required")
	}
	return cfg
}
