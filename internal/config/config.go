package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	AppPort     string
	LogLevel    string

	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret     string
	JWTExpiresMin int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PaymentTimeout   time.Duration
	CORSAllowOrigins string
}

// Load reads configuration from the environment. A .env file, if any, must
// already be loaded into the process environment (godotenv in main).
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("JWT_EXPIRES_MIN", 10080)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYMENT_TIMEOUT", "5s")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000")

	cfg := &Config{
		Environment:       strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		AppPort:           v.GetString("APP_PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DBDSN:             v.GetString("DB_DSN"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiresMin:     v.GetInt("JWT_EXPIRES_MIN"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		PaymentTimeout:    v.GetDuration("PAYMENT_TIMEOUT"),
		CORSAllowOrigins:  v.GetString("CORS_ALLOW_ORIGINS"),
	}

	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = 5 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

func validate(cfg *Config) error {
	if cfg.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTExpiresMin <= 0 {
		return fmt.Errorf("JWT_EXPIRES_MIN must be positive")
	}
	return nil
}
