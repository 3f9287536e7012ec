package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=contractpay")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 10080, cfg.JWTExpiresMin)
	assert.Equal(t, 5*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PAYMENT_TIMEOUT", "750ms")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 750*time.Millisecond, cfg.PaymentTimeout)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	require.EqualError(t, err, "DB_DSN is required")

	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.EqualError(t, err, "JWT_SECRET is required")
}
