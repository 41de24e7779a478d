package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("STORAGE_BREAKER_FAILURE_RATIO", "0.5")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 15*time.Minute, cfg.MinIO.PresignExpiry)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "backoffice", cfg.Auth.Issuer)
	assert.Equal(t, 0.5, cfg.Breaker.FailureThreshold)
	assert.Equal(t, uint32(5), cfg.Breaker.MinRequests)
}

func TestEnvGetters(t *testing.T) {
	const key = "BACKOFFICE_TEST_VALUE"

	cases := []struct {
		name  string
		value string
		check func(t *testing.T)
	}{
		{"string set", "value", func(t *testing.T) { assert.Equal(t, "value", getEnv(key, "def")) }},
		{"string unset", "", func(t *testing.T) { assert.Equal(t, "def", getEnv(key, "def")) }},
		{"bool true", "true", func(t *testing.T) { assert.True(t, getEnvBool(key, false)) }},
		{"bool false", "0", func(t *testing.T) { assert.False(t, getEnvBool(key, true)) }},
		{"bool garbage", "maybe", func(t *testing.T) { assert.True(t, getEnvBool(key, true)) }},
		{"int", "123", func(t *testing.T) { assert.Equal(t, 123, getEnvInt(key, 0)) }},
		{"int garbage", "12x", func(t *testing.T) { assert.Equal(t, 10, getEnvInt(key, 10)) }},
		{"float", "0.25", func(t *testing.T) { assert.Equal(t, 0.25, getEnvFloat(key, 1)) }},
		{"float garbage", "half", func(t *testing.T) { assert.Equal(t, 1.0, getEnvFloat(key, 1)) }},
		{"duration", "90s", func(t *testing.T) { assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Second)) }},
		{"duration garbage", "soon", func(t *testing.T) { assert.Equal(t, time.Second, getEnvDuration(key, time.Second)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(key, tc.value)
			tc.check(t)
		})
	}
}

func TestLogConfigLocation(t *testing.T) {
	assert.Equal(t, time.UTC, LogConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", LogConfig{Timezone: "UTC"}.Location().String())
}
