package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("LOW_STOCK_THRESHOLD", "-4")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	cfg := Load()

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestCheckSecret(t *testing.T) {
	cases := []struct {
		env    string
		secret string
		ok     bool
	}{
		{"production", "", false},
		{"production", DefaultJWTSecret, false},
		{"prod", DefaultJWTSecret, false},
		{"production", "4f1c9b7e2d8a6f3e0b5c1d9a7e4f2b8c", true},
		{"local", DefaultJWTSecret, true},
		{"local", "", true},
	}
	for _, tc := range cases {
		err := (&Config{AppEnv: tc.env, JWTSecret: tc.secret}).CheckSecret()
		if tc.ok {
			assert.NoError(t, err, "%s/%q", tc.env, tc.secret)
		} else {
			assert.ErrorIs(t, err, ErrInsecureSecret, "%s/%q", tc.env, tc.secret)
		}
	}
}

func TestProductionSecretFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	require.ErrorIs(t, Load().CheckSecret(), ErrInsecureSecret)

	t.Setenv("JWT_SECRET", "a-real-deployment-secret")
	assert.NoError(t, Load().CheckSecret())
}
