package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSQLiteEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("AUTH_PROVIDER", "jwt")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setSQLiteEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(300), cfg.Deal.FeeRateBasisPoints)
	assert.Equal(t, 72*time.Hour, cfg.Deal.ExpiryWindow)
	assert.Equal(t, ExpiryPolicyFreezeOnConfirm, cfg.Deal.ExpiryPolicy)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setSQLiteEnv(t)
	t.Setenv("SUPPLIER_FEE_RATE", "0.025")
	t.Setenv("ROOM_EXPIRY_WINDOW", "48h")
	t.Setenv("ROOM_EXPIRY_POLICY", ExpiryPolicyExpireUnsettled)
	t.Setenv("ADMIN_USER_IDS", "ops-1, ops-2 ,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(250), cfg.Deal.FeeRateBasisPoints)
	assert.Equal(t, 48*time.Hour, cfg.Deal.ExpiryWindow)
	assert.Equal(t, ExpiryPolicyExpireUnsettled, cfg.Deal.ExpiryPolicy)
	assert.True(t, cfg.IsAdmin("ops-2"))
	assert.False(t, cfg.IsAdmin("buyer-1"))
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"fee above one", "SUPPLIER_FEE_RATE", "1.5"},
		{"fee not a number", "SUPPLIER_FEE_RATE", "three percent"},
		{"unknown policy", "ROOM_EXPIRY_POLICY", "never"},
		{"unknown driver", "STORAGE_DRIVER", "cassandra"},
		{"jwt without secret", "JWT_SECRET", ""},
		{"sql without dsn", "DATABASE_DSN", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSQLiteEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
