package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Chdir(t.TempDir())
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "5000", cfg.ServerPort)
	require.Equal(t, "development", cfg.Env)
	require.False(t, cfg.IsProduction())
	require.Equal(t, "ecommerce", cfg.MongoDatabase)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "8081")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://shop.example, ,https://admin.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.IsProduction())
	require.Equal(t, "8081", cfg.ServerPort)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSOrigins)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{
			name:    "missing mongo uri",
			env:     map[string]string{"MONGO_URI": ""},
			message: "MONGO_URI is required",
		},
		{
			name:    "missing access secret",
			env:     map[string]string{"ACCESS_TOKEN_SECRET": ""},
			message: "ACCESS_TOKEN_SECRET is required",
		},
		{
			name:    "missing refresh secret",
			env:     map[string]string{"REFRESH_TOKEN_SECRET": ""},
			message: "REFRESH_TOKEN_SECRET is required",
		},
		{
			name:    "shared secrets",
			env:     map[string]string{"REFRESH_TOKEN_SECRET": "access-secret"},
			message: "must differ",
		},
		{
			name:    "access outlives refresh",
			env:     map[string]string{"ACCESS_TOKEN_TTL": "200h"},
			message: "ACCESS_TOKEN_TTL must be shorter",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}
}
