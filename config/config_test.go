package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Environment: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg = &Config{Environment: "production"}
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())

	cfg = &Config{Environment: "staging"}
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SECRET_KEY", "secret")
}

func TestLoadWithOptions(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")
	t.Setenv("MLS_API_URL", "https://mls.example.com/listings")
	t.Setenv("MLS_API_KEY", "mls-key")
	t.Setenv("MLS_CACHE_TTL", "90s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "3s")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "http://localhost:9000", cfg.Server.PublicURL)
	assert.Equal(t, "https://project.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "anon-key", cfg.Supabase.AnonKey)
	assert.Equal(t, "jwt-secret", cfg.Supabase.JWTSecret)
	assert.Equal(t, "https://mls.example.com/listings", cfg.MLS.APIURL)
	assert.Equal(t, "mls-key", cfg.MLS.APIKey)
	assert.Equal(t, 90*time.Second, cfg.MLS.CacheTTL)
	assert.Equal(t, 30, cfg.MLS.LookupsPerMinute)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Security.SecretKey)
	assert.False(t, cfg.Security.CookieSecure)
	assert.Equal(t, 3*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, VERSION, cfg.Version)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Security.CookieSecure)
	assert.Equal(t, 10*time.Minute, cfg.MLS.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}

func TestLoadWithOptions_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		message string
	}{
		{"missing supabase url", "SUPABASE_URL", "SUPABASE_URL is required"},
		{"missing anon key", "SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY is required"},
		{"missing secret key", "SECRET_KEY", "SECRET_KEY is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := LoadWithOptions(LoadOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadWithOptions_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "SUPABASE_URL=https://file.supabase.co\nSUPABASE_ANON_KEY=file-anon\nSECRET_KEY=file-secret\nSERVER_PORT=7000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadWithOptions(LoadOptions{EnvFile: ".env.test"})
	require.NoError(t, err)
	assert.Equal(t, "https://file.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadWithOptions_MissingEnvFileIsFine(t *testing.T) {
	setRequired(t)
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadWithOptions(LoadOptions{EnvFile: ".env"})
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadWithOptions_DatabaseOnly(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DB_HOST", "db.project.supabase.co")

	_, err := LoadWithOptions(LoadOptions{DatabaseOnly: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD is required")

	t.Setenv("DB_PASSWORD", "db-password")
	cfg, err := LoadWithOptions(LoadOptions{DatabaseOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "db.project.supabase.co", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
}
