package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/config"
	"github.com/mysupertc/MySuperTC-sub001/internal/repository/testutil"
	"github.com/mysupertc/MySuperTC-sub001/pkg/cache"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/mailer"
	"github.com/mysupertc/MySuperTC-sub001/pkg/supabase"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:      "127.0.0.1",
			Port:      0,
			PublicURL: "http://localhost:8080",
		},
		Supabase: config.SupabaseConfig{
			URL:       backendURL,
			AnonKey:   "anon-key",
			JWTSecret: testJWTSecret,
		},
		MLS: config.MLSConfig{
			CacheTTL:         time.Minute,
			LookupsPerMinute: 5,
		},
		Security: config.SecurityConfig{
			SecretKey: "test-secret-key",
		},
		Environment:       "test",
		LogLevel:          "debug",
		HTTPClientTimeout: 5 * time.Second,
	}
}

func accessToken(t *testing.T, subject string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, supabase.Claims{
		Email: "agent@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...AppOption) *App {
	opts = append([]AppOption{
		WithLogger(logger.NewTestLogger(t)),
		WithRegistry(prometheus.NewRegistry()),
	}, opts...)
	a := NewApp(cfg, opts...).(*App)
	require.NoError(t, a.Initialize())
	t.Cleanup(func() { _ = a.cleanupResources() })
	return a
}

func TestNewApp(t *testing.T) {
	cfg := testConfig("http://localhost:54321")
	a := NewApp(cfg).(*App)

	assert.Equal(t, cfg, a.GetConfig())
	assert.NotNil(t, a.GetMux())
	assert.NotNil(t, a.GetLogger())
	assert.Equal(t, 5*time.Second, a.httpClient.Timeout)
	assert.Equal(t, 30*time.Second, a.shutdownTimeout)
	assert.False(t, a.IsServerCreated())
}

func TestInitialize_Defaults(t *testing.T) {
	backend := testutil.NewDataAPI(t)
	a := newTestApp(t, testConfig(backend.URL()))

	assert.IsType(t, &cache.InMemoryCache{}, a.GetCache())
	assert.IsType(t, &mailer.ConsoleMailer{}, a.GetMailer())
	assert.NotNil(t, a.GetDataClient())
	assert.Empty(t, a.healthChecks)
}

func TestInitialize_RoutesThroughDataClient(t *testing.T) {
	backend := testutil.NewDataAPI(t)
	a := newTestApp(t, testConfig(backend.URL()))
	token := accessToken(t, "5f1c7a2e-0000-4000-8000-000000000001")

	req := httptest.NewRequest(http.MethodGet, "/api/clients.list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, backend.Count())
	assert.Equal(t, "/rest/v1/clients", backend.Last().Path)
	assert.Equal(t, "Bearer "+token, backend.Last().Header.Get("Authorization"))
}

func TestInitialize_UnauthenticatedSubmit(t *testing.T) {
	backend := testutil.NewDataAPI(t)
	a := newTestApp(t, testConfig(backend.URL()))

	rec := httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, 0, backend.Count())
}

func TestInitialize_MetricsEndpoint(t *testing.T) {
	backend := testutil.NewDataAPI(t)
	a := newTestApp(t, testConfig(backend.URL()))

	rec := httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mysupertc_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestInitCache(t *testing.T) {
	t.Run("uses redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		backend := testutil.NewDataAPI(t)
		cfg := testConfig(backend.URL())
		cfg.Redis.Addr = mr.Addr()

		a := newTestApp(t, cfg)
		assert.IsType(t, &cache.RedisCache{}, a.GetCache())
		require.Contains(t, a.healthChecks, "cache")

		rec := httptest.NewRecorder()
		a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		mr.Close()
		rec = httptest.NewRecorder()
		a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("fails when redis is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig("http://localhost:54321")
		cfg.Redis.Addr = addr

		a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)
		err := a.InitCache()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to redis")
	})

	t.Run("keeps an injected cache", func(t *testing.T) {
		injected := cache.NewInMemoryCache(time.Minute)
		defer injected.Close()

		cfg := testConfig("http://localhost:54321")
		cfg.Redis.Addr = "127.0.0.1:1"

		a := NewApp(cfg, WithLogger(logger.NewTestLogger(t)), WithCache(injected)).(*App)
		require.NoError(t, a.InitCache())
		assert.Same(t, injected, a.GetCache())
	})
}

func TestInitMailer(t *testing.T) {
	cfg := testConfig("http://localhost:54321")
	cfg.SMTP = config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromEmail: "tc@example.com",
		FromName:  "MySuperTC",
	}

	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)
	require.NoError(t, a.InitMailer())
	assert.IsType(t, &mailer.SMTPMailer{}, a.GetMailer())
}

func TestInitServices_RequiresSecretKey(t *testing.T) {
	cfg := testConfig("http://localhost:54321")
	cfg.Security.SecretKey = ""

	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t)), WithRegistry(prometheus.NewRegistry())).(*App)
	require.NoError(t, a.InitMetrics())
	require.NoError(t, a.InitRepositories())

	err := a.InitServices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create token sealer")
}

func TestStartAndShutdown(t *testing.T) {
	backend := testutil.NewDataAPI(t)
	a := newTestApp(t, testConfig(backend.URL()))

	startErr := make(chan error, 1)
	go func() {
		startErr <- a.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, a.WaitForServerStart(ctx))

	a.SetShutdownTimeout(5 * time.Second)
	require.NoError(t, a.Shutdown(ctx))

	select {
	case err := <-startErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	rec := httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, int64(0), a.GetActiveRequestCount())
}
