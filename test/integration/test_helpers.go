//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-auth/internal/config"
	"ecommerce-auth/internal/database"
	"ecommerce-auth/internal/handler"
	"ecommerce-auth/internal/metrics"
	"ecommerce-auth/internal/middleware"
	"ecommerce-auth/internal/repository"
	"ecommerce-auth/internal/router"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/internal/service"
	"ecommerce-auth/internal/token"
)

type testEnv struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	db     *database.DB
}

// newTestEnv serves the full router over a throwaway MongoDB database and
// an in-process Redis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, uri, "auth_e2e_"+bson.NewObjectID().Hex())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Close(context.Background())
	})
	require.NoError(t, db.EnsureIndexes(ctx))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		CORSOrigins:        []string{"http://localhost:5173"},
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	require.NoError(t, err)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	authService := service.NewAuthService(
		repository.NewUserRepository(db.Database, hasher),
		repository.NewSessionRepository(client),
		issuer,
		hasher,
	)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	cookies := handler.CookiePolicy{AccessMaxAge: cfg.AccessTokenTTL, RefreshMaxAge: cfg.RefreshTokenTTL}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(issuer), router.Handlers{
		Auth: handler.NewAuthHandler(authService, cookies, m, true),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"mongodb": db.Health,
			"redis":   func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}),
	}, m, registry))
	t.Cleanup(server.Close)

	return &testEnv{server: server, redis: mr, db: db}
}

// newBrowser returns a client that keeps cookies between requests, the way
// a browser holds the session.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, payload any) *http.Response {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
