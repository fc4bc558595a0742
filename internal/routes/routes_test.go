package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/config"
	"github.com/MelissaPizarroD/WeightTracker-sub001/pkg/utils"
)

const testSecret = "routes-test-secret"

func newRoutesTestApp(t *testing.T) *fiber.App {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:      testSecret,
		MetricsEnabled: true,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		Steps: config.StepsConfig{
			SyncInterval:     time.Hour,
			SyncMaxElapsed:   time.Minute,
			ForwardThreshold: 10,
			Timezone:         "UTC",
		},
	}

	app := fiber.New()
	RegisterRoutes(app, cfg, nil, rdb, prometheus.NewRegistry())
	return app
}

func authedRequest(t *testing.T, method, target, userID, role string) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken(userID, role, testSecret)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newRoutesTestApp(t)

	for _, target := range []string{"/api/v1/meals", "/api/v1/goals", "/api/v1/steps/today", "/api/v1/plans"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, target)
	}
}

func TestStepsTodayServedFromBuffer(t *testing.T) {
	app := newRoutesTestApp(t)

	resp, err := app.Test(authedRequest(t, http.MethodGet, "/api/v1/steps/today", "42", "user"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserRoutesRejectProfessionals(t *testing.T) {
	app := newRoutesTestApp(t)

	resp, err := app.Test(authedRequest(t, http.MethodGet, "/api/v1/steps/today", "7", "professional"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(authedRequest(t, http.MethodPost, "/api/v1/professionals/onboarding", "8", "user"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newRoutesTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
