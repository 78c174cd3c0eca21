package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinebook/config"
	"dinebook/infras/otel/mocks"
	cacheMocks "dinebook/shared/cache/mocks"
	"dinebook/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func limited(t *testing.T, enable bool) (http.Handler, *cacheMocks.MockRedisCache) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))
	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, redisCache)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	return mw.RateLimit()(ok), redisCache
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		count         int64
		err           error
		wantStatus    int
		wantRemaining string
		wantRetry     string
	}{
		{name: "first request", count: 1, wantStatus: http.StatusOK, wantRemaining: "1"},
		{name: "last allowed", count: 2, wantStatus: http.StatusOK, wantRemaining: "0"},
		{name: "over the limit", count: 3, wantStatus: http.StatusTooManyRequests, wantRemaining: "0", wantRetry: "60"},
		{name: "redis down", err: errors.New("dial tcp: refused"), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, redisCache := limited(t, true)

			redisCache.EXPECT().Increment(gomock.Any(), "limiter:203.0.113.7", 60).Return(tt.count, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
			req.RemoteAddr = "203.0.113.7:51234"

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get("X-RateLimit-Remaining"))
			assert.Equal(t, tt.wantRetry, rec.Header().Get("Retry-After"))
		})
	}
}

func TestRateLimitKeysOnForwardedClient(t *testing.T) {
	handler, redisCache := limited(t, true)

	redisCache.EXPECT().Increment(gomock.Any(), "limiter:198.51.100.4", 60).Return(int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	handler, _ := limited(t, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
