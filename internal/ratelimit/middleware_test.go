package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/ratelimit"
)

func TestMiddlewareEnforcesLimitPerCompany(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lim, err := ratelimit.New(client, 1)
	require.NoError(t, err)

	handler := ratelimit.Middleware{Limiter: lim}.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	companyReq := func(company string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		return req.WithContext(common.WithIdentity(req.Context(), common.Identity{CompanyID: company}))
	}

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, companyReq("company-1"))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, companyReq("company-1"))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Contains(t, second.Body.String(), "RATE_LIMITED")
	require.NotEmpty(t, second.Header().Get("Retry-After"))

	// a different company has its own budget
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, companyReq("company-2"))
	require.Equal(t, http.StatusCreated, other.Code)
}

func TestMiddlewareWithoutLimiterPassesThrough(t *testing.T) {
	handler := ratelimit.Middleware{}.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
