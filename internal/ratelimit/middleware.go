package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-grosir/internal/common"
)

// New builds a limiter backed by the shared Redis client.
func New(client *redis.Client, perMinute int64) (*limiter.Limiter, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, limiter.Rate{Period: time.Minute, Limit: perMinute}), nil
}

// Middleware enforces a request budget keyed by the caller. The order
// endpoint keys on the company so one aggressive integration cannot starve
// the rest of a shared egress IP.
type Middleware struct {
	Limiter *limiter.Limiter
	Key     func(*http.Request) string
	OnError func(error)
}

// CompanyKey derives the rate limit key from the resolved company, falling
// back to the remote address for unauthenticated callers.
func CompanyKey(r *http.Request) string {
	if companyID, ok := common.CompanyID(r.Context()); ok {
		return "company:" + companyID
	}
	return "addr:" + r.RemoteAddr
}

// Handler implements the http middleware contract.
func (m Middleware) Handler(next http.Handler) http.Handler {
	if m.Limiter == nil {
		return next
	}
	key := m.Key
	if key == nil {
		key = CompanyKey
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lctx, err := m.Limiter.Get(r.Context(), key(r))
		if err != nil {
			// rate limiting is best effort: a Redis outage must not block orders
			if m.OnError != nil {
				m.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retryAfter := lctx.Reset - time.Now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
