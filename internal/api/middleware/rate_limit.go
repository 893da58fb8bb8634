package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/brightledger/payments-core/internal/api/problem"
	"golang.org/x/time/rate"
)

// anonymousBucketKey is shared by every unauthenticated request, per the
// spec's requirement that the unauthenticated pool is a single bucket.
const anonymousBucketKey = "anonymous"

// bucketStore is a concurrent-safe registry of per-key token buckets. Keys
// are the raw Authorization header value verbatim: a caller sending the
// same key with and without the "Bearer " prefix gets two independent
// buckets. That is preserved, documented behavior, not a bug to fix here.
type bucketStore struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	burst   int
}

func newBucketStore(requests int, period time.Duration) *bucketStore {
	return &bucketStore{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Limit(float64(requests) / period.Seconds()),
		burst:   requests,
	}
}

func (s *bucketStore) limiterFor(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.buckets[key]
	if !ok {
		l = rate.NewLimiter(s.r, s.burst)
		s.buckets[key] = l
	}
	return l
}

// RateLimit builds a per-caller token-bucket limiter: burst equal to
// requests, continuously refilling at requests/period. Health is exempt;
// unauthenticated requests share the anonymous bucket.
func RateLimit(requests int, period time.Duration) func(http.Handler) http.Handler {
	store := newBucketStore(requests, period)
	periodSeconds := int(period.Seconds())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Authorization")
			if key == "" {
				key = anonymousBucketKey
			}

			if !store.limiterFor(key).Allow() {
				problem.WriteRateLimited(w, "rate limit exceeded", periodSeconds)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
