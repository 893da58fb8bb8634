package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/brightledger/payments-core/internal/api/problem"
	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const (
	apiKeyContextKey contextKey = "api_key"
	traceContextKey  contextKey = "trace_id"
)

// HashAPIKey renders the SHA-256 hex digest of a raw API key, the value
// stored as key_hash and compared against on every request.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two hex digests without leaking timing
// information about how many leading bytes matched.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// bypassPaths lists routes the gate never requires a key for: health,
// bootstrap, metrics, and the OpenAPI docs surface.
var bypassPaths = map[string]bool{
	"/health":        true,
	"/api/bootstrap": true,
	"/metrics":       true,
	"/openapi.yaml":  true,
}

func isBypassPath(path string) bool {
	if bypassPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/swagger")
}

// AuthStore is the subset of repository access the auth gate needs.
type AuthStore interface {
	FindApiKeyByHash(ctx context.Context, hash string) (*domain.ApiKey, error)
	TouchApiKeyLastUsed(ctx context.Context, id uuid.UUID) error
}

// Auth builds the bearer-API-key gate. The raw Authorization header value
// (including a non-conforming "Bearer "-less form) is accepted per the
// spec's CLI-convenience allowance; a missing, empty, or unrecognized key
// is rejected with 401.
func Auth(store AuthStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBypassPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				problem.Write(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" {
				problem.Write(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			hash := HashAPIKey(raw)
			key, err := store.FindApiKeyByHash(r.Context(), hash)
			if err != nil || key == nil {
				problem.Write(w, http.StatusUnauthorized, "invalid or inactive API key")
				return
			}
			go store.TouchApiKeyLastUsed(context.Background(), key.ID) //nolint:errcheck

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFromContext returns the authenticated caller's key record, or nil
// on an unauthenticated (bypass-listed) request.
func APIKeyFromContext(ctx context.Context) *domain.ApiKey {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(apiKeyContextKey).(*domain.ApiKey); ok {
		return v
	}
	return nil
}

// TraceIDFromContext returns the trace id for the request.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceContextKey).(string); ok {
		return v
	}
	return ""
}
