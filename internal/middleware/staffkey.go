package middleware

import (
	"net/http"
	"strings"

	"github.com/fieldpilot/portal-server-go/internal/util"
)

// StaffKeyAuth verifies the internal API key staff-initiated actions carry.
// Only the SHA-256 hash of the key is configured on the server.
type StaffKeyAuth struct {
	keyHash string
}

func NewStaffKeyAuth(keyHash string) *StaffKeyAuth {
	return &StaffKeyAuth{keyHash: keyHash}
}

// Verify reports whether the request carries the staff API key. Returns
// false when no key is configured.
func (a *StaffKeyAuth) Verify(r *http.Request) bool {
	if a.keyHash == "" {
		return false
	}
	key := extractAPIKey(r)
	if key == "" {
		return false
	}
	return util.ConstantTimeEqual(util.HashToken(key), a.keyHash)
}

// Handler guards a whole route subtree with the staff API key.
func (a *StaffKeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Verify(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid API key",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
