package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/stocktide/stocktide/internal/platform/httpx"
)

type contextKey struct{}

// ContextWithUserID attaches the authenticated user ID to the context.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the authenticated user ID, zero when absent.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(contextKey{}).(int64); ok {
		return id
	}
	return 0
}

// TokenFromRequest extracts the bearer session token from the request.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireSession rejects requests without a valid session token and stores
// the resolved user ID on the request context.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.ResolveSession(r.Context(), TokenFromRequest(r))
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or expired session")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}
