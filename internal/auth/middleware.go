package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rdservicos/portal/internal/models"
)

type principalContextKey struct{}

// Middleware validates the Bearer token on every request and attaches
// the authenticated principal to the request context.
func Middleware(cookieKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			claims, err := ValidateToken(cookieKey, tokenStr)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := ContextWithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
// A false return is the representable "not logged in" state, not an error.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	v, ok := ctx.Value(principalContextKey{}).(*models.Principal)
	if !ok || v == nil {
		return models.Principal{}, false
	}
	return *v, true
}
