package middleware

import (
	"context"
	"net/http"
	"strings"

	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/token"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) (*token.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	verifier accessVerifier
}

func NewAuthMiddleware(verifier accessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth accepts the access token from the accessToken cookie, falling
// back to an Authorization bearer header for non-browser clients.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := accessTokenFromRequest(r)
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized - no access token provided")
			return
		}

		claims, err := m.verifier.VerifyAccess(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized - invalid or expired access token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(model.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}
