package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"storefront/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Authenticate verifies bearer tokens and attaches the claims to the request
// context. Requests without an Authorization header pass through unless
// required is set; a header that is present must always be valid.
func Authenticate(issuer *utils.TokenIssuer, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || issuer == nil {
				if required {
					writeError(w, http.StatusUnauthorized, "Authorization header missing")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := issuer.ParseJWT(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

func contextWithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// ClaimsFromContext returns the claims attached by Authenticate, if any
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// CanActAs reports whether the request may act on userID's data: always when
// the request is anonymous, otherwise only for the token's own user or admins.
func CanActAs(ctx context.Context, userID string) bool {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return true
	}
	return claims.UserID == userID || claims.Role == "admin"
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
