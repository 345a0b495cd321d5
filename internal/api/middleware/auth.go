package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
)

const (
	SessionCookie = "session_token"
	UserIDHeader  = "X-User-ID"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the session token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const UserContextKey contextKey = "user"

// ShopperMiddleware resolves the shopper for cart routes. A session token
// wins; without one the X-User-ID header is accepted. A present but invalid
// token is rejected rather than falling back to the header.
func ShopperMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *auth.Claims
			if tokenString := ExtractToken(r); tokenString != "" {
				c, err := jwtService.ValidateToken(tokenString)
				if err != nil {
					respondError(w, "invalid session", http.StatusUnauthorized)
					return
				}
				claims = c
			} else if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
				claims = &auth.Claims{UserID: userID, Role: auth.RoleGuest}
			} else {
				respondError(w, "missing session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalShopperMiddleware attaches the shopper when one can be resolved and
// otherwise lets the request through anonymously.
func OptionalShopperMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *auth.Claims
			if tokenString := ExtractToken(r); tokenString != "" {
				if c, err := jwtService.ValidateToken(tokenString); err == nil {
					claims = c
				}
			} else if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
				claims = &auth.Claims{UserID: userID, Role: auth.RoleGuest}
			}
			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext retrieves shopper claims from the request context
func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

// GetUserID is a helper to get just the user ID from context
func GetUserID(ctx context.Context) string {
	claims, ok := GetUserFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.UserID
}
