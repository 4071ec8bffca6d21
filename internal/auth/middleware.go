package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	// ReviewerContextKey is the key used to store reviewer claims in context
	ReviewerContextKey contextKey = "reviewer"
)

// Middleware creates a middleware that requires a valid bearer token
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.ValidateToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ReviewerContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetReviewerFromContext retrieves reviewer claims from the request context
func GetReviewerFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ReviewerContextKey).(*Claims)
	return claims, ok
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
