package auth

import (
	"net/http"
	"strings"

	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// bearerPrefix is the scheme prefix expected on the Authorization header.
const bearerPrefix = "Bearer "

// Middleware returns an http middleware that extracts and validates the
// bearer token, attaching Claims to the request context on success. On
// failure it writes 401 directly and never leaks crypto detail in the
// response body.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				writeUnauthorized(w, "missing or malformed authorization header")
				return
			}
			token := strings.TrimPrefix(header, bearerPrefix)

			claims, err := service.Validate(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	_ = gwerrors.NewUnauthorizedError(message, nil)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
