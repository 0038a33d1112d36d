// ABOUTME: HTTP middleware requiring a valid bearer token
// ABOUTME: Used by the fake backend to exercise the client's Authorization header

package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// RequireBearer rejects requests without a token signed by secret. Failures
// are answered with 401 and a JSON {"message": ...} body.
func RequireBearer(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, msg := extractBearerToken(r.Header.Get("Authorization"))
		if msg == "" {
			if _, err := Verify(secret, token); err != nil {
				msg = err.Error()
			}
		}
		if msg != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}
