// ABOUTME: Tests for JWT issue/verify/inspect and the bearer middleware
// ABOUTME: Covers expiry detection without a secret and 401 responses

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-at-least-32-bytes-long!!")

func TestIssueAndVerify(t *testing.T) {
	token, err := Issue(testSecret, "user:alice", time.Hour)
	require.NoError(t, err)

	sub, err := Verify(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user:alice", sub)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := Issue(testSecret, "user:alice", time.Hour)
	require.NoError(t, err)

	_, err = Verify([]byte("another-secret-another-secret-xx"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	token, err := Issue(testSecret, "user:alice", -time.Minute)
	require.NoError(t, err)

	_, err = Verify(testSecret, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestInspect_ReportsExpiry(t *testing.T) {
	token, err := Issue(testSecret, "user:bob", -time.Minute)
	require.NoError(t, err)

	info, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "user:bob", info.Subject)
	assert.True(t, info.Expired(time.Now()))
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenInfo_NoExpiry(t *testing.T) {
	assert.False(t, TokenInfo{}.Expired(time.Now()))
}

func TestRequireBearer(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireBearer(testSecret, ok)

	valid, err := Issue(testSecret, "user:alice", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
