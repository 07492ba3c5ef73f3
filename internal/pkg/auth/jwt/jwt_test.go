package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusroom/internal/app/user"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1", Username: "Ann"}, secret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.ID)
	assert.Equal(t, "Ann", payload.Username)
	assert.Equal(t, TokenIssuer, payload.Issuer)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(&Payload{ID: "u1"}, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.Error(t, err, "expired")

	anonymous, err := GenerateToken(&Payload{Username: "Ann"}, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(anonymous, secret)
	assert.Error(t, err, "no subject")

	_, err = ParseToken("not-a-token", secret)
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"none", func(r *http.Request) {}, ""},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=q" }, "q"},
		{"bearer over query", func(r *http.Request) {
			r.URL.RawQuery = "token=q"
			r.Header.Set("Authorization", "Bearer h")
		}, "h"},
		{"cookie first", func(r *http.Request) {
			r.URL.RawQuery = "token=q"
			r.Header.Set("Authorization", "Bearer h")
			r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "c"})
		}, "c"},
		{"non-bearer scheme ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic h") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.setup(r)
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	store := user.NewMemoryStore()
	account, err := store.CreateUser(context.Background(), "ann", "ann@example.com", "hash")
	require.NoError(t, err)

	var seen user.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := GetUserFromContext(r.Context())
		if ok {
			seen = u
		}
		w.WriteHeader(http.StatusNoContent)
	})
	gate := RequireIdentity(secret, store)(next)

	valid, err := GenerateToken(&Payload{ID: account.ID, Username: account.Username}, secret, time.Hour)
	require.NoError(t, err)
	unknown, err := GenerateToken(&Payload{ID: "missing"}, secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "abc", http.StatusUnauthorized},
		{"unknown user", unknown, http.StatusUnauthorized},
		{"valid", valid, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			gate.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	assert.Equal(t, account.User, seen)
}

func TestGetUserFromContext_Missing(t *testing.T) {
	_, ok := GetUserFromContext(context.Background())
	assert.False(t, ok)
}
