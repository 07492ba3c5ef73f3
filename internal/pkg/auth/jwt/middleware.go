package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"focusroom/internal/app/user"
	"focusroom/internal/pkg/errs"
	"focusroom/internal/pkg/logx"
	"focusroom/internal/pkg/resp"
)

// Define Context Key for storing values, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey stores the parsed *Payload.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// ContextUserKey stores the user.User resolved by RequireIdentity.
	ContextUserKey contextKey = "auth_user"

	// TokenCookieName is the HttpOnly cookie carrying the login token.
	TokenCookieName = "token"
)

// TokenFromRequest returns the raw token from the cookie, the Authorization header or the
// "token" query parameter, in that order. Browsers cannot set headers on a WebSocket
// handshake, hence the cookie and query fallbacks.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	return r.URL.Query().Get("token")
}

// RequireIdentity is the Identity Gate. It resolves the token to a stored user and
// rejects the request with 401 when that fails.
func RequireIdentity(secretKey string, store user.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Identity gate rejected token", "error", err.Error())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
				return
			}

			account, err := store.GetUserByID(r.Context(), payload.ID)
			if err != nil {
				if !errors.Is(err, user.ErrNotFound) {
					logx.Error(err, "Identity gate user lookup failed", "user_id", payload.ID)
				}
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)
			ctx = context.WithValue(ctx, ContextUserKey, account.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the user resolved by RequireIdentity.
func GetUserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ContextUserKey).(user.User)
	return u, ok
}
