/*
Package handler provides HTTP handler functions for account signup, login and session checks.
*/
package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"focusroom/internal/app/user"
	"focusroom/internal/pkg/auth/jwt"
	"focusroom/internal/pkg/errs"
	"focusroom/internal/pkg/logx"
	"focusroom/internal/pkg/req"
	"focusroom/internal/pkg/resp"
)

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup creates an account.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Username = strings.TrimSpace(input.Username)
		input.Email = strings.TrimSpace(input.Email)
		if input.Username == "" || input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			logx.Error(err, "signup: password hashing failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		account, err := deps.Users.CreateUser(r.Context(), input.Username, input.Email, string(hashedPassword))
		if err != nil {
			if errors.Is(err, user.ErrDuplicate) {
				logx.Warn("signup conflict: username or email already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": map[string]any{
				"id":       account.ID,
				"username": account.Username,
				"email":    account.Email,
			},
		})
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials, issues a token and stores it in the session cookie.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		account, err := deps.Users.GetUserByUsername(r.Context(), input.Username)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				logx.Error(err, "login: user fetch failed", "username", input.Username)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		payload := &jwt.Payload{
			ID:       account.ID,
			Username: account.Username,
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     jwt.TokenCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(jwt.IdentityExpiration.Seconds()),
			HttpOnly: true,
			Secure:   !deps.Config.IsDevelopment(),
			SameSite: http.SameSiteLaxMode,
		})

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  account.User,
		})
	}
}

// HandleLogout clears the session cookie.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(jwt.TokenCookieName); err != nil || cookie.Value == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotLoggedIn))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     jwt.TokenCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   !deps.Config.IsDevelopment(),
			SameSite: http.SameSiteLaxMode,
		})

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleVerify returns the identity behind the request. Mounted behind jwt.RequireIdentity.
func HandleVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := jwt.GetUserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": u})
	}
}
