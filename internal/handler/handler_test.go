package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusroom/internal/app/hub"
	"focusroom/internal/app/room"
	"focusroom/internal/app/session"
	"focusroom/internal/app/user"
	"focusroom/internal/configs"
	"focusroom/internal/pkg/auth/jwt"
	"focusroom/internal/pkg/errs"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	deps    *AppDeps
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := clockwork.NewFakeClock()
	rooms := room.NewManager(clock)
	t.Cleanup(rooms.Shutdown)

	cfg := &configs.AppConfig{
		Environment:       "development",
		JWTSecret:         "test-secret",
		RoomDeletionGrace: time.Minute,
		TimerTickInterval: time.Second,
		DefaultSettings:   room.DefaultSettings(),
	}
	deps := &AppDeps{
		Config: cfg,
		Users:  user.NewMemoryStore(),
		Coordinator: session.NewCoordinator(rooms, hub.New(), clock, session.Options{
			DeletionGrace: cfg.RoomDeletionGrace,
			Defaults:      cfg.DefaultSettings,
		}),
	}
	return &testApp{deps: deps, handler: Router(ctx, deps)}
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testApp) signup(t *testing.T, username, email, password string) {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/auth/signup", SignupInput{Username: username, Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == jwt.TokenCookieName {
			return c
		}
	}
	t.Fatal("no token cookie set")
	return nil
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.JSONEq(t, `{"status":"ok","service":"FocusRoom Server"}`, string(env.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodGet, "/health", nil)

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "focusroom_http_requests_total")
}

func TestDefaultSettings(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/api/rooms/default-settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got room.Settings
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, room.DefaultSettings(), got)
}

func TestSignup_Validation(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "ann", "ann@example.com", "secret")

	tests := []struct {
		name  string
		input SignupInput
		code  int
	}{
		{"missing fields", SignupInput{Username: "bob"}, errs.ErrMissingFields},
		{"invalid email", SignupInput{Username: "bob", Email: "not-an-email", Password: "pw"}, errs.ErrInvalidEmail},
		{"taken username", SignupInput{Username: "ann", Email: "other@example.com", Password: "pw"}, errs.ErrUserAlreadyExists},
		{"taken email", SignupInput{Username: "bob", Email: "ann@example.com", Password: "pw"}, errs.ErrUserAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := app
			if tt.code == errs.ErrUserAlreadyExists {
				app = newTestApp(t)
				app.signup(t, "ann", "ann@example.com", "secret")
			}
			w, env := app.do(t, http.MethodPost, "/api/auth/signup", tt.input)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestLoginVerifyLogout(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "ann", "ann@example.com", "secret")

	w, env := app.do(t, http.MethodPost, "/api/auth/login", LoginInput{Username: "ann", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrInvalidCredentials, env.Code)

	w, env = app.do(t, http.MethodPost, "/api/auth/login", LoginInput{Username: "nobody", Password: "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrInvalidCredentials, env.Code)

	w, env = app.do(t, http.MethodPost, "/api/auth/login", LoginInput{Username: "ann", Password: "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := tokenCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(jwt.IdentityExpiration.Seconds()), cookie.MaxAge)

	var login struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, cookie.Value, login.Token)
	assert.Equal(t, "ann", login.User.Username)

	w, env = app.do(t, http.MethodGet, "/api/auth/verify", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"id":"`+login.User.ID+`","username":"ann"}}`, string(env.Data))

	w, _ = app.do(t, http.MethodGet, "/api/auth/verify", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, tokenCookie(t, w).MaxAge)

	w, env = app.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errs.ErrNotLoggedIn, env.Code)
}

func TestWebSocket_RequiresIdentity(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/ws", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrUnauthenticated, env.Code)

	w, _ = app.do(t, http.MethodGet, "/ws?token=forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebSocket_CreateRoom(t *testing.T) {
	app := newTestApp(t)
	account, err := app.deps.Users.CreateUser(context.Background(), "ann", "ann@example.com", "hash")
	require.NoError(t, err)
	token, err := jwt.GenerateToken(&jwt.Payload{ID: account.ID, Username: account.Username}, app.deps.Config.JWTSecret, time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(app.handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "createRoom",
		"payload": map[string]any{"roomId": "ALPHA1"},
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first struct {
		Type    string                  `json:"type"`
		Payload session.SnapshotPayload `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "roomCreated", first.Type)
	assert.Equal(t, "ALPHA1", first.Payload.RoomID)
	assert.Equal(t, account.ID, first.Payload.HostID)
	assert.True(t, first.Payload.IsHost)
}
