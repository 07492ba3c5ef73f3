/*
Package handler provides the HTTP handler function for WebSocket connection upgrading.

HandleWebSocket runs behind the Identity Gate (jwt.RequireIdentity): by the time it is
reached the user is resolved, so it only upgrades and hands the connection to the
session coordinator.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"focusroom/internal/app/ws"
	"focusroom/internal/pkg/auth/jwt"
	"focusroom/internal/pkg/errs"
	"focusroom/internal/pkg/logx"
	"focusroom/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc that upgrades authenticated requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser, ok := jwt.GetUserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
			return
		}

		logx.Info("Attempting to upgrade connection", "user_id", currentUser.ID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		ws.NewClient(conn, currentUser, deps.Coordinator).Run()
	}
}
