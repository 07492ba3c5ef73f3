package handler

import (
	"focusroom/internal/app/session"
	"focusroom/internal/app/user"
	"focusroom/internal/configs"
)

// AppDeps holds everything the HTTP layer needs.
type AppDeps struct {
	Coordinator *session.Coordinator
	Users       user.Store
	Config      *configs.AppConfig
}
