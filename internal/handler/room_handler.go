package handler

import (
	"net/http"

	"focusroom/internal/pkg/resp"
)

// HandleDefaultSettings returns the settings applied to rooms created without overrides.
func HandleDefaultSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Coordinator.DefaultSettings())
	}
}
