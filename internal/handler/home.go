package handler

import (
	"net/http"
)

type HomeHandler struct {
	appName string
}

func NewHomeHandler(appName string) *HomeHandler {
	return &HomeHandler{appName: appName}
}

// Health is the liveness banner at the API root.
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, map[string]any{
		"message": h.appName + " API is running",
	})
}
