package handlers

import (
	"net/http"

	"moviegate/api"
	"moviegate/internal/logger"
	"moviegate/models"
)

type sessionCreator interface {
	Create(userAgent, ipAddress string) (models.Session, error)
}

// SessionsHandler issues browsing sessions.
type SessionsHandler struct {
	Service sessionCreator
}

func NewSessionsHandler(s sessionCreator) *SessionsHandler {
	return &SessionsHandler{Service: s}
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Create(r.UserAgent(), api.ClientIP(r))
	if err != nil {
		logger.For(r.Context()).WithError(err).Error("create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": session.Token})
}
