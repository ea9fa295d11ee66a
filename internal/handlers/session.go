package handlers

import (
	"net/http"

	"healthmap/internal/auth"
	"healthmap/internal/services"

	"go.uber.org/zap"
)

type SessionHandler struct {
	tokens *auth.SessionManager
	store  *services.SessionStore
	logr   *zap.Logger
}

func NewSessionHandler(tokens *auth.SessionManager, store *services.SessionStore, logr *zap.Logger) *SessionHandler {
	return &SessionHandler{tokens: tokens, store: store, logr: logr}
}

// CreateSession issues a token for a fresh interaction session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	tok, err := h.tokens.Issue()
	if err != nil {
		h.logr.Error("failed to issue session token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to create session",
		})
		return
	}
	h.store.Get(tok.SessionID)

	h.logr.Info("session created", zap.String("session", tok.SessionID))
	writeJSON(w, http.StatusCreated, tok)
}
