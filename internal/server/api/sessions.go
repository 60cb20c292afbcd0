package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/form"
)

// SessionStatus is the live state of a user's form analysis session.
type SessionStatus struct {
	Active    bool             `json:"active"`
	StretchID string           `json:"stretch_id,omitempty"`
	Report    form.FrameReport `json:"report"`
}

// SessionController drives camera-verified stretch sessions. The app
// orchestrator implements it.
type SessionController interface {
	StartSession(userID int64, stretchID string) error
	SessionStatus(userID int64) (*SessionStatus, error)
	CompleteSession(userID int64) (*coach.SessionOutcome, error)
	AbandonSession(userID int64) error
}

// SessionHandler exposes session control over HTTP.
type SessionHandler struct {
	ctrl SessionController
}

// NewSessionHandler creates a new SessionHandler with the given
// controller.
func NewSessionHandler(ctrl SessionController) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

// ServeHTTP routes session requests.
// Expected paths: /api/session/{start|status|complete|abandon}
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/session")
	action = strings.TrimPrefix(action, "/")

	switch action {
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w, r)
	case "status":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.status(w, r)
	case "complete":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.complete(w, r)
	case "abandon":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.abandon(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type sessionRequest struct {
	UserID    int64  `json:"user_id"`
	StretchID string `json:"stretch_id,omitempty"`
}

func decodeSessionRequest(w http.ResponseWriter, r *http.Request) (*sessionRequest, bool) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return nil, false
	}
	return &req, true
}

// start handles POST /api/session/start.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}
	if req.StretchID == "" {
		writeError(w, http.StatusBadRequest, "stretch_id is required")
		return
	}

	if err := h.ctrl.StartSession(req.UserID, req.StretchID); err != nil {
		switch {
		case errors.Is(err, form.ErrSessionActive):
			writeError(w, http.StatusConflict, "A session is already active")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "started"})
}

// status handles GET /api/session/status?user_id={id}.
func (h *SessionHandler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	status, err := h.ctrl.SessionStatus(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// complete handles POST /api/session/complete.
func (h *SessionHandler) complete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.ctrl.CompleteSession(req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, form.ErrNoSession):
			writeError(w, http.StatusNotFound, "No active session")
		case errors.Is(err, form.ErrTooShort):
			writeError(w, http.StatusUnprocessableEntity, "Session too short to score, keep going")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to complete session")
		}
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// abandon handles POST /api/session/abandon.
func (h *SessionHandler) abandon(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	if err := h.ctrl.AbandonSession(req.UserID); err != nil {
		if errors.Is(err, form.ErrNoSession) {
			writeError(w, http.StatusNotFound, "No active session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to abandon session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}
