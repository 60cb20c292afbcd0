package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/renderix/deskwell/internal/companion"
	"github.com/renderix/deskwell/internal/store"
)

// ChatHandler exposes the companion chat over HTTP.
type ChatHandler struct {
	companion *companion.Companion
}

// NewChatHandler creates a new ChatHandler with the given companion.
func NewChatHandler(c *companion.Companion) *ChatHandler {
	return &ChatHandler{companion: c}
}

// ServeHTTP routes chat requests.
// Expected paths: /api/chat or /api/chat/history
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/chat")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.chat(w, r)
	case "history":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.history(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type chatRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// chat handles POST /api/chat.
func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.companion.Chat(r.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Chat failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// history handles GET /api/chat/history?user_id={id}.
func (h *ChatHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	limit := queryInt(r, "limit", 50)

	messages, err := h.companion.History(userID, sessionID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
