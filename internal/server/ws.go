package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/renderix/deskwell/internal/server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FeedbackHandler pushes live form feedback for a user's active session
// over WebSocket.
type FeedbackHandler struct {
	sessions api.SessionController
}

// NewFeedbackHandler creates a new FeedbackHandler with the given
// session controller.
func NewFeedbackHandler(sessions api.SessionController) *FeedbackHandler {
	return &FeedbackHandler{sessions: sessions}
}

// ServeHTTP upgrades the connection and streams session status updates
// until the client disconnects.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Reads only serve to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond) // 10 updates/s
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			status, err := h.sessions.SessionStatus(userID)
			if err != nil {
				continue
			}
			if err := conn.WriteJSON(status); err != nil {
				return
			}
		}
	}
}
