package store

import (
	"database/sql"
	"time"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a companion conversation.
type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SessionID string    `json:"session_id"`
}

// ConversationRepository stores companion chat transcripts.
type ConversationRepository struct {
	db *sql.DB
}

// Conversations returns the conversation repository for this store.
func (s *Store) Conversations() *ConversationRepository {
	return &ConversationRepository{db: s.db}
}

// Save appends a message to the transcript.
func (r *ConversationRepository) Save(m *Message) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	res, err := r.db.Exec(
		`INSERT INTO conversation_history (user_id, timestamp, role, content, session_id)
		 VALUES (?, ?, ?, ?, ?)`,
		m.UserID, m.Timestamp, m.Role, m.Content, nullableStr(m.SessionID))
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// History returns a user's messages oldest first, optionally restricted
// to one chat session. Zero limit returns everything.
func (r *ConversationRepository) History(userID int64, sessionID string, limit int) ([]*Message, error) {
	query := `SELECT id, user_id, timestamp, role, content, session_id
		FROM conversation_history WHERE user_id = ?`
	args := []any{userID}

	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}

	// Fetch the newest messages, then reverse into chronological order.
	query += ` ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		var sid sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Timestamp, &m.Role, &m.Content, &sid); err != nil {
			return nil, err
		}
		m.SessionID = sid.String
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
