package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// FormSession is the persisted record of a completed form analysis
// session.
type FormSession struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	StretchID      string    `json:"stretch_id"`
	StretchName    string    `json:"stretch_name"`
	Category       string    `json:"category"`
	FramesAnalyzed int       `json:"frames_analyzed"`
	GoodFormFrames int       `json:"good_form_frames"`
	Accuracy       float64   `json:"accuracy"`
	BonusTier      string    `json:"bonus_tier"`
	CompletedAt    time.Time `json:"completed_at"`
}

// SessionRepository stores completed form analysis sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the form session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create persists a completed session record.
func (r *SessionRepository) Create(fs *FormSession) error {
	if fs.ID == "" {
		fs.ID = uuid.New().String()
	}
	if fs.CompletedAt.IsZero() {
		fs.CompletedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO form_sessions (id, user_id, stretch_id, stretch_name, category,
		   frames_analyzed, good_form_frames, accuracy, bonus_tier, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.UserID, fs.StretchID, fs.StretchName, fs.Category,
		fs.FramesAnalyzed, fs.GoodFormFrames, fs.Accuracy, fs.BonusTier, fs.CompletedAt)
	return err
}

// ListByUser returns a user's completed sessions, newest first. Zero
// limit returns everything.
func (r *SessionRepository) ListByUser(userID int64, limit int) ([]*FormSession, error) {
	query := `SELECT id, user_id, stretch_id, stretch_name, category,
		frames_analyzed, good_form_frames, accuracy, bonus_tier, completed_at
		FROM form_sessions WHERE user_id = ? ORDER BY completed_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*FormSession
	for rows.Next() {
		fs := &FormSession{}
		err := rows.Scan(&fs.ID, &fs.UserID, &fs.StretchID, &fs.StretchName, &fs.Category,
			&fs.FramesAnalyzed, &fs.GoodFormFrames, &fs.Accuracy, &fs.BonusTier, &fs.CompletedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, fs)
	}
	return sessions, rows.Err()
}
