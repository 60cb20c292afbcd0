package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActivityType categorizes a logged activity.
type ActivityType string

const (
	ActivityBreak     ActivityType = "break"
	ActivityStretch   ActivityType = "stretch"
	ActivityChat      ActivityType = "chat"
	ActivityMoodCheck ActivityType = "mood_check"
)

// Activity is one logged user action.
type Activity struct {
	ID           string
	UserID       int64
	Type         ActivityType
	Timestamp    time.Time
	Duration     int // seconds, 0 when not applicable
	PointsEarned int
	StretchName  string
	FormVerified bool
	MoodRating   int // 1-10, 0 when absent
	StressLevel  int // 1-10, 0 when absent
	ChatSummary  string
}

// ActivityRepository provides logging and querying of user activities.
type ActivityRepository struct {
	db *sql.DB
}

// Activities returns the activity repository for this store.
func (s *Store) Activities() *ActivityRepository {
	return &ActivityRepository{db: s.db}
}

// Log records an activity, updates the user's aggregate stats and streak,
// and checks for newly unlocked achievements. It returns the achievements
// unlocked by this activity, if any.
func (r *ActivityRepository) Log(a *Activity) ([]Achievement, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO activities (id, user_id, activity_type, timestamp, duration,
		   points_earned, stretch_name, form_verified, mood_rating, stress_level, chat_summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Type), a.Timestamp, nullableInt(a.Duration),
		a.PointsEarned, nullableStr(a.StretchName), a.FormVerified,
		nullableInt(a.MoodRating), nullableInt(a.StressLevel), nullableStr(a.ChatSummary),
	)
	if err != nil {
		return nil, err
	}

	if err := updateUserStats(tx, a); err != nil {
		return nil, err
	}

	unlocked, err := checkAchievements(tx, a.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return unlocked, nil
}

// updateUserStats bumps the per-type counters, the points total and the
// day streak for the activity's user. The streak is recomputed from
// last_active before it is overwritten.
func updateUserStats(tx *sql.Tx, a *Activity) error {
	if err := updateStreak(tx, a.UserID, a.Timestamp); err != nil {
		return err
	}

	switch a.Type {
	case ActivityBreak:
		if _, err := tx.Exec(
			`UPDATE users SET total_breaks_taken = total_breaks_taken + 1 WHERE id = ?`,
			a.UserID); err != nil {
			return err
		}
	case ActivityStretch:
		if _, err := tx.Exec(
			`UPDATE users SET total_stretches_completed = total_stretches_completed + 1 WHERE id = ?`,
			a.UserID); err != nil {
			return err
		}
	}

	_, err := tx.Exec(
		`UPDATE users SET total_points = total_points + ?, last_active = ? WHERE id = ?`,
		a.PointsEarned, a.Timestamp, a.UserID)
	return err
}

// updateStreak recomputes the user's activity streak against the date of
// their previous activity. A consecutive day extends the streak, a gap
// resets it, and repeat activity on the same day leaves it unchanged.
func updateStreak(tx *sql.Tx, userID int64, now time.Time) error {
	var current, longest int
	var lastActive sql.NullTime
	if err := tx.QueryRow(
		`SELECT current_streak, longest_streak, last_active FROM users WHERE id = ?`,
		userID).Scan(&current, &longest, &lastActive); err != nil {
		return err
	}

	today := now.UTC().Truncate(24 * time.Hour)

	if !lastActive.Valid {
		current = 1
	} else {
		lastDay := lastActive.Time.UTC().Truncate(24 * time.Hour)
		switch int(today.Sub(lastDay).Hours() / 24) {
		case 0:
			// Already counted today
			if current < 1 {
				current = 1
			}
		case 1:
			current++
		default:
			current = 1
		}
	}

	if current > longest {
		longest = current
	}

	_, err := tx.Exec(
		`UPDATE users SET current_streak = ?, longest_streak = ? WHERE id = ?`,
		current, longest, userID)
	return err
}

const activityColumns = `id, user_id, activity_type, timestamp, duration,
	points_earned, stretch_name, form_verified, mood_rating, stress_level, chat_summary`

func scanActivity(row interface{ Scan(...any) error }) (*Activity, error) {
	a := &Activity{}
	var actType string
	var duration, moodRating, stressLevel sql.NullInt64
	var stretchName, chatSummary sql.NullString

	err := row.Scan(&a.ID, &a.UserID, &actType, &a.Timestamp, &duration,
		&a.PointsEarned, &stretchName, &a.FormVerified, &moodRating, &stressLevel, &chatSummary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.Type = ActivityType(actType)
	a.Duration = int(duration.Int64)
	a.MoodRating = int(moodRating.Int64)
	a.StressLevel = int(stressLevel.Int64)
	a.StretchName = stretchName.String
	a.ChatSummary = chatSummary.String
	return a, nil
}

// List retrieves a user's activities, newest first, optionally filtered
// by type and restricted to the last N days. Zero values disable the
// corresponding filter.
func (r *ActivityRepository) List(userID int64, actType ActivityType, days, limit int) ([]*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = ?`
	args := []any{userID}

	if actType != "" {
		query += ` AND activity_type = ?`
		args = append(args, string(actType))
	}
	if days > 0 {
		query += ` AND timestamp >= ?`
		args = append(args, time.Now().UTC().AddDate(0, 0, -days))
	}

	query += ` ORDER BY timestamp DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

// Latest returns the most recent activity of the given type, or
// ErrNotFound when the user has none.
func (r *ActivityRepository) Latest(userID int64, actType ActivityType) (*Activity, error) {
	return scanActivity(r.db.QueryRow(
		`SELECT `+activityColumns+` FROM activities
		 WHERE user_id = ? AND activity_type = ?
		 ORDER BY timestamp DESC LIMIT 1`,
		userID, string(actType)))
}

// PeriodStats summarizes a user's activity over a period.
type PeriodStats struct {
	Days            int     `json:"days"`
	TotalActivities int     `json:"total_activities"`
	Breaks          int     `json:"breaks"`
	Stretches       int     `json:"stretches"`
	Chats           int     `json:"chats"`
	PointsEarned    int     `json:"points_earned"`
	AverageMood     float64 `json:"average_mood"`
	AverageStress   float64 `json:"average_stress"`
}

// Stats computes activity statistics for the last N days.
func (r *ActivityRepository) Stats(userID int64, days int) (*PeriodStats, error) {
	activities, err := r.List(userID, "", days, 0)
	if err != nil {
		return nil, err
	}

	stats := &PeriodStats{Days: days, TotalActivities: len(activities)}
	var moodSum, moodCount, stressSum, stressCount int

	for _, a := range activities {
		switch a.Type {
		case ActivityBreak:
			stats.Breaks++
		case ActivityStretch:
			stats.Stretches++
		case ActivityChat:
			stats.Chats++
		}
		stats.PointsEarned += a.PointsEarned
		if a.MoodRating > 0 {
			moodSum += a.MoodRating
			moodCount++
		}
		if a.StressLevel > 0 {
			stressSum += a.StressLevel
			stressCount++
		}
	}

	if moodCount > 0 {
		stats.AverageMood = float64(moodSum) / float64(moodCount)
	}
	if stressCount > 0 {
		stats.AverageStress = float64(stressSum) / float64(stressCount)
	}
	return stats, nil
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}
