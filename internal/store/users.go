package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// User represents a user profile with preferences and aggregate stats.
type User struct {
	ID                      int64     `json:"id"`
	Username                string    `json:"username"`
	Email                   string    `json:"email,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	LastActive              time.Time `json:"last_active"`
	BreakInterval           int       `json:"break_interval"`
	StretchGoalDaily        int       `json:"stretch_goal_daily"`
	NotificationsEnabled    bool      `json:"notifications_enabled"`
	FitnessLevel            string    `json:"fitness_level"`
	PainPoints              []string  `json:"pain_points"`
	TotalBreaksTaken        int       `json:"total_breaks_taken"`
	TotalStretchesCompleted int       `json:"total_stretches_completed"`
	TotalPoints             int       `json:"total_points"`
	CurrentStreak           int       `json:"current_streak"`
	LongestStreak           int       `json:"longest_streak"`
	PetName                 string    `json:"pet_name,omitempty"`
}

// UserRepository provides CRUD operations for users.
type UserRepository struct {
	db *sql.DB
}

// Users returns the user repository for this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Create inserts a new user with default preferences and creates the
// user's pet.
func (r *UserRepository) Create(u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.LastActive = now
	if u.BreakInterval <= 0 {
		u.BreakInterval = 45
	}
	if u.StretchGoalDaily <= 0 {
		u.StretchGoalDaily = 5
	}
	if u.FitnessLevel == "" {
		u.FitnessLevel = "beginner"
	}
	if u.PetName == "" {
		u.PetName = "Buddy"
	}

	painPoints, err := json.Marshal(u.PainPoints)
	if err != nil {
		return err
	}
	if u.PainPoints == nil {
		painPoints = []byte("[]")
	}

	result, err := r.db.Exec(
		`INSERT INTO users (username, email, created_at, last_active, break_interval,
		   stretch_goal_daily, notifications_enabled, fitness_level, pain_points, pet_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.CreatedAt, u.LastActive, u.BreakInterval,
		u.StretchGoalDaily, u.NotificationsEnabled, u.FitnessLevel, string(painPoints), u.PetName,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id

	// Every user gets a pet from day one
	_, err = r.db.Exec(
		`INSERT INTO pets (user_id, name) VALUES (?, ?)`,
		u.ID, u.PetName,
	)
	return err
}

const userColumns = `id, username, email, created_at, last_active, break_interval,
	stretch_goal_daily, notifications_enabled, fitness_level, pain_points,
	total_breaks_taken, total_stretches_completed, total_points,
	current_streak, longest_streak, pet_name`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	var email sql.NullString
	var painPoints string

	err := row.Scan(&u.ID, &u.Username, &email, &u.CreatedAt, &u.LastActive,
		&u.BreakInterval, &u.StretchGoalDaily, &u.NotificationsEnabled,
		&u.FitnessLevel, &painPoints,
		&u.TotalBreaksTaken, &u.TotalStretchesCompleted, &u.TotalPoints,
		&u.CurrentStreak, &u.LongestStreak, &u.PetName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u.Email = email.String
	if err := json.Unmarshal([]byte(painPoints), &u.PainPoints); err != nil {
		u.PainPoints = nil
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id int64) (*User, error) {
	return scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*User, error) {
	return scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// UpdatePreferences updates the user's adjustable preferences.
func (r *UserRepository) UpdatePreferences(id int64, breakInterval, stretchGoal int,
	notifications bool, fitnessLevel string, painPoints []string) error {

	pp, err := json.Marshal(painPoints)
	if err != nil {
		return err
	}
	if painPoints == nil {
		pp = []byte("[]")
	}

	result, err := r.db.Exec(
		`UPDATE users SET break_interval = ?, stretch_goal_daily = ?,
		   notifications_enabled = ?, fitness_level = ?, pain_points = ?, last_active = ?
		 WHERE id = ?`,
		breakInterval, stretchGoal, notifications, fitnessLevel, string(pp),
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBreakInterval updates only the break reminder interval.
func (r *UserRepository) SetBreakInterval(id int64, minutes int) error {
	result, err := r.db.Exec(
		`UPDATE users SET break_interval = ?, last_active = ? WHERE id = ?`,
		minutes, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
