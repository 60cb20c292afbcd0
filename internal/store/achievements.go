package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

//go:embed achievements.json
var achievementSeed []byte

// Requirement types for unlocking achievements.
const (
	RequirementStreak     = "streak"
	RequirementTotalCount = "total_count"
)

// Achievement is an unlockable milestone.
type Achievement struct {
	ID                  int64  `json:"id"`
	Key                 string `json:"key"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Icon                string `json:"icon"`
	PointsReward        int    `json:"points_reward"`
	RequirementType     string `json:"requirement_type"`
	RequirementCategory string `json:"requirement_category"`
	RequirementValue    int    `json:"requirement_value"`
	Tier                string `json:"tier"`
}

// UserAchievement pairs an achievement with its unlock state for a user.
type UserAchievement struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Viewed     bool       `json:"viewed"`
}

// seedAchievements inserts the built-in achievement definitions. Existing
// rows are left alone so re-running on an initialized database is a no-op.
func (s *Store) seedAchievements() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM achievements`).Scan(&count); err != nil {
		return fmt.Errorf("counting achievements: %w", err)
	}
	if count > 0 {
		return nil
	}

	var defs []Achievement
	if err := json.Unmarshal(achievementSeed, &defs); err != nil {
		return fmt.Errorf("parsing achievement seed: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range defs {
		_, err := tx.Exec(
			`INSERT INTO achievements (achievement_key, name, description, icon,
			   points_reward, requirement_type, requirement_category, requirement_value, tier)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Key, a.Name, a.Description, a.Icon,
			a.PointsReward, a.RequirementType, a.RequirementCategory, a.RequirementValue, a.Tier)
		if err != nil {
			return fmt.Errorf("seeding achievement %q: %w", a.Key, err)
		}
	}
	return tx.Commit()
}

// AchievementRepository provides access to achievements and per-user
// unlock state.
type AchievementRepository struct {
	db *sql.DB
}

// Achievements returns the achievement repository for this store.
func (s *Store) Achievements() *AchievementRepository {
	return &AchievementRepository{db: s.db}
}

const achievementColumns = `id, achievement_key, name, description, icon,
	points_reward, requirement_type, requirement_category, requirement_value, tier`

func scanAchievement(row interface{ Scan(...any) error }) (*Achievement, error) {
	a := &Achievement{}
	var category sql.NullString
	err := row.Scan(&a.ID, &a.Key, &a.Name, &a.Description, &a.Icon,
		&a.PointsReward, &a.RequirementType, &category, &a.RequirementValue, &a.Tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.RequirementCategory = category.String
	return a, nil
}

// ListForUser returns every achievement together with the user's unlock
// state, locked ones included.
func (r *AchievementRepository) ListForUser(userID int64) ([]*UserAchievement, error) {
	rows, err := r.db.Query(
		`SELECT a.id, a.achievement_key, a.name, a.description, a.icon,
		   a.points_reward, a.requirement_type, a.requirement_category,
		   a.requirement_value, a.tier, ua.unlocked_at, ua.viewed
		 FROM achievements a
		 LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = ?
		 ORDER BY a.requirement_value, a.achievement_key`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*UserAchievement
	for rows.Next() {
		ua := &UserAchievement{}
		var category sql.NullString
		var unlockedAt sql.NullTime
		var viewed sql.NullBool
		err := rows.Scan(&ua.ID, &ua.Key, &ua.Name, &ua.Description, &ua.Icon,
			&ua.PointsReward, &ua.RequirementType, &category,
			&ua.RequirementValue, &ua.Tier, &unlockedAt, &viewed)
		if err != nil {
			return nil, err
		}
		ua.RequirementCategory = category.String
		if unlockedAt.Valid {
			ua.Unlocked = true
			t := unlockedAt.Time
			ua.UnlockedAt = &t
			ua.Viewed = viewed.Bool
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}

// MarkViewed flags a user's unlocked achievement as seen.
func (r *AchievementRepository) MarkViewed(userID, achievementID int64) error {
	res, err := r.db.Exec(
		`UPDATE user_achievements SET viewed = 1 WHERE user_id = ? AND achievement_id = ?`,
		userID, achievementID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// checkAchievements evaluates every locked achievement against the user's
// current stats and unlocks those whose requirement is now met. Reward
// points are credited immediately. Runs inside the activity transaction.
func checkAchievements(tx *sql.Tx, userID int64) ([]Achievement, error) {
	var stretches, breaks, points, streak int
	err := tx.QueryRow(
		`SELECT total_stretches_completed, total_breaks_taken, total_points, current_streak
		 FROM users WHERE id = ?`,
		userID).Scan(&stretches, &breaks, &points, &streak)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		`SELECT `+achievementColumns+` FROM achievements
		 WHERE id NOT IN (SELECT achievement_id FROM user_achievements WHERE user_id = ?)`,
		userID)
	if err != nil {
		return nil, err
	}

	var candidates []Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, *a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var unlocked []Achievement
	for _, a := range candidates {
		if !requirementMet(a, stretches, breaks, points, streak) {
			continue
		}
		_, err := tx.Exec(
			`INSERT INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`,
			userID, a.ID)
		if err != nil {
			return nil, err
		}
		if a.PointsReward > 0 {
			_, err = tx.Exec(
				`UPDATE users SET total_points = total_points + ? WHERE id = ?`,
				a.PointsReward, userID)
			if err != nil {
				return nil, err
			}
		}
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

func requirementMet(a Achievement, stretches, breaks, points, streak int) bool {
	switch a.RequirementType {
	case RequirementStreak:
		return streak >= a.RequirementValue
	case RequirementTotalCount:
		switch a.RequirementCategory {
		case "stretches":
			return stretches >= a.RequirementValue
		case "breaks":
			return breaks >= a.RequirementValue
		case "points":
			return points >= a.RequirementValue
		}
	}
	return false
}
