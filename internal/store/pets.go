package store

import (
	"database/sql"
	"errors"
	"time"
)

// Evolution stages in order of progression.
const (
	StageEgg      = "egg"
	StageSprout   = "sprout"
	StageBuddy    = "buddy"
	StageGuardian = "guardian"
)

// Pet is a user's virtual companion. Health and happiness range 0-100
// and decay when the user neglects their wellness routine.
type Pet struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	Personality     string    `json:"personality"`
	Health          float64   `json:"health"`
	Happiness       float64   `json:"happiness"`
	Level           int       `json:"level"`
	Experience      int       `json:"experience"`
	EvolutionStage  string    `json:"evolution_stage"`
	DaysActive      int       `json:"days_active"`
	LastFed         time.Time `json:"last_fed"`
	LastInteraction time.Time `json:"last_interaction"`
}

// PetRepository provides access to companion pets.
type PetRepository struct {
	db *sql.DB
}

// Pets returns the pet repository for this store.
func (s *Store) Pets() *PetRepository {
	return &PetRepository{db: s.db}
}

const petColumns = `id, user_id, name, personality, health, happiness, level,
	experience, evolution_stage, days_active, last_fed, last_interaction`

func scanPet(row interface{ Scan(...any) error }) (*Pet, error) {
	p := &Pet{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Personality, &p.Health, &p.Happiness,
		&p.Level, &p.Experience, &p.EvolutionStage, &p.DaysActive, &p.LastFed, &p.LastInteraction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Get returns the pet belonging to a user.
func (r *PetRepository) Get(userID int64) (*Pet, error) {
	return scanPet(r.db.QueryRow(
		`SELECT `+petColumns+` FROM pets WHERE user_id = ?`, userID))
}

// StatDelta describes a change applied to a pet's stats. Health and
// happiness deltas may be negative; XP only accumulates.
type StatDelta struct {
	Health    float64
	Happiness float64
	XP        int
}

// UpdateStats applies a delta to the user's pet, clamping health and
// happiness into [0, 100], leveling up every level*100 experience and
// advancing the evolution stage by days active. It returns the updated
// pet and whether it leveled up or evolved.
func (r *PetRepository) UpdateStats(userID int64, d StatDelta) (*Pet, bool, error) {
	pet, err := r.Get(userID)
	if err != nil {
		return nil, false, err
	}

	pet.Health = clampStat(pet.Health + d.Health)
	pet.Happiness = clampStat(pet.Happiness + d.Happiness)
	pet.Experience += d.XP

	leveled := false
	for pet.Experience >= pet.Level*100 {
		pet.Experience -= pet.Level * 100
		pet.Level++
		leveled = true
	}

	now := time.Now().UTC()
	if !now.Truncate(24 * time.Hour).Equal(pet.LastInteraction.UTC().Truncate(24 * time.Hour)) {
		pet.DaysActive++
	}
	pet.LastInteraction = now
	if d.Health > 0 {
		pet.LastFed = now
	}

	if stage := stageFor(pet.DaysActive); stage != pet.EvolutionStage {
		pet.EvolutionStage = stage
		leveled = true
	}

	_, err = r.db.Exec(
		`UPDATE pets SET health = ?, happiness = ?, level = ?, experience = ?,
		   evolution_stage = ?, days_active = ?, last_fed = ?, last_interaction = ?
		 WHERE user_id = ?`,
		pet.Health, pet.Happiness, pet.Level, pet.Experience,
		pet.EvolutionStage, pet.DaysActive, pet.LastFed, pet.LastInteraction,
		userID)
	if err != nil {
		return nil, false, err
	}
	return pet, leveled, nil
}

// Rename changes the pet's name.
func (r *PetRepository) Rename(userID int64, name string) error {
	res, err := r.db.Exec(`UPDATE pets SET name = ? WHERE user_id = ?`, name, userID)
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

// Decay reduces health and happiness for pets whose owner has been
// inactive for more than a day. Intended to run periodically.
func (r *PetRepository) Decay(perDay float64) error {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	_, err := r.db.Exec(
		`UPDATE pets SET
		   health = MAX(0, health - ?),
		   happiness = MAX(0, happiness - ?)
		 WHERE last_interaction < ?`,
		perDay, perDay, cutoff)
	return err
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// stageFor maps days of activity to an evolution stage.
func stageFor(daysActive int) string {
	switch {
	case daysActive >= 66:
		return StageGuardian
	case daysActive >= 21:
		return StageBuddy
	case daysActive >= 7:
		return StageSprout
	default:
		return StageEgg
	}
}
