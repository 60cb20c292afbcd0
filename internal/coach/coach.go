// Package coach turns stretch catalog entries, form analysis results
// and activity history into suggestions, points and progress.
package coach

import (
	"fmt"

	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/form"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/store"
)

// painPointCategories maps the pain points a user can report to stretch
// categories that address them.
var painPointCategories = map[string][]string{
	"neck":       {"neck"},
	"shoulders":  {"shoulder"},
	"upper_back": {"shoulder", "back"},
	"lower_back": {"back"},
	"wrists":     {"wrist"},
	"legs":       {"legs"},
	"hips":       {"legs", "back"},
}

// Coach coordinates stretch suggestions and session rewards.
type Coach struct {
	store    *store.Store
	catalog  *catalog.Catalog
	notifier *notify.Notifier
	cfg      config.Config
}

func New(st *store.Store, cat *catalog.Catalog, notifier *notify.Notifier, cfg config.Config) *Coach {
	return &Coach{
		store:    st,
		catalog:  cat,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Suggest picks up to count stretches for the user, preferring
// categories that match their reported pain points and filling the rest
// at random from their fitness level.
func (c *Coach) Suggest(userID int64, count int) ([]catalog.Stretch, error) {
	if count <= 0 {
		count = 3
	}

	user, err := c.store.Users().GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	seen := make(map[string]bool)
	var out []catalog.Stretch

	for _, pain := range user.PainPoints {
		for _, category := range painPointCategories[pain] {
			for _, s := range c.catalog.ByCategory(category) {
				if len(out) >= count {
					return out, nil
				}
				if seen[s.ID] || !difficultyFits(s.Difficulty, user.FitnessLevel) {
					continue
				}
				seen[s.ID] = true
				out = append(out, s)
			}
		}
	}

	// Bounded attempts so an exhausted difficulty pool cannot spin.
	for attempts := 0; len(out) < count && attempts < 20; attempts++ {
		s, ok := c.catalog.Random(fitnessDifficulty(user.FitnessLevel))
		if !ok {
			break
		}
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, *s)
	}
	return out, nil
}

func difficultyFits(difficulty, fitnessLevel string) bool {
	switch fitnessLevel {
	case "beginner":
		return difficulty == "beginner"
	case "intermediate":
		return difficulty != "advanced"
	default:
		return true
	}
}

// fitnessDifficulty maps a fitness level to the difficulty used for
// random suggestions.
func fitnessDifficulty(fitnessLevel string) string {
	switch fitnessLevel {
	case "intermediate", "advanced":
		return ""
	default:
		return "beginner"
	}
}

// BonusPoints maps a session bonus tier to its point reward.
func (c *Coach) BonusPoints(tier form.BonusTier) int {
	switch tier {
	case form.TierHigh:
		return c.cfg.BonusHigh
	case form.TierMedium:
		return c.cfg.BonusMedium
	case form.TierSmall:
		return c.cfg.BonusSmall
	default:
		return 0
	}
}

// SessionOutcome is the reward for a completed form analysis session.
type SessionOutcome struct {
	Summary      form.Summary        `json:"summary"`
	BasePoints   int                 `json:"base_points"`
	BonusPoints  int                 `json:"bonus_points"`
	TotalPoints  int                 `json:"total_points"`
	Unlocked     []store.Achievement `json:"unlocked_achievements,omitempty"`
	PetLeveledUp bool                `json:"pet_leveled_up"`
}

// CompleteSession awards points for a finished session, records it and
// the stretch activity, and feeds the pet. Base points come from the
// catalog entry when the stretch is known.
func (c *Coach) CompleteSession(userID int64, sum form.Summary) (*SessionOutcome, error) {
	base := c.cfg.PointsPerStretch
	if s, ok := c.catalog.ByID(sum.StretchID); ok {
		base = s.Points
	}
	bonus := c.BonusPoints(sum.Tier)

	err := c.store.Sessions().Create(&store.FormSession{
		UserID:         userID,
		StretchID:      sum.StretchID,
		StretchName:    sum.StretchName,
		Category:       sum.Category,
		FramesAnalyzed: sum.FramesAnalyzed,
		GoodFormFrames: sum.GoodFormFrames,
		Accuracy:       sum.Accuracy,
		BonusTier:      string(sum.Tier),
	})
	if err != nil {
		return nil, fmt.Errorf("recording session: %w", err)
	}

	unlocked, err := c.store.Activities().Log(&store.Activity{
		UserID:       userID,
		Type:         store.ActivityStretch,
		Duration:     int(sum.Duration.Seconds()),
		PointsEarned: base + bonus,
		StretchName:  sum.StretchName,
		FormVerified: true,
	})
	if err != nil {
		return nil, fmt.Errorf("logging stretch: %w", err)
	}

	_, leveled, err := c.store.Pets().UpdateStats(userID, store.StatDelta{
		Happiness: c.cfg.PetHappinessGainPerStretch,
		XP:        c.cfg.PetXPPerActivity,
	})
	if err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	c.notifier.SessionResult(sum.StretchName, sum.Accuracy, bonus)
	for _, a := range unlocked {
		c.notifier.AchievementUnlocked(a.Icon, a.Name, a.Description)
	}

	return &SessionOutcome{
		Summary:      sum,
		BasePoints:   base,
		BonusPoints:  bonus,
		TotalPoints:  base + bonus,
		Unlocked:     unlocked,
		PetLeveledUp: leveled,
	}, nil
}

// RecordStretch logs a stretch done without camera verification. It
// earns the catalog points but no form bonus.
func (c *Coach) RecordStretch(userID int64, stretchID string) (*SessionOutcome, error) {
	s, ok := c.catalog.ByID(stretchID)
	if !ok {
		return nil, fmt.Errorf("unknown stretch %q", stretchID)
	}

	unlocked, err := c.store.Activities().Log(&store.Activity{
		UserID:       userID,
		Type:         store.ActivityStretch,
		Duration:     s.DurationSeconds,
		PointsEarned: s.Points,
		StretchName:  s.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("logging stretch: %w", err)
	}

	_, leveled, err := c.store.Pets().UpdateStats(userID, store.StatDelta{
		Happiness: c.cfg.PetHappinessGainPerStretch,
		XP:        c.cfg.PetXPPerActivity,
	})
	if err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	for _, a := range unlocked {
		c.notifier.AchievementUnlocked(a.Icon, a.Name, a.Description)
	}

	return &SessionOutcome{
		BasePoints:   s.Points,
		TotalPoints:  s.Points,
		Unlocked:     unlocked,
		PetLeveledUp: leveled,
	}, nil
}

// RecordBreakReward feeds the pet after a break. The break activity
// itself is logged by the reminder scheduler.
func (c *Coach) RecordBreakReward(userID int64) error {
	_, _, err := c.store.Pets().UpdateStats(userID, store.StatDelta{
		Health: c.cfg.PetHealthGainPerBreak,
		XP:     c.cfg.PetXPPerActivity,
	})
	return err
}

// Dashboard aggregates the numbers the UI shows on its home screen.
type Dashboard struct {
	User        *store.User          `json:"user"`
	Pet         *store.Pet           `json:"pet"`
	Today       *store.PeriodStats   `json:"today"`
	Week        *store.PeriodStats   `json:"week"`
	Sessions    []*store.FormSession `json:"recent_sessions"`
	GoalReached bool                 `json:"daily_goal_reached"`
}

// DashboardFor assembles the dashboard for a user.
func (c *Coach) DashboardFor(userID int64) (*Dashboard, error) {
	user, err := c.store.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	pet, err := c.store.Pets().Get(userID)
	if err != nil {
		return nil, err
	}
	today, err := c.store.Activities().Stats(userID, 1)
	if err != nil {
		return nil, err
	}
	week, err := c.store.Activities().Stats(userID, 7)
	if err != nil {
		return nil, err
	}
	sessions, err := c.store.Sessions().ListByUser(userID, 5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:        user,
		Pet:         pet,
		Today:       today,
		Week:        week,
		Sessions:    sessions,
		GoalReached: today.Stretches >= user.StretchGoalDaily,
	}, nil
}
