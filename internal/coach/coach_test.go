package coach

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/form"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/store"
)

func newTestCoach(t *testing.T) (*Coach, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	cfg := config.Config{
		PointsPerStretch:           20,
		BonusHigh:                  30,
		BonusMedium:                20,
		BonusSmall:                 10,
		PetHealthGainPerBreak:      10,
		PetHappinessGainPerStretch: 15,
		PetXPPerActivity:           20,
	}
	return New(s, cat, notify.New(false), cfg), s
}

func createCoachUser(t *testing.T, s *store.Store, painPoints []string) *store.User {
	t.Helper()
	u := &store.User{Username: "coachee", PainPoints: painPoints}
	if err := s.Users().Create(u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestCoach_SuggestPrefersPainPoints(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, []string{"neck"})

	suggestions, err := c.Suggest(u.ID, 2)
	if err != nil {
		t.Fatalf("failed to suggest: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].Category != "neck" {
		t.Errorf("expected first suggestion for neck pain, got category %q", suggestions[0].Category)
	}
}

func TestCoach_SuggestFillsWithoutPainPoints(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, nil)

	suggestions, err := c.Suggest(u.ID, 3)
	if err != nil {
		t.Fatalf("failed to suggest: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}

	seen := make(map[string]bool)
	for _, s := range suggestions {
		if seen[s.ID] {
			t.Errorf("duplicate suggestion %q", s.ID)
		}
		seen[s.ID] = true
		// A beginner only gets beginner stretches.
		if s.Difficulty != "beginner" {
			t.Errorf("beginner got %q difficulty stretch %q", s.Difficulty, s.ID)
		}
	}
}

func TestCoach_BonusPoints(t *testing.T) {
	c, _ := newTestCoach(t)

	cases := []struct {
		tier form.BonusTier
		want int
	}{
		{form.TierHigh, 30},
		{form.TierMedium, 20},
		{form.TierSmall, 10},
		{form.TierNone, 0},
	}
	for _, tc := range cases {
		if got := c.BonusPoints(tc.tier); got != tc.want {
			t.Errorf("BonusPoints(%s) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestCoach_CompleteSession(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, nil)

	sum := form.Summary{
		StretchID:      "neck-side-stretch",
		StretchName:    "Neck Side Stretch",
		Category:       form.CategoryNeck.String(),
		FramesAnalyzed: 30,
		GoodFormFrames: 28,
		Accuracy:       93.3,
		Tier:           form.TierHigh,
		Duration:       45 * time.Second,
	}

	outcome, err := c.CompleteSession(u.ID, sum)
	if err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}

	if outcome.BonusPoints != 30 {
		t.Errorf("expected 30 bonus points for high tier, got %d", outcome.BonusPoints)
	}
	if outcome.BasePoints == 0 {
		t.Error("expected base points from catalog entry")
	}
	if outcome.TotalPoints != outcome.BasePoints+outcome.BonusPoints {
		t.Errorf("total points %d != base %d + bonus %d",
			outcome.TotalPoints, outcome.BasePoints, outcome.BonusPoints)
	}

	// First stretch unlocks the first_stretch achievement.
	found := false
	for _, a := range outcome.Unlocked {
		if a.Key == "first_stretch" {
			found = true
		}
	}
	if !found {
		t.Error("expected first_stretch among unlocked achievements")
	}

	// The session record is persisted.
	sessions, err := s.Sessions().ListByUser(u.ID, 0)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 persisted session, got %d", len(sessions))
	}
	if sessions[0].BonusTier != "high" {
		t.Errorf("expected persisted tier high, got %q", sessions[0].BonusTier)
	}

	// The stretch activity counts toward user stats.
	user, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user.TotalStretchesCompleted != 1 {
		t.Errorf("expected 1 stretch completed, got %d", user.TotalStretchesCompleted)
	}

	// The pet gains happiness and XP.
	pet, err := s.Pets().Get(u.ID)
	if err != nil {
		t.Fatalf("failed to get pet: %v", err)
	}
	if pet.Experience != 20 {
		t.Errorf("expected pet XP 20, got %d", pet.Experience)
	}
}

func TestCoach_RecordStretch(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, nil)

	outcome, err := c.RecordStretch(u.ID, "shoulder-rolls")
	if err != nil {
		t.Fatalf("failed to record stretch: %v", err)
	}
	if outcome.BonusPoints != 0 {
		t.Errorf("unverified stretch should earn no bonus, got %d", outcome.BonusPoints)
	}
	if outcome.BasePoints == 0 {
		t.Error("expected catalog base points")
	}

	activities, err := s.Activities().List(u.ID, store.ActivityStretch, 0, 0)
	if err != nil {
		t.Fatalf("failed to list activities: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}
	if activities[0].FormVerified {
		t.Error("manual stretch should not be form verified")
	}

	if _, err := c.RecordStretch(u.ID, "no-such-stretch"); err == nil {
		t.Error("expected error for unknown stretch")
	}
}

func TestCoach_RecordBreakReward(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, nil)

	if _, err := s.DB().Exec(`UPDATE pets SET health = 50 WHERE user_id = ?`, u.ID); err != nil {
		t.Fatalf("failed to seed pet health: %v", err)
	}

	if err := c.RecordBreakReward(u.ID); err != nil {
		t.Fatalf("failed to record break reward: %v", err)
	}

	pet, err := s.Pets().Get(u.ID)
	if err != nil {
		t.Fatalf("failed to get pet: %v", err)
	}
	if pet.Health != 60 {
		t.Errorf("expected pet health 60 after break, got %v", pet.Health)
	}
}

func TestCoach_DashboardFor(t *testing.T) {
	c, s := newTestCoach(t)
	u := createCoachUser(t, s, nil)

	if _, err := c.RecordStretch(u.ID, "chin-tuck"); err != nil {
		t.Fatalf("failed to record stretch: %v", err)
	}

	dash, err := c.DashboardFor(u.ID)
	if err != nil {
		t.Fatalf("failed to build dashboard: %v", err)
	}
	if dash.User.ID != u.ID {
		t.Errorf("dashboard user mismatch")
	}
	if dash.Pet == nil {
		t.Fatal("expected pet on dashboard")
	}
	if dash.Today.Stretches != 1 {
		t.Errorf("expected 1 stretch today, got %d", dash.Today.Stretches)
	}
	if dash.GoalReached {
		t.Error("one stretch should not reach the default goal of 5")
	}
}
