package store

import (
	"errors"
	"testing"
	"time"
)

func createActivityUser(t *testing.T, s *Store) *User {
	t.Helper()
	u := &User{Username: "tester"}
	if err := s.Users().Create(u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestActivityRepository_LogUpdatesStats(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	_, err := s.Activities().Log(&Activity{
		UserID:       u.ID,
		Type:         ActivityStretch,
		PointsEarned: 20,
		StretchName:  "Neck Side Stretch",
		FormVerified: true,
		Duration:     30,
	})
	if err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	_, err = s.Activities().Log(&Activity{
		UserID:       u.ID,
		Type:         ActivityBreak,
		PointsEarned: 10,
	})
	if err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	got, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.TotalStretchesCompleted != 1 {
		t.Errorf("expected 1 stretch completed, got %d", got.TotalStretchesCompleted)
	}
	if got.TotalBreaksTaken != 1 {
		t.Errorf("expected 1 break taken, got %d", got.TotalBreaksTaken)
	}
	// 20 + 10 activity points plus the first_stretch (10) and
	// first_break (10) achievement rewards.
	if got.TotalPoints != 50 {
		t.Errorf("expected 50 total points, got %d", got.TotalPoints)
	}
}

func TestActivityRepository_StreakSameDay(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	for i := 0; i < 3; i++ {
		if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak}); err != nil {
			t.Fatalf("failed to log activity: %v", err)
		}
	}

	got, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.CurrentStreak != 1 {
		t.Errorf("expected streak 1 after same-day activities, got %d", got.CurrentStreak)
	}
}

func TestActivityRepository_StreakConsecutiveDays(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	// Backdate the user so the previous activity day is yesterday.
	day1 := time.Now().UTC().AddDate(0, 0, -1)
	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak, Timestamp: day1}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}
	if _, err := s.DB().Exec(`UPDATE users SET last_active = ? WHERE id = ?`, day1, u.ID); err != nil {
		t.Fatalf("failed to backdate user: %v", err)
	}

	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	got, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.CurrentStreak != 2 {
		t.Errorf("expected streak 2 after consecutive days, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", got.LongestStreak)
	}
}

func TestActivityRepository_StreakResetsAfterGap(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	threeDaysAgo := time.Now().UTC().AddDate(0, 0, -3)
	if _, err := s.DB().Exec(
		`UPDATE users SET last_active = ?, current_streak = 5, longest_streak = 5 WHERE id = ?`,
		threeDaysAgo, u.ID); err != nil {
		t.Fatalf("failed to seed user streak: %v", err)
	}

	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	got, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.CurrentStreak != 1 {
		t.Errorf("expected streak reset to 1 after gap, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 5 {
		t.Errorf("expected longest streak preserved at 5, got %d", got.LongestStreak)
	}
}

func TestActivityRepository_UnlocksAchievements(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	unlocked, err := s.Activities().Log(&Activity{
		UserID:       u.ID,
		Type:         ActivityStretch,
		PointsEarned: 20,
	})
	if err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	found := false
	for _, a := range unlocked {
		if a.Key == "first_stretch" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected first_stretch among unlocked achievements, got %v", unlocked)
	}

	// Logging another stretch must not unlock the same achievement twice.
	unlocked, err = s.Activities().Log(&Activity{
		UserID:       u.ID,
		Type:         ActivityStretch,
		PointsEarned: 20,
	})
	if err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}
	for _, a := range unlocked {
		if a.Key == "first_stretch" {
			t.Error("first_stretch unlocked twice")
		}
	}
}

func TestActivityRepository_ListFilters(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	for i := 0; i < 3; i++ {
		if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityStretch}); err != nil {
			t.Fatalf("failed to log activity: %v", err)
		}
	}
	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	all, err := s.Activities().List(u.ID, "", 0, 0)
	if err != nil {
		t.Fatalf("failed to list activities: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 activities, got %d", len(all))
	}

	stretches, err := s.Activities().List(u.ID, ActivityStretch, 0, 0)
	if err != nil {
		t.Fatalf("failed to list stretches: %v", err)
	}
	if len(stretches) != 3 {
		t.Errorf("expected 3 stretch activities, got %d", len(stretches))
	}

	limited, err := s.Activities().List(u.ID, "", 0, 2)
	if err != nil {
		t.Fatalf("failed to list with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 activities with limit, got %d", len(limited))
	}
}

func TestActivityRepository_Latest(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	if _, err := s.Activities().Latest(u.ID, ActivityBreak); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no breaks, got %v", err)
	}

	earlier := time.Now().UTC().Add(-2 * time.Hour)
	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak, Timestamp: earlier}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}
	if _, err := s.Activities().Log(&Activity{UserID: u.ID, Type: ActivityBreak}); err != nil {
		t.Fatalf("failed to log activity: %v", err)
	}

	latest, err := s.Activities().Latest(u.ID, ActivityBreak)
	if err != nil {
		t.Fatalf("failed to get latest break: %v", err)
	}
	if latest.Timestamp.Before(earlier.Add(time.Hour)) {
		t.Error("expected most recent break, got an older one")
	}
}

func TestActivityRepository_Stats(t *testing.T) {
	s := newTestStore(t)
	u := createActivityUser(t, s)

	activities := []*Activity{
		{UserID: u.ID, Type: ActivityStretch, PointsEarned: 20},
		{UserID: u.ID, Type: ActivityBreak, PointsEarned: 10},
		{UserID: u.ID, Type: ActivityChat, PointsEarned: 5},
		{UserID: u.ID, Type: ActivityMoodCheck, MoodRating: 8, StressLevel: 4},
		{UserID: u.ID, Type: ActivityMoodCheck, MoodRating: 6, StressLevel: 6},
	}
	for _, a := range activities {
		if _, err := s.Activities().Log(a); err != nil {
			t.Fatalf("failed to log activity: %v", err)
		}
	}

	stats, err := s.Activities().Stats(u.ID, 7)
	if err != nil {
		t.Fatalf("failed to compute stats: %v", err)
	}
	if stats.TotalActivities != 5 {
		t.Errorf("expected 5 total activities, got %d", stats.TotalActivities)
	}
	if stats.Stretches != 1 || stats.Breaks != 1 || stats.Chats != 1 {
		t.Errorf("unexpected per-type counts: %+v", stats)
	}
	if stats.PointsEarned != 35 {
		t.Errorf("expected 35 points earned, got %d", stats.PointsEarned)
	}
	if stats.AverageMood != 7 {
		t.Errorf("expected average mood 7, got %v", stats.AverageMood)
	}
	if stats.AverageStress != 5 {
		t.Errorf("expected average stress 5, got %v", stats.AverageStress)
	}
}
