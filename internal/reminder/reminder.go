// Package reminder schedules break reminders based on the user's
// activity history and desk presence.
package reminder

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/store"
)

// checkEvery is how often the scheduler re-evaluates whether a reminder
// is due. Reminders fire on interval boundaries, not on the tick itself.
const checkEvery = time.Minute

// PresenceChecker reports whether the user is at the desk. Reminders
// are suppressed while the user is away.
type PresenceChecker interface {
	Present() bool
}

// alwaysPresent is used when no camera-based presence source exists.
type alwaysPresent struct{}

func (alwaysPresent) Present() bool { return true }

// NudgeSource writes the reminder copy. An empty string means the
// source has nothing to offer and the stock message is used. The AI
// companion implements it.
type NudgeSource interface {
	BreakNudge(ctx context.Context, userID int64) string
}

// Scheduler triggers a break reminder when the interval since the last
// break has elapsed.
type Scheduler struct {
	store    *store.Store
	notifier *notify.Notifier
	presence PresenceChecker
	nudges   NudgeSource

	mu       sync.Mutex
	userID   int64
	interval time.Duration
	lastSent time.Time
	running  bool
	stopCh   chan struct{}
}

// New creates a scheduler for one user. presence may be nil, in which
// case the user is assumed present.
func New(st *store.Store, notifier *notify.Notifier, presence PresenceChecker, userID int64, intervalMinutes int) *Scheduler {
	if presence == nil {
		presence = alwaysPresent{}
	}
	return &Scheduler{
		store:    st,
		notifier: notifier,
		presence: presence,
		userID:   userID,
		interval: time.Duration(config.ClampBreakInterval(intervalMinutes)) * time.Minute,
	}
}

// Start launches the reminder loop. Stop must be called to release it.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
}

// Stop halts the reminder loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *Scheduler) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	due, err := s.Due()
	if err != nil {
		log.Printf("reminder: checking due: %v", err)
		return
	}
	if !due {
		return
	}
	if !s.presence.Present() {
		return
	}

	s.mu.Lock()
	interval := s.interval
	userID := s.userID
	nudges := s.nudges
	s.lastSent = time.Now()
	s.mu.Unlock()

	if nudges != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg := nudges.BreakNudge(ctx, userID)
		cancel()
		if msg != "" {
			s.notifier.BreakNudge(msg)
			return
		}
	}
	s.notifier.BreakReminder(int(interval.Minutes()))
}

// SetNudgeSource installs a writer for reminder copy. Pass nil to go
// back to the stock message.
func (s *Scheduler) SetNudgeSource(n NudgeSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nudges = n
}

// Due reports whether the break interval has elapsed since the user's
// last break. A reminder already sent inside the current interval
// window is not repeated.
func (s *Scheduler) Due() (bool, error) {
	s.mu.Lock()
	interval := s.interval
	lastSent := s.lastSent
	userID := s.userID
	s.mu.Unlock()

	if !lastSent.IsZero() && time.Since(lastSent) < interval {
		return false, nil
	}

	last, err := s.store.Activities().Latest(userID, store.ActivityBreak)
	if errors.Is(err, store.ErrNotFound) {
		// Never taken a break. Fall back to account activity so a brand
		// new user is not nagged immediately.
		user, err := s.store.Users().GetByID(userID)
		if err != nil {
			return false, err
		}
		return time.Since(user.LastActive) >= interval, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(last.Timestamp) >= interval, nil
}

// RecordBreak logs a completed break and resets the reminder window.
// It returns any achievements the break unlocked.
func (s *Scheduler) RecordBreak(durationSeconds, points int) ([]store.Achievement, error) {
	unlocked, err := s.store.Activities().Log(&store.Activity{
		UserID:       s.userID,
		Type:         store.ActivityBreak,
		Duration:     durationSeconds,
		PointsEarned: points,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastSent = time.Time{}
	s.mu.Unlock()
	return unlocked, nil
}

// SetInterval changes the reminder interval, clamped to the supported
// range, and persists it to the user's profile.
func (s *Scheduler) SetInterval(minutes int) error {
	clamped := config.ClampBreakInterval(minutes)

	if err := s.store.Users().SetBreakInterval(s.userID, clamped); err != nil {
		return err
	}

	s.mu.Lock()
	s.interval = time.Duration(clamped) * time.Minute
	s.mu.Unlock()
	return nil
}

// Interval returns the current reminder interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
