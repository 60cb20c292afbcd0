// Package app wires the camera, pose analysis, sessions and reminders
// into the running Deskwell application.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/renderix/deskwell/internal/capture"
	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/form"
	"github.com/renderix/deskwell/internal/pose"
	"github.com/renderix/deskwell/internal/server/api"
	"github.com/renderix/deskwell/internal/store"
)

// App orchestrates the analysis pipeline and implements the session
// control surface the HTTP API exposes.
type App struct {
	cfg      config.Config
	store    *store.Store
	catalog  *catalog.Catalog
	coach    *coach.Coach
	camera   capture.Camera
	presence *capture.PresenceMonitor
	analyzer *form.Analyzer

	mu       sync.RWMutex
	sessions map[int64]*form.Session
	enabled  bool
	stopCh   chan struct{}

	frameMu    sync.RWMutex
	latestJPEG []byte
}

// New creates the application. MediaPipe is used for pose extraction
// when available, otherwise the mock detector keeps the rest of the
// app usable without it.
func New(cfg config.Config, st *store.Store, cat *catalog.Catalog, c *coach.Coach) *App {
	a := &App{
		cfg:      cfg,
		store:    st,
		catalog:  cat,
		coach:    c,
		camera:   capture.NewCamera(cfg.CameraID),
		presence: capture.NewPresenceMonitor(capture.DefaultPresenceThreshold, capture.DefaultAwayAfter),
		sessions: make(map[int64]*form.Session),
		enabled:  true,
	}

	var detector pose.Detector
	if mp, err := pose.NewMediaPipeDetector(pose.DefaultConfig()); err == nil {
		detector = mp
		log.Println("Using MediaPipe pose extraction")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		detector = pose.NewMockDetector()
	}
	a.analyzer = form.NewAnalyzer(detector)

	return a
}

// SetCamera replaces the camera. Intended for tests and for running
// against recorded footage.
func (a *App) SetCamera(cam capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = cam
}

// SetAnalyzer replaces the form analyzer. Intended for tests.
func (a *App) SetAnalyzer(an *form.Analyzer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyzer = an
}

// SetEnabled pauses or resumes camera monitoring.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether monitoring is active.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Presence returns the desk presence monitor, for reminder wiring.
func (a *App) Presence() *capture.PresenceMonitor {
	return a.presence
}

// Start opens the camera and launches the analysis pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("opening camera: %w", err)
	}
	a.camera.SetFPS(capture.DefaultFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Analysis pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.presence.Close()
	if err := a.analyzer.Close(); err != nil {
		log.Printf("Error closing analyzer: %v", err)
	}

	log.Println("Analysis pipeline stopped")
}

// sessionFor returns the user's session, creating an idle one on first
// use.
func (a *App) sessionFor(userID int64) *form.Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.sessions[userID]; ok {
		return s
	}
	s := form.NewSession(a.analyzer, form.Config{
		GoodFrameScore: a.cfg.GoodFrameScore,
		MinFrames:      a.cfg.MinSessionFrames,
	})
	a.sessions[userID] = s
	return s
}

// StartSession begins a camera-verified session for the given stretch.
func (a *App) StartSession(userID int64, stretchID string) error {
	stretch, ok := a.catalog.ByID(stretchID)
	if !ok {
		return fmt.Errorf("unknown stretch %q", stretchID)
	}

	session := a.sessionFor(userID)
	cat := form.ParseCategory(stretch.Category)
	if err := session.Start(stretch.ID, stretch.Name, cat); err != nil {
		return err
	}

	a.camera.SetFPS(capture.SessionFPS)
	log.Printf("Session started: user %d, stretch %s (%s)", userID, stretch.Name, cat)
	return nil
}

// SessionStatus returns the live state of the user's session.
func (a *App) SessionStatus(userID int64) (*api.SessionStatus, error) {
	report, stretchID, active := a.sessionFor(userID).State()
	return &api.SessionStatus{
		Active:    active,
		StretchID: stretchID,
		Report:    report,
	}, nil
}

// CompleteSession finishes the user's session and awards points through
// the coach.
func (a *App) CompleteSession(userID int64) (*coach.SessionOutcome, error) {
	summary, err := a.sessionFor(userID).Complete()
	if err != nil {
		return nil, err
	}
	a.settleCameraFPS()

	outcome, err := a.coach.CompleteSession(userID, summary)
	if err != nil {
		return nil, err
	}
	log.Printf("Session complete: user %d, %s, %.1f%% accuracy, tier %s",
		userID, summary.StretchName, summary.Accuracy, summary.Tier)
	return outcome, nil
}

// AbandonSession discards the user's session without scoring.
func (a *App) AbandonSession(userID int64) error {
	session := a.sessionFor(userID)
	if !session.Active() {
		return form.ErrNoSession
	}
	session.Abandon()
	a.settleCameraFPS()
	return nil
}

// settleCameraFPS drops back to the idle rate once no session is
// active.
func (a *App) settleCameraFPS() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, s := range a.sessions {
		if s.Active() {
			return
		}
	}
	a.camera.SetFPS(capture.DefaultFPS)
}

// activeSessions snapshots the sessions currently running.
func (a *App) activeSessions() []*form.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var active []*form.Session
	for _, s := range a.sessions {
		if s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// LatestJPEG returns the most recently published preview frame.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	if a.latestJPEG == nil {
		return nil, false
	}
	return a.latestJPEG, true
}

func (a *App) publishJPEG(buf []byte) {
	a.frameMu.Lock()
	a.latestJPEG = buf
	a.frameMu.Unlock()
}
