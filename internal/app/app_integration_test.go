package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/renderix/deskwell/internal/capture"
	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/form"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/pose"
	"github.com/renderix/deskwell/internal/store"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	cfg := config.Config{
		PointsPerStretch:           20,
		BonusHigh:                  30,
		BonusMedium:                20,
		BonusSmall:                 10,
		PetHappinessGainPerStretch: 15,
		PetXPPerActivity:           20,
		GoodFrameScore:             70,
		MinSessionFrames:           5,
	}
	c := coach.New(s, cat, notify.New(false), cfg)

	return New(cfg, s, cat, c), s
}

func TestApp_SessionPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	application, s := newTestApp(t)

	user := &store.User{Username: "robin"}
	if err := s.Users().Create(user); err != nil {
		t.Fatalf("create user error = %v", err)
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	application.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mockDetector := pose.NewMockDetector()
	mockDetector.SetLandmarks(pose.NeckStretchLandmarks())
	application.SetAnalyzer(form.NewAnalyzer(mockDetector))

	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	if err := application.StartSession(user.ID, "neck-side-stretch"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Starting again while active must fail
	if err := application.StartSession(user.ID, "chin-tuck"); !errors.Is(err, form.ErrSessionActive) {
		t.Errorf("second StartSession() error = %v, want ErrSessionActive", err)
	}

	// Wait for the pipeline to feed enough frames
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status, err := application.SessionStatus(user.ID)
		if err != nil {
			t.Fatalf("SessionStatus() error = %v", err)
		}
		if status.Report.FramesAnalyzed >= 10 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	status, _ := application.SessionStatus(user.ID)
	if !status.Active {
		t.Fatal("session should be active")
	}
	if status.Report.FramesAnalyzed < 10 {
		t.Fatalf("frames analyzed = %d, want >= 10", status.Report.FramesAnalyzed)
	}
	if status.Report.GoodFormFrames == 0 {
		t.Error("expected good form frames from the neck stretch landmarks")
	}

	outcome, err := application.CompleteSession(user.ID)
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if outcome.BasePoints == 0 {
		t.Error("expected base points for the completed session")
	}
	if outcome.Summary.StretchID != "neck-side-stretch" {
		t.Errorf("stretch id = %s, want neck-side-stretch", outcome.Summary.StretchID)
	}

	// A preview frame should have been published for the MJPEG stream
	if buf, ok := application.LatestJPEG(); !ok || len(buf) == 0 {
		t.Error("expected a published preview frame")
	}
}

func TestApp_SessionErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	application, s := newTestApp(t)

	user := &store.User{Username: "alex"}
	if err := s.Users().Create(user); err != nil {
		t.Fatalf("create user error = %v", err)
	}

	application.SetAnalyzer(form.NewAnalyzer(pose.NewMockDetector()))

	t.Run("unknown stretch", func(t *testing.T) {
		if err := application.StartSession(user.ID, "no-such-stretch"); err == nil {
			t.Error("expected error for unknown stretch")
		}
	})

	t.Run("complete without session", func(t *testing.T) {
		if _, err := application.CompleteSession(user.ID); !errors.Is(err, form.ErrNoSession) {
			t.Errorf("CompleteSession() error = %v, want ErrNoSession", err)
		}
	})

	t.Run("abandon without session", func(t *testing.T) {
		if err := application.AbandonSession(user.ID); !errors.Is(err, form.ErrNoSession) {
			t.Errorf("AbandonSession() error = %v, want ErrNoSession", err)
		}
	})
}

func TestApp_EnableDisable(t *testing.T) {
	application, _ := newTestApp(t)

	if !application.IsEnabled() {
		t.Error("app should start enabled")
	}

	application.SetEnabled(false)
	if application.IsEnabled() {
		t.Error("app should be disabled")
	}

	application.SetEnabled(true)
	if !application.IsEnabled() {
		t.Error("app should be enabled again")
	}
}

func TestApp_FPSSwitching(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	application, s := newTestApp(t)

	user := &store.User{Username: "jo"}
	if err := s.Users().Create(user); err != nil {
		t.Fatalf("create user error = %v", err)
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	application.SetCamera(cam)
	application.SetAnalyzer(form.NewAnalyzer(pose.NewMockDetector()))

	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	if cam.FPS() != capture.DefaultFPS {
		t.Errorf("idle fps = %d, want %d", cam.FPS(), capture.DefaultFPS)
	}

	if err := application.StartSession(user.ID, "chin-tuck"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if cam.FPS() != capture.SessionFPS {
		t.Errorf("session fps = %d, want %d", cam.FPS(), capture.SessionFPS)
	}

	if err := application.AbandonSession(user.ID); err != nil {
		t.Fatalf("AbandonSession() error = %v", err)
	}
	if cam.FPS() != capture.DefaultFPS {
		t.Errorf("fps after abandon = %d, want %d", cam.FPS(), capture.DefaultFPS)
	}
}
