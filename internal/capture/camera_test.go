package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewCamera(t *testing.T) {
	cam := NewCamera(0)
	if cam == nil {
		t.Fatal("NewCamera returned nil")
	}
	if cam.IsOpen() {
		t.Error("camera should not be open before Open")
	}
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS = %d, want %d", cam.FPS(), DefaultFPS)
	}
}

func TestCamera_ReadFrameBeforeOpen(t *testing.T) {
	cam := NewCamera(0)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	cam.SetFPS(SessionFPS)
	if cam.FPS() != SessionFPS {
		t.Errorf("FPS = %d, want %d", cam.FPS(), SessionFPS)
	}

	cam.SetFPS(0)
	if cam.FPS() != SessionFPS {
		t.Errorf("zero FPS should be ignored, got %d", cam.FPS())
	}
	cam.SetFPS(-5)
	if cam.FPS() != SessionFPS {
		t.Errorf("negative FPS should be ignored, got %d", cam.FPS())
	}
}

func TestCamera_CloseWithoutOpen(t *testing.T) {
	cam := NewCamera(0)
	if err := cam.Close(); err != nil {
		t.Errorf("closing an unopened camera should succeed, got %v", err)
	}
}

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame, &frame}, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("expected ErrCameraNotOpen before Open, got %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		got, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		got.Close()
	}

	// Sequence exhausted and not looping.
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error after sequence end")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	defer cam.Close()

	for i := 0; i < 5; i++ {
		got, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("looping read %d failed: %v", i, err)
		}
		got.Close()
	}
}

func TestMockCamera_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	defer cam.Close()

	got, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	got.Close()

	cam.Reset()
	got, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("read after reset failed: %v", err)
	}
	got.Close()
}
