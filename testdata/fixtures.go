// Package testdata generates synthetic camera frames for tests. Frames
// are built with gocv drawing primitives rather than embedded images so
// tests stay deterministic and the repository stays small.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame dimensions match the capture package defaults.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// SolidFrame returns a single-color BGR frame. The caller owns the Mat
// and must Close it.
func SolidFrame(b, g, r uint8) gocv.Mat {
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(float64(b), float64(g), float64(r), 0))
	return mat
}

// SeatedFigureFrame draws a rough seated silhouette: a head circle over
// a torso rectangle, offset horizontally by dx. Useful for presence
// detection tests where successive frames need to differ.
func SeatedFigureFrame(dx int) gocv.Mat {
	mat := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(40, 40, 40, 0))

	fg := color.RGBA{R: 220, G: 200, B: 180, A: 0}
	cx := FrameWidth/2 + dx

	gocv.Circle(&mat, image.Pt(cx, 140), 50, fg, -1)
	gocv.Rectangle(&mat, image.Rect(cx-80, 190, cx+80, 420), fg, -1)

	return mat
}

// MotionSequence returns n frames of the seated figure shifting right by
// step pixels per frame. The caller must Close every Mat.
func MotionSequence(n, step int) []gocv.Mat {
	frames := make([]gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, SeatedFigureFrame(i*step))
	}
	return frames
}

// StillSequence returns n identical frames, as from an empty desk.
func StillSequence(n int) []gocv.Mat {
	frames := make([]gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, SolidFrame(40, 40, 40))
	}
	return frames
}

// CloseAll releases a slice of frames.
func CloseAll(frames []gocv.Mat) {
	for i := range frames {
		frames[i].Close()
	}
}
