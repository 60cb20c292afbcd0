package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Presence detection constants.
const (
	// blurKernelSize is the Gaussian blur kernel size used to suppress
	// sensor noise before differencing.
	blurKernelSize = 21
	// diffThreshold is the per-pixel binary threshold on the frame
	// difference.
	diffThreshold = 25
	// DefaultPresenceThreshold is the percentage of changed pixels that
	// counts as someone moving at the desk.
	DefaultPresenceThreshold = 1.0
	// DefaultAwayAfter is how long without motion before the user is
	// considered away from the desk.
	DefaultAwayAfter = 3 * time.Minute
)

// PresenceMonitor tracks whether someone is at the desk by frame
// differencing. Break reminders are suppressed while the user is away,
// since there is no one to remind.
type PresenceMonitor struct {
	threshold  float64
	awayAfter  time.Duration
	prevGray   gocv.Mat
	hasBase    bool
	lastMotion time.Time
	mu         sync.Mutex
}

// NewPresenceMonitor creates a monitor. threshold is the percentage of
// pixels that must change between frames to register motion; awayAfter
// is the no-motion duration after which Present reports false.
func NewPresenceMonitor(threshold float64, awayAfter time.Duration) *PresenceMonitor {
	if threshold <= 0 {
		threshold = DefaultPresenceThreshold
	}
	if awayAfter <= 0 {
		awayAfter = DefaultAwayAfter
	}
	return &PresenceMonitor{
		threshold: threshold,
		awayAfter: awayAfter,
		prevGray:  gocv.NewMat(),
	}
}

// Observe compares a frame against the previous one and reports whether
// motion was seen and what percentage of pixels changed. The first frame
// only establishes the baseline.
func (m *PresenceMonitor) Observe(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernelSize, Y: blurKernelSize}, 0, 0, gocv.BorderDefault)

	if !m.hasBase {
		blurred.CopyTo(&m.prevGray)
		m.hasBase = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&m.prevGray)

	moved := changePercent > m.threshold
	if moved {
		m.lastMotion = time.Now()
	}
	return moved, changePercent
}

// Present reports whether motion was seen within the away window.
func (m *PresenceMonitor) Present() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastMotion.IsZero() {
		return false
	}
	return time.Since(m.lastMotion) < m.awayAfter
}

// LastMotion returns when motion was last observed. The zero time means
// no motion has been seen yet.
func (m *PresenceMonitor) LastMotion() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMotion
}

// SetThreshold adjusts the motion threshold. Non-positive values are
// ignored.
func (m *PresenceMonitor) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Reset clears the baseline so the next frame starts fresh.
func (m *PresenceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.hasBase = false
	m.lastMotion = time.Time{}
}

// Close releases the monitor's resources.
func (m *PresenceMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.hasBase = false
}
