package pose

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	landmarks *Landmarks
	err       error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
// Passing nil simulates a frame with no detectable pose.
func (m *MockDetector) SetLandmarks(lm *Landmarks) {
	m.landmarks = lm
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Landmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// UprightLandmarks returns a preset landmark set for a person standing
// upright facing the camera, head centered over the shoulders.
// Neck tilt is 0 px, hips are near-straight (~173 degrees).
func UprightLandmarks() *Landmarks {
	return &Landmarks{
		Score: 0.95,
		Points: map[string]Point{
			Nose:          {X: 320, Y: 100},
			LeftShoulder:  {X: 270, Y: 160},
			RightShoulder: {X: 370, Y: 160},
			LeftElbow:     {X: 255, Y: 230},
			RightElbow:    {X: 385, Y: 230},
			LeftWrist:     {X: 250, Y: 300},
			RightWrist:    {X: 390, Y: 300},
			LeftHip:       {X: 285, Y: 300},
			RightHip:      {X: 355, Y: 300},
			LeftKnee:      {X: 283, Y: 390},
			RightKnee:     {X: 357, Y: 390},
			LeftAnkle:     {X: 282, Y: 460},
			RightAnkle:    {X: 358, Y: 460},
		},
	}
}

// NeckStretchLandmarks returns a preset landmark set for a deep lateral
// neck stretch: the nose sits 45 px off the shoulder midpoint.
func NeckStretchLandmarks() *Landmarks {
	lm := UprightLandmarks()
	lm.Points[Nose] = Point{X: 275, Y: 105}
	return lm
}

// ShouldersRaisedLandmarks returns a preset landmark set with both arms
// raised, putting both shoulder angles well above 60 degrees.
func ShouldersRaisedLandmarks() *Landmarks {
	lm := UprightLandmarks()
	lm.Points[LeftElbow] = Point{X: 200, Y: 120}
	lm.Points[RightElbow] = Point{X: 440, Y: 120}
	lm.Points[LeftWrist] = Point{X: 170, Y: 60}
	lm.Points[RightWrist] = Point{X: 470, Y: 60}
	return lm
}

// ForwardBendLandmarks returns a preset landmark set for a seated forward
// bend: shoulders dropped toward the knees, average hip angle under 90
// degrees.
func ForwardBendLandmarks() *Landmarks {
	lm := UprightLandmarks()
	lm.Points[Nose] = Point{X: 180, Y: 340}
	lm.Points[LeftShoulder] = Point{X: 200, Y: 330}
	lm.Points[RightShoulder] = Point{X: 230, Y: 330}
	lm.Points[LeftElbow] = Point{X: 190, Y: 370}
	lm.Points[RightElbow] = Point{X: 235, Y: 370}
	lm.Points[LeftWrist] = Point{X: 200, Y: 420}
	lm.Points[RightWrist] = Point{X: 245, Y: 420}
	return lm
}
