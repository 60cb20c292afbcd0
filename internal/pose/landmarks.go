// Package pose provides body pose extraction interfaces and types for
// stretch form analysis.
package pose

import "math"

// Body landmark names following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = "nose"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// LandmarkNames lists every landmark a detector is expected to report.
var LandmarkNames = []string{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// Point represents a 2D pixel coordinate in a frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks maps landmark names to pixel coordinates for a single frame.
// A Landmarks value is produced fresh per frame and carries no identity
// across frames.
type Landmarks struct {
	Points map[string]Point `json:"points"`
	Score  float64          `json:"score"`
}

// Point returns the coordinate for the named landmark.
// Missing landmarks report ok=false.
func (l *Landmarks) Point(name string) (Point, bool) {
	if l == nil || l.Points == nil {
		return Point{}, false
	}
	p, ok := l.Points[name]
	return p, ok
}

// Angles holds the joint angles derived from a landmark set.
// All fields are degrees in [0, 180] except NeckTiltPX, which is the
// absolute horizontal pixel distance between the nose and the shoulder
// midpoint. It is a distance proxy for lateral head tilt, not an angle,
// and is named with a PX suffix so the unit cannot be misread downstream.
type Angles struct {
	LeftElbow     float64 `json:"left_elbow"`
	RightElbow    float64 `json:"right_elbow"`
	LeftShoulder  float64 `json:"left_shoulder"`
	RightShoulder float64 `json:"right_shoulder"`
	LeftHip       float64 `json:"left_hip"`
	RightHip      float64 `json:"right_hip"`
	LeftKnee      float64 `json:"left_knee"`
	RightKnee     float64 `json:"right_knee"`
	NeckTiltPX    float64 `json:"neck_tilt_px"`
}

// AngleAt computes the angle in degrees at vertex v formed by points a and b
// using the dot-product law of cosines. The cosine is clamped to [-1, 1]
// before the arccos to guard against floating-point drift.
//
// Degenerate case: if either vector has zero magnitude (coincident points),
// the angle is defined as 0 rather than failing. Landmark estimates are
// noisy and occasionally collapse onto each other.
func AngleAt(a, v, b Point) float64 {
	v1 := Point{X: a.X - v.X, Y: a.Y - v.Y}
	v2 := Point{X: b.X - v.X, Y: b.Y - v.Y}

	mag1 := math.Hypot(v1.X, v1.Y)
	mag2 := math.Hypot(v2.X, v2.Y)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	cos := (v1.X*v2.X + v1.Y*v2.Y) / (mag1 * mag2)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// ComputeAngles derives the joint-angle set from a landmark set.
// Every angle is a pure function of three landmark coordinates; NeckTiltPX
// is a pure function of the nose and the two shoulders. Missing landmarks
// contribute zero-valued points, which the degenerate-angle policy maps
// to 0 degrees.
func (l *Landmarks) ComputeAngles() Angles {
	p := func(name string) Point {
		pt, _ := l.Point(name)
		return pt
	}

	nose := p(Nose)
	ls, rs := p(LeftShoulder), p(RightShoulder)

	return Angles{
		LeftElbow:     AngleAt(ls, p(LeftElbow), p(LeftWrist)),
		RightElbow:    AngleAt(rs, p(RightElbow), p(RightWrist)),
		LeftShoulder:  AngleAt(p(LeftElbow), ls, p(LeftHip)),
		RightShoulder: AngleAt(p(RightElbow), rs, p(RightHip)),
		LeftHip:       AngleAt(ls, p(LeftHip), p(LeftKnee)),
		RightHip:      AngleAt(rs, p(RightHip), p(RightKnee)),
		LeftKnee:      AngleAt(p(LeftHip), p(LeftKnee), p(LeftAnkle)),
		RightKnee:     AngleAt(p(RightHip), p(RightKnee), p(RightAnkle)),
		NeckTiltPX:    math.Abs(nose.X - (ls.X+rs.X)/2),
	}
}
