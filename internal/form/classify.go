package form

import (
	"github.com/renderix/deskwell/internal/pose"
)

// Result is the per-frame form assessment for a stretch.
type Result struct {
	// Valid reports whether the frame shows acceptable form for the
	// stretch category.
	Valid bool `json:"valid"`
	// Feedback is a short coaching message for the user.
	Feedback string `json:"feedback"`
	// Score is a 0-100 form quality estimate.
	Score int `json:"score"`
}

// FeedbackNoPose is returned whenever no pose could be extracted from a
// frame, regardless of category.
const FeedbackNoPose = "No pose detected - make sure you are in frame"

// Neck tilt thresholds in pixels (nose offset from shoulder midpoint).
const (
	neckTiltMinPX  = 20
	neckTiltGoodPX = 40
)

// Shoulder angle threshold in degrees; both shoulders must exceed it.
const shoulderRaisedDeg = 60

// Hip flexion thresholds in degrees (average of both hips).
const (
	backDeepBendDeg    = 90
	backPartialBendDeg = 120
)

// classifiers is the strategy table mapping each category to its
// rule-set. Every classifier is a pure function of the angle set.
var classifiers = map[Category]func(pose.Angles) Result{
	CategoryNeck:     classifyNeck,
	CategoryShoulder: classifyShoulder,
	CategoryBack:     classifyBack,
	CategoryGeneric:  classifyGeneric,
}

// Classify scores a frame's extracted landmarks against the rule-set for
// the given category. A nil landmark set means no pose was detected and
// always yields an invalid zero-score result.
func Classify(cat Category, lm *pose.Landmarks) Result {
	if lm == nil {
		return Result{Valid: false, Feedback: FeedbackNoPose, Score: 0}
	}

	classify, ok := classifiers[cat]
	if !ok {
		classify = classifyGeneric
	}
	return classify(lm.ComputeAngles())
}

// classifyNeck scores a lateral neck stretch by how far the head is
// tilted off the shoulder midpoint. NeckTiltPX is a pixel distance, not
// an angle.
func classifyNeck(a pose.Angles) Result {
	if a.NeckTiltPX < neckTiltMinPX {
		return Result{
			Valid:    false,
			Feedback: "Tilt your head more to the side",
			Score:    30,
		}
	}

	if a.NeckTiltPX > neckTiltGoodPX {
		return Result{
			Valid:    true,
			Feedback: "Excellent! Hold this position",
			Score:    100,
		}
	}

	return Result{
		Valid:    true,
		Feedback: "Good stretch! Try to tilt a bit more",
		Score:    70,
	}
}

// classifyShoulder scores shoulder raises and rolls. The frame is never
// marked invalid; low shoulder angles just score lower with a prompt to
// keep moving.
func classifyShoulder(a pose.Angles) Result {
	if a.LeftShoulder > shoulderRaisedDeg && a.RightShoulder > shoulderRaisedDeg {
		return Result{
			Valid:    true,
			Feedback: "Great shoulder position! Keep moving smoothly",
			Score:    90,
		}
	}

	return Result{
		Valid:    true,
		Feedback: "Raise your shoulders and roll them back",
		Score:    50,
	}
}

// classifyBack scores a forward bend by average hip flexion.
func classifyBack(a pose.Angles) Result {
	avgHip := (a.LeftHip + a.RightHip) / 2

	if avgHip < backDeepBendDeg {
		return Result{
			Valid:    true,
			Feedback: "Excellent forward bend! Feel the stretch in your back",
			Score:    100,
		}
	}

	if avgHip < backPartialBendDeg {
		return Result{
			Valid:    true,
			Feedback: "Good! Bend forward a bit more if comfortable",
			Score:    75,
		}
	}

	return Result{
		Valid:    false,
		Feedback: "Bend forward at the hips to stretch your back",
		Score:    40,
	}
}

// classifyGeneric only verifies that a pose is present; the nil case is
// handled before dispatch, so reaching here means the stretch is being
// held in frame.
func classifyGeneric(pose.Angles) Result {
	return Result{
		Valid:    true,
		Feedback: "Great! Continue your stretch and hold the position",
		Score:    85,
	}
}
