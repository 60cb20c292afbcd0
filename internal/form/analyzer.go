package form

import (
	"log"

	"gocv.io/x/gocv"

	"github.com/renderix/deskwell/internal/pose"
)

// Analyzer runs pose extraction and form classification on single frames.
// It holds no per-session state; sessions own their own counters.
type Analyzer struct {
	detector pose.Detector
}

// NewAnalyzer creates an Analyzer backed by the given pose detector.
func NewAnalyzer(d pose.Detector) *Analyzer {
	return &Analyzer{detector: d}
}

// Detector returns the underlying pose detector.
func (a *Analyzer) Detector() pose.Detector {
	return a.detector
}

// AnalyzeFrame extracts a pose from the frame and classifies it against
// the category's rule-set. A frame with no detectable pose, a pitch-black
// frame, or a transient extraction failure all degrade to the no-pose
// result; per-frame extraction is never a fatal condition.
func (a *Analyzer) AnalyzeFrame(frame *gocv.Mat, cat Category) (Result, *pose.Landmarks) {
	lm, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("pose extraction failed, treating frame as no pose: %v", err)
		lm = nil
	}

	return Classify(cat, lm), lm
}

// Close releases the underlying detector.
func (a *Analyzer) Close() error {
	return a.detector.Close()
}
