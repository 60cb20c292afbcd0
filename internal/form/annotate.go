package form

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Score tier colors for the overlay (BGR-ordered frames, RGBA values).
var (
	colorGoodForm   = color.RGBA{G: 200, B: 80}           // affirmative
	colorAdjustForm = color.RGBA{R: 230, G: 140}          // cautionary
	colorPoorForm   = color.RGBA{R: 220, G: 50, B: 50}    // warning
	colorOverlayBG  = color.RGBA{R: 30, G: 30, B: 30}     // banner fill
	colorText       = color.RGBA{R: 255, G: 255, B: 255}  // feedback text
)

// Annotate draws the scored feedback onto the frame in place: a
// semi-transparent banner across the top, the feedback message, and the
// score colored by tier. Presentation only; scoring never depends on it.
func Annotate(frame *gocv.Mat, res Result) {
	if frame == nil || frame.Empty() {
		return
	}

	scoreColor := colorPoorForm
	switch {
	case res.Score >= 80:
		scoreColor = colorGoodForm
	case res.Score >= 60:
		scoreColor = colorAdjustForm
	}

	// Semi-transparent banner
	overlay := frame.Clone()
	defer overlay.Close()
	gocv.Rectangle(&overlay, image.Rect(10, 10, frame.Cols()-10, 100), colorOverlayBG, -1)
	gocv.AddWeighted(*frame, 0.7, overlay, 0.3, 0, frame)

	gocv.PutText(frame, res.Feedback, image.Pt(20, 40),
		gocv.FontHersheySimplex, 0.7, colorText, 2)
	gocv.PutText(frame, fmt.Sprintf("Form Score: %d%%", res.Score), image.Pt(20, 75),
		gocv.FontHersheySimplex, 0.6, scoreColor, 2)
}
