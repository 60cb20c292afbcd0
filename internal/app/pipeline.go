package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/renderix/deskwell/internal/capture"
	"github.com/renderix/deskwell/internal/form"
)

// runPipeline is the main loop: read a frame, feed presence monitoring,
// and during an active session run form analysis and publish an
// annotated preview.
//
// The loop runs at the idle rate while no session is active and speeds
// up while one is. Presence observations continue either way so break
// reminders know whether anyone is at the desk.
func (a *App) runPipeline(stopCh chan struct{}) {
	interval := time.Second / time.Duration(capture.DefaultFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	inSession := false

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				continue
			}

			a.presence.Observe(frame)

			active := a.activeSessions()

			// Adjust the loop rate when sessions start or stop.
			if len(active) > 0 != inSession {
				inSession = len(active) > 0
				fps := capture.DefaultFPS
				if inSession {
					fps = capture.SessionFPS
				}
				interval = time.Second / time.Duration(fps)
				ticker.Reset(interval)
			}

			var lastResult *form.Result
			for _, session := range active {
				report, err := session.Analyze(frame)
				if err != nil {
					log.Printf("Error analyzing frame: %v", err)
					continue
				}
				lastResult = &report.Result
			}

			a.publishPreview(frame, lastResult)
			frame.Close()
		}
	}
}

// publishPreview encodes the frame for the MJPEG stream, drawing form
// feedback on a copy when a session result is available.
func (a *App) publishPreview(frame *gocv.Mat, res *form.Result) {
	toEncode := frame
	if res != nil {
		annotated := frame.Clone()
		defer annotated.Close()
		form.Annotate(&annotated, *res)
		toEncode = &annotated
	}

	buf, err := gocv.IMEncode(".jpg", *toEncode)
	if err != nil {
		return
	}
	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	buf.Close()

	a.publishJPEG(jpeg)
}
