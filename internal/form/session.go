package form

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Session misuse conditions. These are soft errors returned to the
// caller; the session always remains in its prior valid state.
var (
	// ErrSessionActive is returned by Start when a session is already
	// running for this user.
	ErrSessionActive = errors.New("stretch session already active")
	// ErrNoSession is returned by Analyze and Complete when no session
	// has been started.
	ErrNoSession = errors.New("no active stretch session")
	// ErrTooShort is returned by Complete when too few frames have been
	// analyzed to score the session.
	ErrTooShort = errors.New("session too short to score")
)

// BonusTier is the discrete reward category derived from session accuracy.
// Converting a tier into points is the reward system's concern, not the
// session's.
type BonusTier string

const (
	TierHigh   BonusTier = "high"
	TierMedium BonusTier = "medium"
	TierSmall  BonusTier = "small"
	TierNone   BonusTier = "none"
)

// Config holds the tunable scoring parameters of a session.
type Config struct {
	// GoodFrameScore is the score a valid frame must exceed to count as
	// good form.
	GoodFrameScore int
	// MinFrames is the minimum number of analyzed frames before a
	// session may complete.
	MinFrames int
}

// DefaultConfig returns the standard session scoring parameters.
func DefaultConfig() Config {
	return Config{
		GoodFrameScore: 70,
		MinFrames:      10,
	}
}

// FrameReport is the outcome of analyzing one frame within a session.
type FrameReport struct {
	Result         Result  `json:"result"`
	FramesAnalyzed int     `json:"frames_analyzed"`
	GoodFormFrames int     `json:"good_form_frames"`
	// Accuracy is the live good-form ratio as a percentage, 0 when no
	// frames have been analyzed yet.
	Accuracy float64 `json:"accuracy"`
}

// Summary is the final outcome of a completed session.
type Summary struct {
	StretchID      string        `json:"stretch_id"`
	StretchName    string        `json:"stretch_name"`
	Category       string        `json:"category"`
	FramesAnalyzed int           `json:"frames_analyzed"`
	GoodFormFrames int           `json:"good_form_frames"`
	Accuracy       float64       `json:"accuracy"`
	Tier           BonusTier     `json:"bonus_tier"`
	Duration       time.Duration `json:"duration"`
}

// Session accumulates per-frame form scores over one bounded stretch
// attempt: idle -> active -> completed, then back to idle ready for the
// next Start. One Session instance belongs to exactly one user; callers
// that multiplex users must give each their own instance.
type Session struct {
	analyzer *Analyzer
	cfg      Config

	mu             sync.Mutex
	active         bool
	stretchID      string
	stretchName    string
	category       Category
	startedAt      time.Time
	framesAnalyzed int
	goodFormFrames int
}

// NewSession creates an idle session bound to the given analyzer.
func NewSession(analyzer *Analyzer, cfg Config) *Session {
	if cfg.GoodFrameScore <= 0 {
		cfg.GoodFrameScore = DefaultConfig().GoodFrameScore
	}
	if cfg.MinFrames <= 0 {
		cfg.MinFrames = DefaultConfig().MinFrames
	}
	return &Session{analyzer: analyzer, cfg: cfg}
}

// Start transitions the session from idle to active for the given stretch.
// Returns ErrSessionActive without touching any state if a session is
// already running.
func (s *Session) Start(stretchID, stretchName string, cat Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrSessionActive
	}

	s.active = true
	s.stretchID = stretchID
	s.stretchName = stretchName
	s.category = cat
	s.startedAt = time.Now()
	s.framesAnalyzed = 0
	s.goodFormFrames = 0

	return nil
}

// Analyze runs pose extraction and classification on one frame and folds
// the result into the session counters. Every analyzed frame increments
// frames_analyzed; good_form_frames increments when the result is valid
// and its score exceeds the configured good-frame threshold.
// Returns ErrNoSession, with counters untouched, when called while idle.
func (s *Session) Analyze(frame *gocv.Mat) (FrameReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return FrameReport{}, ErrNoSession
	}

	result, _ := s.analyzer.AnalyzeFrame(frame, s.category)

	s.framesAnalyzed++
	if result.Valid && result.Score > s.cfg.GoodFrameScore {
		s.goodFormFrames++
	}

	return FrameReport{
		Result:         result,
		FramesAnalyzed: s.framesAnalyzed,
		GoodFormFrames: s.goodFormFrames,
		Accuracy:       accuracy(s.goodFormFrames, s.framesAnalyzed),
	}, nil
}

// Complete transitions the session from active to completed and returns
// the final summary, leaving the session idle for the next Start.
// A session with fewer than MinFrames analyzed frames refuses to complete
// with ErrTooShort and remains active with all counters unchanged.
func (s *Session) Complete() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Summary{}, ErrNoSession
	}
	if s.framesAnalyzed < s.cfg.MinFrames {
		return Summary{}, ErrTooShort
	}

	acc := accuracy(s.goodFormFrames, s.framesAnalyzed)
	summary := Summary{
		StretchID:      s.stretchID,
		StretchName:    s.stretchName,
		Category:       s.category.String(),
		FramesAnalyzed: s.framesAnalyzed,
		GoodFormFrames: s.goodFormFrames,
		Accuracy:       acc,
		Tier:           TierFor(acc),
		Duration:       time.Since(s.startedAt),
	}

	s.reset()
	return summary, nil
}

// Abandon clears an active session without scoring it. A no-op when idle.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Active reports whether a session is currently running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns a snapshot of the running session for status reporting.
// The boolean is false when the session is idle.
func (s *Session) State() (FrameReport, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return FrameReport{}, "", false
	}

	return FrameReport{
		FramesAnalyzed: s.framesAnalyzed,
		GoodFormFrames: s.goodFormFrames,
		Accuracy:       accuracy(s.goodFormFrames, s.framesAnalyzed),
	}, s.stretchID, true
}

func (s *Session) reset() {
	s.active = false
	s.stretchID = ""
	s.stretchName = ""
	s.category = CategoryGeneric
	s.framesAnalyzed = 0
	s.goodFormFrames = 0
}

// TierFor maps a session accuracy percentage to its bonus tier.
func TierFor(accuracy float64) BonusTier {
	switch {
	case accuracy > 90:
		return TierHigh
	case accuracy > 75:
		return TierMedium
	case accuracy > 60:
		return TierSmall
	default:
		return TierNone
	}
}

func accuracy(good, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(good) / float64(total) * 100
}
