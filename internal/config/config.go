// Package config collects Deskwell's runtime settings from the
// environment, with working defaults for every value.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Break reminder bounds in minutes.
const (
	DefaultBreakInterval = 45
	MinBreakInterval     = 30
	MaxBreakInterval     = 90
)

// Config holds all runtime settings.
type Config struct {
	// DataDir is where the database and data files live.
	DataDir string
	// DatabasePath is the SQLite database file.
	DatabasePath string
	// ListenAddr is the HTTP server bind address.
	ListenAddr string
	// StaticDir serves the web UI when non-empty.
	StaticDir string

	// AnthropicAPIKey enables AI companion features when set.
	AnthropicAPIKey string
	// Model is the Anthropic model used for chat.
	Model string

	// CameraID selects the capture device.
	CameraID int

	// BreakIntervalMinutes is the default gap between break reminders.
	BreakIntervalMinutes int

	// Points awarded per activity type.
	PointsPerBreak   int
	PointsPerStretch int
	PointsPerChat    int

	// Bonus points per session tier.
	BonusHigh   int
	BonusMedium int
	BonusSmall  int

	// Pet stat gains per activity.
	PetHealthGainPerBreak      float64
	PetHappinessGainPerStretch float64
	PetXPPerActivity           int

	// GoodFrameScore is the per-frame score a valid frame must exceed to
	// count toward session accuracy.
	GoodFrameScore int
	// MinSessionFrames is the engagement floor before a session may
	// complete.
	MinSessionFrames int
}

// Load builds a Config from the environment.
func Load() Config {
	dataDir := envStr("DESKWELL_DATA_DIR", defaultDataDir())

	return Config{
		DataDir:      dataDir,
		DatabasePath: envStr("DESKWELL_DB_PATH", filepath.Join(dataDir, "deskwell.db")),
		ListenAddr:   envStr("DESKWELL_ADDR", ":8080"),
		StaticDir:    os.Getenv("DESKWELL_WEB_DIR"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           envStr("DESKWELL_MODEL", "claude-3-5-sonnet-20241022"),

		CameraID: envInt("DESKWELL_CAMERA_ID", 0),

		BreakIntervalMinutes: envInt("DESKWELL_BREAK_INTERVAL", DefaultBreakInterval),

		PointsPerBreak:   envInt("DESKWELL_POINTS_PER_BREAK", 10),
		PointsPerStretch: envInt("DESKWELL_POINTS_PER_STRETCH", 20),
		PointsPerChat:    envInt("DESKWELL_POINTS_PER_CHAT", 5),

		BonusHigh:   envInt("DESKWELL_BONUS_HIGH", 30),
		BonusMedium: envInt("DESKWELL_BONUS_MEDIUM", 20),
		BonusSmall:  envInt("DESKWELL_BONUS_SMALL", 10),

		PetHealthGainPerBreak:      10,
		PetHappinessGainPerStretch: 15,
		PetXPPerActivity:           20,

		GoodFrameScore:   envInt("DESKWELL_GOOD_FRAME_SCORE", 70),
		MinSessionFrames: envInt("DESKWELL_MIN_SESSION_FRAMES", 10),
	}
}

// ClampBreakInterval bounds a requested break interval to the supported
// range.
func ClampBreakInterval(minutes int) int {
	if minutes < MinBreakInterval {
		return MinBreakInterval
	}
	if minutes > MaxBreakInterval {
		return MaxBreakInterval
	}
	return minutes
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskwell"
	}
	return filepath.Join(home, ".deskwell")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
