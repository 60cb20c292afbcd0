package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/renderix/deskwell/internal/app"
	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/companion"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/reminder"
	"github.com/renderix/deskwell/internal/server"
	"github.com/renderix/deskwell/internal/store"
	"github.com/renderix/deskwell/internal/tray"
)

func main() {
	fmt.Println("Deskwell - Desk Wellness Companion")

	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cat, err := catalog.Load(filepath.Join(cfg.DataDir, "stretches.json"))
	if err != nil {
		log.Fatalf("Failed to load stretch catalog: %v", err)
	}

	user, err := ensureUser(st, cfg)
	if err != nil {
		log.Fatalf("Failed to set up user: %v", err)
	}

	notifier := notify.New(user.NotificationsEnabled)
	wellnessCoach := coach.New(st, cat, notifier, cfg)
	chat := companion.New(st, cfg.AnthropicAPIKey, cfg.Model, cfg.PointsPerChat)
	if chat.Online() {
		fmt.Println("AI companion: online")
	} else {
		fmt.Println("AI companion: offline (set ANTHROPIC_API_KEY to enable)")
	}

	application := app.New(cfg, st, cat, wellnessCoach)

	monitoring, err := st.Settings().GetBool("monitoring_enabled", true)
	if err != nil {
		log.Printf("Failed to read monitoring setting: %v", err)
	}
	application.SetEnabled(monitoring)

	breaks := reminder.New(st, notifier, application.Presence(), user.ID, user.BreakInterval)
	if chat.Online() {
		breaks.SetNudgeSource(chat)
	}
	breaks.Start()
	defer breaks.Stop()

	if err := application.Start(); err != nil {
		log.Printf("Camera unavailable, form analysis disabled: %v", err)
	} else {
		defer application.Stop()
	}

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:      webDir,
		Store:          st,
		Catalog:        cat,
		Coach:          wellnessCoach,
		Companion:      chat,
		Sessions:       application,
		Breaks:         breaks,
		Frames:         application,
		PointsPerBreak: cfg.PointsPerBreak,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	icon := tray.New(monitoring)
	icon.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
		if err := st.Settings().SetBool("monitoring_enabled", enabled); err != nil {
			log.Printf("Failed to persist monitoring setting: %v", err)
		}
		if enabled {
			log.Println("Monitoring enabled")
		} else {
			log.Println("Monitoring paused")
		}
	})
	icon.OnTakeBreak(func() {
		if _, err := breaks.RecordBreak(300, cfg.PointsPerBreak); err != nil {
			log.Printf("Failed to record break: %v", err)
			return
		}
		if err := wellnessCoach.RecordBreakReward(user.ID); err != nil {
			log.Printf("Failed to reward break: %v", err)
		}
		refreshTray(icon, st, user.ID)
	})
	icon.OnDashboard(func() {
		openBrowser("http://localhost" + cfg.ListenAddr)
	})
	icon.OnQuit(func() {
		log.Println("Shutting down")
	})

	refreshTray(icon, st, user.ID)

	// Blocks until Quit is selected from the menu.
	icon.Run()
}

// ensureUser returns the default local user, creating it on first run.
func ensureUser(st *store.Store, cfg config.Config) (*store.User, error) {
	username := envOr("DESKWELL_USER", "default")

	user, err := st.Users().GetByUsername(username)
	if err == nil {
		return user, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	user = &store.User{
		Username:      username,
		BreakInterval: config.ClampBreakInterval(cfg.BreakIntervalMinutes),
	}
	if err := st.Users().Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func refreshTray(icon *tray.Tray, st *store.Store, userID int64) {
	if user, err := st.Users().GetByID(userID); err == nil {
		icon.SetStreak(user.CurrentStreak)
	}
	if pet, err := st.Pets().Get(userID); err == nil {
		icon.SetPetStatus(pet.Name, pet.Health, pet.Happiness)
	}
}

// openBrowser opens the given URL using the platform opener. Failures
// are logged and otherwise ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	candidate := filepath.Join(dataDir, "web")
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}

	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
