// Package tray provides the system tray interface for Deskwell.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the Deskwell menu bar presence: monitoring toggle, streak
// display, quick break logging and a dashboard shortcut.
type Tray struct {
	onToggle    func(enabled bool)
	onTakeBreak func()
	onDashboard func()
	onQuit      func()
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStreak *systray.MenuItem
	menuPet    *systray.MenuItem
}

// New creates a new Tray showing the given initial monitoring state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback for toggling camera monitoring.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnTakeBreak sets the callback for logging a break from the menu.
func (t *Tray) OnTakeBreak(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTakeBreak = fn
}

// OnDashboard sets the callback for opening the dashboard.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback for quitting the application.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. Blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Deskwell")
	systray.SetTooltip("Deskwell wellness companion")

	toggleTitle := "● Monitoring"
	if !t.enabled {
		toggleTitle = "○ Paused"
	}
	t.menuToggle = systray.AddMenuItem(toggleTitle, "Toggle camera monitoring")
	systray.AddSeparator()

	t.menuStreak = systray.AddMenuItem("Streak: 0 days", "Current activity streak")
	t.menuStreak.Disable()
	t.menuPet = systray.AddMenuItem("Pet: ...", "Your companion's mood")
	t.menuPet.Disable()
	systray.AddSeparator()

	menuBreak := systray.AddMenuItem("I took a break", "Log a screen break")
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Deskwell")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuBreak.ClickedCh:
				t.handleTakeBreak()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Monitoring")
	} else {
		t.menuToggle.SetTitle("○ Paused")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleTakeBreak() {
	t.mu.RLock()
	callback := t.onTakeBreak
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStreak updates the streak display in the menu.
func (t *Tray) SetStreak(days int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStreak != nil {
		t.menuStreak.SetTitle(fmt.Sprintf("Streak: %d days", days))
	}
}

// SetPetStatus updates the pet mood line in the menu.
func (t *Tray) SetPetStatus(name string, health, happiness float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPet != nil {
		t.menuPet.SetTitle(fmt.Sprintf("%s: %.0f%% health, %.0f%% happy", name, health, happiness))
	}
}

// IsEnabled returns the current monitoring state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
