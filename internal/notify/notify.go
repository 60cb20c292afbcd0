// Package notify sends desktop notifications for reminders and
// milestones.
package notify

import (
	"fmt"
	"log"

	"github.com/gen2brain/beeep"
)

const appTitle = "Deskwell"

// Notifier sends desktop notifications. Disabled notifiers silently
// drop everything, matching the user's notifications_enabled setting.
type Notifier struct {
	enabled bool
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// SetEnabled toggles notification delivery.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

func (n *Notifier) send(title, body string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		// Notification failures are not worth surfacing to callers.
		log.Printf("notify: %v", err)
	}
}

// BreakReminder nudges the user to step away from the screen.
func (n *Notifier) BreakReminder(minutes int) {
	n.send(appTitle+" - Break Time", fmt.Sprintf(
		"You've been at your desk for %d minutes. Stand up, look away from the screen, and move a little.", minutes))
}

// BreakNudge delivers break-reminder copy written elsewhere, such as
// by the AI companion.
func (n *Notifier) BreakNudge(message string) {
	n.send(appTitle+" - Break Time", message)
}

// StretchSuggestion proposes a specific stretch.
func (n *Notifier) StretchSuggestion(name, description string) {
	n.send(appTitle+" - Stretch Break", fmt.Sprintf("Try this: %s. %s", name, description))
}

// AchievementUnlocked celebrates a new achievement.
func (n *Notifier) AchievementUnlocked(icon, name, description string) {
	n.send(appTitle+" - Achievement Unlocked!", fmt.Sprintf("%s %s: %s", icon, name, description))
}

// StreakMilestone celebrates a streak.
func (n *Notifier) StreakMilestone(days int) {
	n.send(appTitle+" - Streak!", fmt.Sprintf("%d days in a row. Keep it going!", days))
}

// PetMessage delivers a message from the companion pet.
func (n *Notifier) PetMessage(petName, message string) {
	n.send(appTitle+" - "+petName, message)
}

// SessionResult reports how a stretch session went.
func (n *Notifier) SessionResult(stretchName string, accuracy float64, bonusPoints int) {
	body := fmt.Sprintf("%s done with %.0f%% form accuracy.", stretchName, accuracy)
	if bonusPoints > 0 {
		body += fmt.Sprintf(" Bonus: +%d points!", bonusPoints)
	}
	n.send(appTitle+" - Session Complete", body)
}
