package companion

import (
	"fmt"
	"strings"

	"github.com/renderix/deskwell/internal/store"
)

// personalities maps a pet personality to its voice in conversation.
var personalities = map[string]string{
	"encouraging_coach": "You are warm and encouraging, like a personal coach who celebrates every small win.",
	"playful_friend":    "You are playful and a bit silly, keeping the mood light while still caring about wellness.",
	"calm_mentor":       "You are calm and thoughtful, offering gentle perspective and mindfulness cues.",
}

// systemPrompt builds the companion's system prompt from the user's
// profile and pet state so replies stay personal and grounded.
func systemPrompt(user *store.User, pet *store.Pet) string {
	voice, ok := personalities[pet.Personality]
	if !ok {
		voice = personalities["encouraging_coach"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a virtual wellness companion pet living on %s's desktop. %s\n\n",
		pet.Name, user.Username, voice)

	fmt.Fprintf(&b, "Your job is to help %s build healthy desk habits: regular screen breaks, "+
		"stretching, and checking in on how they feel.\n\n", user.Username)

	fmt.Fprintf(&b, "Current state:\n")
	fmt.Fprintf(&b, "- Your health: %.0f/100, happiness: %.0f/100, level %d (%s stage)\n",
		pet.Health, pet.Happiness, pet.Level, pet.EvolutionStage)
	fmt.Fprintf(&b, "- %s's streak: %d days (longest %d)\n",
		user.Username, user.CurrentStreak, user.LongestStreak)
	fmt.Fprintf(&b, "- Totals: %d stretches, %d breaks, %d points\n",
		user.TotalStretchesCompleted, user.TotalBreaksTaken, user.TotalPoints)
	if len(user.PainPoints) > 0 {
		fmt.Fprintf(&b, "- Reported discomfort: %s\n", strings.Join(user.PainPoints, ", "))
	}

	b.WriteString(`
Guidelines:
- Keep replies short, 1-3 sentences, conversational and kind.
- When the user sounds stressed or mentions pain, gently suggest a specific break or stretch.
- Never give medical advice; suggest seeing a professional for persistent pain.
- Stay in character as their pet companion.`)

	return b.String()
}

// stressKeywords flag messages where the user sounds like they need a
// break rather than a chat.
var stressKeywords = []string{
	"stressed", "stress", "overwhelmed", "anxious", "anxiety",
	"exhausted", "tired", "burnout", "burned out",
	"hurts", "pain", "ache", "sore", "stiff",
}

// soundsStressed reports whether a message contains stress or pain
// language.
func soundsStressed(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range stressKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
