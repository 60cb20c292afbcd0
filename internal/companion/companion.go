// Package companion implements the AI chat companion backed by the
// Anthropic API, with a canned fallback when no API key is configured.
package companion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/renderix/deskwell/internal/store"
)

// historyWindow is how many stored messages are replayed to the model
// for context.
const historyWindow = 20

// maxTokens bounds a single companion reply.
const maxTokens = 1024

// Companion chats with the user in the voice of their pet.
type Companion struct {
	store         *store.Store
	client        *anthropic.Client
	model         string
	pointsPerChat int
}

// New creates a companion. With an empty API key the companion runs in
// offline mode and serves canned replies.
func New(st *store.Store, apiKey, model string, pointsPerChat int) *Companion {
	c := &Companion{
		store:         st,
		model:         model,
		pointsPerChat: pointsPerChat,
	}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		c.client = &client
	}
	return c
}

// Online reports whether the companion talks to the real API.
func (c *Companion) Online() bool {
	return c.client != nil
}

// Reply is the companion's answer to one chat message.
type Reply struct {
	Text           string              `json:"text"`
	SessionID      string              `json:"session_id"`
	StressDetected bool                `json:"stress_detected"`
	PointsEarned   int                 `json:"points_earned"`
	Unlocked       []store.Achievement `json:"unlocked_achievements,omitempty"`
}

// Chat sends a user message and returns the companion's reply. Both
// turns are persisted, and the first message of a session earns chat
// points. An empty sessionID starts a new session.
func (c *Companion) Chat(ctx context.Context, userID int64, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("empty message")
	}

	newSession := sessionID == ""
	if newSession {
		sessionID = uuid.New().String()
	}

	user, err := c.store.Users().GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	pet, err := c.store.Pets().Get(userID)
	if err != nil {
		return nil, fmt.Errorf("loading pet: %w", err)
	}

	stressed := soundsStressed(message)

	var text string
	if c.client != nil {
		text, err = c.send(ctx, user, pet, sessionID, message)
		if err != nil {
			return nil, err
		}
	} else {
		text = cannedReply(pet.Name, stressed)
	}

	err = c.store.Conversations().Save(&store.Message{
		UserID: userID, Role: store.RoleUser, Content: message, SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}
	err = c.store.Conversations().Save(&store.Message{
		UserID: userID, Role: store.RoleAssistant, Content: text, SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}

	reply := &Reply{
		Text:           text,
		SessionID:      sessionID,
		StressDetected: stressed,
	}

	// Only the first exchange of a session counts as a chat activity, so
	// long conversations are not point farms.
	if newSession {
		unlocked, err := c.store.Activities().Log(&store.Activity{
			UserID:       userID,
			Type:         store.ActivityChat,
			PointsEarned: c.pointsPerChat,
			ChatSummary:  summarize(message),
		})
		if err != nil {
			return nil, fmt.Errorf("logging chat: %w", err)
		}
		reply.PointsEarned = c.pointsPerChat
		reply.Unlocked = unlocked
	}

	return reply, nil
}

// send builds the model request from the stored history plus the new
// message.
func (c *Companion) send(ctx context.Context, user *store.User, pet *store.Pet, sessionID, message string) (string, error) {
	history, err := c.store.Conversations().History(user.ID, sessionID, historyWindow)
	if err != nil {
		return "", fmt.Errorf("loading history: %w", err)
	}

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == store.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	// The system prompt rides on the first user turn of the session.
	full := message
	if len(messages) == 0 {
		full = systemPrompt(user, pet) + "\n\n---\n\nUser: " + message
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(full)))

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// History returns the stored transcript for a session.
func (c *Companion) History(userID int64, sessionID string, limit int) ([]*store.Message, error) {
	return c.store.Conversations().History(userID, sessionID, limit)
}

// BreakNudge produces one short line of break-reminder copy in the
// pet's voice. Offline, or on any API failure, it returns an empty
// string so the caller falls back to its static copy. Nothing is
// persisted; nudges are not conversation.
func (c *Companion) BreakNudge(ctx context.Context, userID int64) string {
	if c.client == nil {
		return ""
	}

	user, err := c.store.Users().GetByID(userID)
	if err != nil {
		return ""
	}
	pet, err := c.store.Pets().Get(userID)
	if err != nil {
		return ""
	}

	prompt := fmt.Sprintf(
		"You are %s, %s's virtual pet wellness companion. Write exactly one short, "+
			"friendly sentence (under 20 words) nudging them to take a screen break right now. "+
			"No preamble, no quotes.", pet.Name, user.Username)

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 100,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return ""
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return strings.TrimSpace(text)
}

// cannedReply serves offline mode. Stressed users get a concrete
// suggestion instead of small talk.
func cannedReply(petName string, stressed bool) string {
	if stressed {
		return fmt.Sprintf("That sounds rough. How about a quick reset? Stand up, roll your shoulders "+
			"back a few times, and take three slow breaths. %s will be right here when you're back.", petName)
	}
	return fmt.Sprintf("%s wags happily! I'm running in offline mode right now, but I'm still here. "+
		"Want to log a break or try a stretch?", petName)
}

// summarize truncates a message for the activity log.
func summarize(message string) string {
	const maxLen = 120
	if len(message) <= maxLen {
		return message
	}
	return message[:maxLen-3] + "..."
}
