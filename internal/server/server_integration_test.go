package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/companion"
	"github.com/renderix/deskwell/internal/config"
	"github.com/renderix/deskwell/internal/notify"
	"github.com/renderix/deskwell/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	cfg := config.Config{
		PointsPerBreak:             10,
		PointsPerStretch:           20,
		PointsPerChat:              5,
		BonusHigh:                  30,
		BonusMedium:                20,
		BonusSmall:                 10,
		PetHealthGainPerBreak:      10,
		PetHappinessGainPerStretch: 15,
		PetXPPerActivity:           20,
	}
	c := coach.New(s, cat, notify.New(false), cfg)
	chat := companion.New(s, "", "claude-3-5-sonnet-20241022", cfg.PointsPerChat)

	srv := New(Config{
		Store:          s,
		Catalog:        cat,
		Coach:          c,
		Companion:      chat,
		PointsPerBreak: cfg.PointsPerBreak,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, s
}

func TestAPI_UserWorkflow(t *testing.T) {
	ts, _ := newTestServer(t)
	client := ts.Client()

	// 1. Create a user
	createBody := `{"username": "morgan", "pet_name": "Pixel", "pain_points": ["neck", "wrists"]}`
	resp, err := client.Post(ts.URL+"/api/users", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/users error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Username != "morgan" {
		t.Errorf("created username = %s, want morgan", created.Username)
	}

	// 2. Update preferences, partial body leaves the rest untouched
	prefBody := `{"break_interval": 60, "fitness_level": "active"}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/users/1", bytes.NewBufferString(prefBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/users/1 error = %v", err)
	}

	var updated struct {
		BreakInterval int      `json:"break_interval"`
		FitnessLevel  string   `json:"fitness_level"`
		PainPoints    []string `json:"pain_points"`
	}
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()

	if updated.BreakInterval != 60 {
		t.Errorf("break interval = %d, want 60", updated.BreakInterval)
	}
	if updated.FitnessLevel != "active" {
		t.Errorf("fitness level = %s, want active", updated.FitnessLevel)
	}
	if len(updated.PainPoints) != 2 {
		t.Errorf("pain points = %v, want the original two", updated.PainPoints)
	}

	// 3. Record a break
	resp, err = client.Post(ts.URL+"/api/users/1/breaks", "application/json",
		bytes.NewBufferString(`{"duration_seconds": 300}`))
	if err != nil {
		t.Fatalf("POST breaks error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("break status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var breakResp struct {
		PointsEarned int `json:"points_earned"`
		Unlocked     []struct {
			Key string `json:"key"`
		} `json:"unlocked_achievements"`
	}
	json.NewDecoder(resp.Body).Decode(&breakResp)
	resp.Body.Close()

	if breakResp.PointsEarned != 10 {
		t.Errorf("points earned = %d, want 10", breakResp.PointsEarned)
	}
	if len(breakResp.Unlocked) == 0 {
		t.Error("expected first_break achievement to unlock")
	}

	// 4. Record an unverified stretch
	resp, err = client.Post(ts.URL+"/api/users/1/stretches", "application/json",
		bytes.NewBufferString(`{"stretch_id": "chin-tuck"}`))
	if err != nil {
		t.Fatalf("POST stretches error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stretch status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	// 5. Dashboard reflects both activities
	resp, err = client.Get(ts.URL + "/api/users/1/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard error = %v", err)
	}

	var dash struct {
		User struct {
			TotalPoints   int `json:"total_points"`
			CurrentStreak int `json:"current_streak"`
		} `json:"user"`
		Pet struct {
			Name string `json:"name"`
		} `json:"pet"`
		Today struct {
			Breaks    int `json:"breaks"`
			Stretches int `json:"stretches"`
		} `json:"today"`
	}
	json.NewDecoder(resp.Body).Decode(&dash)
	resp.Body.Close()

	if dash.User.TotalPoints == 0 {
		t.Error("expected points on the dashboard")
	}
	if dash.User.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", dash.User.CurrentStreak)
	}
	if dash.Pet.Name != "Pixel" {
		t.Errorf("pet name = %s, want Pixel", dash.Pet.Name)
	}
	if dash.Today.Breaks != 1 || dash.Today.Stretches != 1 {
		t.Errorf("today = %d breaks / %d stretches, want 1/1",
			dash.Today.Breaks, dash.Today.Stretches)
	}

	// 6. Rename the pet
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/users/1/pet/name",
		bytes.NewBufferString(`{"name": "Widget"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT pet name error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var pet struct {
		Name string `json:"name"`
	}
	json.NewDecoder(resp.Body).Decode(&pet)
	resp.Body.Close()

	if pet.Name != "Widget" {
		t.Errorf("pet name = %s, want Widget", pet.Name)
	}
}

func TestAPI_MoodCheckIn(t *testing.T) {
	ts, s := newTestServer(t)
	client := ts.Client()

	user := &store.User{Username: "kim"}
	if err := s.Users().Create(user); err != nil {
		t.Fatalf("create user error = %v", err)
	}

	resp, err := client.Post(ts.URL+"/api/users/1/moods", "application/json",
		bytes.NewBufferString(`{"mood_rating": 8, "stress_level": 3}`))
	if err != nil {
		t.Fatalf("POST moods error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("mood status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// Out of range ratings are rejected
	resp, err = client.Post(ts.URL+"/api/users/1/moods", "application/json",
		bytes.NewBufferString(`{"mood_rating": 14}`))
	if err != nil {
		t.Fatalf("POST moods error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// The check-in shows up in the period averages
	resp, err = client.Get(ts.URL + "/api/users/1/stats?days=1")
	if err != nil {
		t.Fatalf("GET stats error = %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		AverageMood   float64 `json:"average_mood"`
		AverageStress float64 `json:"average_stress"`
	}
	json.NewDecoder(resp.Body).Decode(&stats)

	if stats.AverageMood != 8 {
		t.Errorf("average mood = %v, want 8", stats.AverageMood)
	}
	if stats.AverageStress != 3 {
		t.Errorf("average stress = %v, want 3", stats.AverageStress)
	}
}

func TestAPI_UserNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/users/999")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestAPI_ChatOffline(t *testing.T) {
	ts, s := newTestServer(t)
	client := ts.Client()

	user := &store.User{Username: "sam"}
	if err := s.Users().Create(user); err != nil {
		t.Fatalf("create user error = %v", err)
	}

	resp, err := client.Post(ts.URL+"/api/chat", "application/json",
		bytes.NewBufferString(`{"user_id": 1, "message": "hello there"}`))
	if err != nil {
		t.Fatalf("POST /api/chat error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var reply struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
	}
	json.NewDecoder(resp.Body).Decode(&reply)

	if reply.Text == "" {
		t.Error("expected a canned reply in offline mode")
	}
	if reply.SessionID == "" {
		t.Error("expected a generated session id")
	}

	// History should hold both turns
	resp, err = client.Get(ts.URL + "/api/chat/history?user_id=1&session_id=" + reply.SessionID)
	if err != nil {
		t.Fatalf("GET history error = %v", err)
	}
	defer resp.Body.Close()

	var history struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	json.NewDecoder(resp.Body).Decode(&history)

	if len(history.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(history.Messages))
	}
	if history.Messages[0].Role != "user" || history.Messages[1].Role != "assistant" {
		t.Errorf("roles = %s/%s, want user/assistant",
			history.Messages[0].Role, history.Messages[1].Role)
	}
}
