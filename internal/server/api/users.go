package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/store"
)

// BreakRecorder logs a completed break. The reminder scheduler
// implements it so recorded breaks also reset the reminder window.
type BreakRecorder interface {
	RecordBreak(durationSeconds, points int) ([]store.Achievement, error)
}

// UserHandler handles HTTP requests for user resources and their
// sub-resources (dashboard, pet, achievements, activities).
type UserHandler struct {
	store          *store.Store
	coach          *coach.Coach
	breaks         BreakRecorder
	pointsPerBreak int
}

// NewUserHandler creates a new UserHandler. breaks may be nil, in which
// case breaks are logged straight to the store.
func NewUserHandler(s *store.Store, c *coach.Coach, breaks BreakRecorder, pointsPerBreak int) *UserHandler {
	return &UserHandler{
		store:          s,
		coach:          c,
		breaks:         breaks,
		pointsPerBreak: pointsPerBreak,
	}
}

// ServeHTTP routes user requests.
// Expected paths: /api/users, /api/users/{id}, /api/users/{id}/{sub}
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/users")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.updatePreferences(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	h.subResource(w, r, id, parts[1])
}

func (h *UserHandler) subResource(w http.ResponseWriter, r *http.Request, id int64, sub string) {
	switch {
	case sub == "dashboard" && r.Method == http.MethodGet:
		h.dashboard(w, r, id)
	case sub == "suggestions" && r.Method == http.MethodGet:
		h.suggestions(w, r, id)
	case sub == "achievements" && r.Method == http.MethodGet:
		h.achievements(w, r, id)
	case sub == "activities" && r.Method == http.MethodGet:
		h.activities(w, r, id)
	case sub == "stats" && r.Method == http.MethodGet:
		h.stats(w, r, id)
	case sub == "pet" && r.Method == http.MethodGet:
		h.pet(w, r, id)
	case sub == "pet/name" && r.Method == http.MethodPut:
		h.renamePet(w, r, id)
	case sub == "stretches" && r.Method == http.MethodPost:
		h.recordStretch(w, r, id)
	case sub == "breaks" && r.Method == http.MethodPost:
		h.recordBreak(w, r, id)
	case sub == "moods" && r.Method == http.MethodPost:
		h.recordMood(w, r, id)
	case sub == "sessions" && r.Method == http.MethodGet:
		h.sessions(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type createUserRequest struct {
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	PetName    string   `json:"pet_name"`
	PainPoints []string `json:"pain_points"`
}

// create handles POST /api/users.
func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	u := &store.User{
		Username:   req.Username,
		Email:      req.Email,
		PetName:    req.PetName,
		PainPoints: req.PainPoints,
	}
	if err := h.store.Users().Create(u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// get handles GET /api/users/{id}.
func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	u, err := h.store.Users().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updatePreferencesRequest struct {
	BreakInterval        *int     `json:"break_interval"`
	StretchGoalDaily     *int     `json:"stretch_goal_daily"`
	NotificationsEnabled *bool    `json:"notifications_enabled"`
	FitnessLevel         *string  `json:"fitness_level"`
	PainPoints           []string `json:"pain_points"`
}

// updatePreferences handles PUT /api/users/{id}. Omitted fields keep
// their current values.
func (h *UserHandler) updatePreferences(w http.ResponseWriter, r *http.Request, id int64) {
	u, err := h.store.Users().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.BreakInterval != nil {
		u.BreakInterval = *req.BreakInterval
	}
	if req.StretchGoalDaily != nil {
		u.StretchGoalDaily = *req.StretchGoalDaily
	}
	if req.NotificationsEnabled != nil {
		u.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.FitnessLevel != nil {
		u.FitnessLevel = *req.FitnessLevel
	}
	if req.PainPoints != nil {
		u.PainPoints = req.PainPoints
	}

	err = h.store.Users().UpdatePreferences(id, u.BreakInterval, u.StretchGoalDaily,
		u.NotificationsEnabled, u.FitnessLevel, u.PainPoints)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// dashboard handles GET /api/users/{id}/dashboard.
func (h *UserHandler) dashboard(w http.ResponseWriter, r *http.Request, id int64) {
	dash, err := h.coach.DashboardFor(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// suggestions handles GET /api/users/{id}/suggestions.
func (h *UserHandler) suggestions(w http.ResponseWriter, r *http.Request, id int64) {
	count := queryInt(r, "count", 3)
	stretches, err := h.coach.Suggest(id, count)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build suggestions")
		return
	}
	writeJSON(w, http.StatusOK, listStretchesResponse{Stretches: stretches})
}

// achievements handles GET /api/users/{id}/achievements.
func (h *UserHandler) achievements(w http.ResponseWriter, r *http.Request, id int64) {
	list, err := h.store.Achievements().ListForUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list achievements")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": list})
}

// activities handles GET /api/users/{id}/activities.
func (h *UserHandler) activities(w http.ResponseWriter, r *http.Request, id int64) {
	actType := store.ActivityType(r.URL.Query().Get("type"))
	days := queryInt(r, "days", 0)
	limit := queryInt(r, "limit", 50)

	list, err := h.store.Activities().List(id, actType, days, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}
	if list == nil {
		list = []*store.Activity{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": list})
}

// stats handles GET /api/users/{id}/stats.
func (h *UserHandler) stats(w http.ResponseWriter, r *http.Request, id int64) {
	days := queryInt(r, "days", 7)
	stats, err := h.store.Activities().Stats(id, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// pet handles GET /api/users/{id}/pet.
func (h *UserHandler) pet(w http.ResponseWriter, r *http.Request, id int64) {
	pet, err := h.store.Pets().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pet")
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

type renamePetRequest struct {
	Name string `json:"name"`
}

// renamePet handles PUT /api/users/{id}/pet/name.
func (h *UserHandler) renamePet(w http.ResponseWriter, r *http.Request, id int64) {
	var req renamePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.store.Pets().Rename(id, strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to rename pet")
		return
	}

	pet, err := h.store.Pets().Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pet")
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

type recordStretchRequest struct {
	StretchID string `json:"stretch_id"`
}

// recordStretch handles POST /api/users/{id}/stretches for stretches
// done without camera verification.
func (h *UserHandler) recordStretch(w http.ResponseWriter, r *http.Request, id int64) {
	var req recordStretchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StretchID == "" {
		writeError(w, http.StatusBadRequest, "stretch_id is required")
		return
	}

	outcome, err := h.coach.RecordStretch(id, req.StretchID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

type recordBreakRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

type recordBreakResponse struct {
	PointsEarned int                 `json:"points_earned"`
	Unlocked     []store.Achievement `json:"unlocked_achievements,omitempty"`
}

// recordBreak handles POST /api/users/{id}/breaks.
func (h *UserHandler) recordBreak(w http.ResponseWriter, r *http.Request, id int64) {
	var req recordBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var unlocked []store.Achievement
	var err error
	if h.breaks != nil {
		unlocked, err = h.breaks.RecordBreak(req.DurationSeconds, h.pointsPerBreak)
	} else {
		unlocked, err = h.store.Activities().Log(&store.Activity{
			UserID:       id,
			Type:         store.ActivityBreak,
			Duration:     req.DurationSeconds,
			PointsEarned: h.pointsPerBreak,
		})
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record break")
		return
	}

	if err := h.coach.RecordBreakReward(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update pet")
		return
	}

	writeJSON(w, http.StatusCreated, recordBreakResponse{
		PointsEarned: h.pointsPerBreak,
		Unlocked:     unlocked,
	})
}

type recordMoodRequest struct {
	MoodRating  int `json:"mood_rating"`
	StressLevel int `json:"stress_level"`
}

// recordMood handles POST /api/users/{id}/moods. Mood check-ins feed
// the averages on the stats endpoint; they earn no points.
func (h *UserHandler) recordMood(w http.ResponseWriter, r *http.Request, id int64) {
	var req recordMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.MoodRating < 1 || req.MoodRating > 10 {
		writeError(w, http.StatusBadRequest, "mood_rating must be between 1 and 10")
		return
	}
	if req.StressLevel != 0 && (req.StressLevel < 1 || req.StressLevel > 10) {
		writeError(w, http.StatusBadRequest, "stress_level must be between 1 and 10")
		return
	}

	_, err := h.store.Activities().Log(&store.Activity{
		UserID:      id,
		Type:        store.ActivityMoodCheck,
		MoodRating:  req.MoodRating,
		StressLevel: req.StressLevel,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record mood")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// sessions handles GET /api/users/{id}/sessions.
func (h *UserHandler) sessions(w http.ResponseWriter, r *http.Request, id int64) {
	limit := queryInt(r, "limit", 20)
	list, err := h.store.Sessions().ListByUser(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if list == nil {
		list = []*store.FormSession{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": list})
}
