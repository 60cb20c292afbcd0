package api

import (
	"net/http"
	"strings"

	"github.com/renderix/deskwell/internal/catalog"
)

// StretchHandler serves the stretch catalog.
type StretchHandler struct {
	catalog *catalog.Catalog
}

// NewStretchHandler creates a new StretchHandler with the given catalog.
func NewStretchHandler(c *catalog.Catalog) *StretchHandler {
	return &StretchHandler{catalog: c}
}

type listStretchesResponse struct {
	Stretches []catalog.Stretch `json:"stretches"`
}

// ServeHTTP routes catalog requests.
// Expected paths: /api/stretches or /api/stretches/{id}
func (h *StretchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/stretches")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}
	h.get(w, r, path)
}

// list handles GET /api/stretches with optional category and difficulty
// filters.
func (h *StretchHandler) list(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")

	var stretches []catalog.Stretch
	if category != "" {
		stretches = h.catalog.ByCategory(category)
	} else {
		stretches = h.catalog.All()
	}

	if difficulty != "" {
		var filtered []catalog.Stretch
		for _, s := range stretches {
			if s.Difficulty == difficulty {
				filtered = append(filtered, s)
			}
		}
		stretches = filtered
	}

	if stretches == nil {
		stretches = []catalog.Stretch{}
	}
	writeJSON(w, http.StatusOK, listStretchesResponse{Stretches: stretches})
}

// get handles GET /api/stretches/{id}.
func (h *StretchHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, ok := h.catalog.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Stretch not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// RoutineHandler serves predefined stretch routines.
type RoutineHandler struct {
	catalog *catalog.Catalog
}

// NewRoutineHandler creates a new RoutineHandler with the given catalog.
func NewRoutineHandler(c *catalog.Catalog) *RoutineHandler {
	return &RoutineHandler{catalog: c}
}

// ServeHTTP routes routine requests.
// Expected paths: /api/routines or /api/routines/{key}
func (h *RoutineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/routines")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"routines": h.catalog.Routines()})
		return
	}

	routine, ok := h.catalog.Routine(path)
	if !ok {
		writeError(w, http.StatusNotFound, "Routine not found")
		return
	}
	writeJSON(w, http.StatusOK, routine)
}
