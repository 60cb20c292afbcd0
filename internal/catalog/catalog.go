// Package catalog provides the stretch library: guided stretches,
// their categories, and named routines.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

//go:embed stretches.json
var defaultLibrary []byte

// Stretch describes one guided stretch from the library.
type Stretch struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Difficulty      string   `json:"difficulty"`
	DurationSeconds int      `json:"duration_seconds"`
	Points          int      `json:"points"`
	Description     string   `json:"description"`
	Instructions    []string `json:"instructions"`
}

// CategoryInfo is display metadata for a stretch category.
type CategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Routine is an ordered sequence of stretches from the library.
type Routine struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StretchIDs  []string `json:"stretch_ids"`
}

// Catalog is an immutable, loaded stretch library.
type Catalog struct {
	stretches  []Stretch
	byID       map[string]*Stretch
	byName     map[string]*Stretch
	categories map[string]CategoryInfo
	routines   map[string]Routine
}

type libraryFile struct {
	Stretches  []Stretch               `json:"stretches"`
	Categories map[string]CategoryInfo `json:"categories"`
	Routines   map[string]Routine      `json:"routines"`
}

// Load reads a stretch library from the given JSON file, falling back to
// the embedded default library when path is empty or the file does not
// exist.
func Load(path string) (*Catalog, error) {
	data := defaultLibrary
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read stretch library: %w", err)
		}
	}

	var lib libraryFile
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse stretch library: %w", err)
	}

	c := &Catalog{
		stretches:  lib.Stretches,
		byID:       make(map[string]*Stretch, len(lib.Stretches)),
		byName:     make(map[string]*Stretch, len(lib.Stretches)),
		categories: lib.Categories,
		routines:   lib.Routines,
	}
	for i := range c.stretches {
		s := &c.stretches[i]
		c.byID[s.ID] = s
		c.byName[s.Name] = s
	}

	return c, nil
}

// All returns every stretch in the library.
func (c *Catalog) All() []Stretch {
	out := make([]Stretch, len(c.stretches))
	copy(out, c.stretches)
	return out
}

// ByID returns the stretch with the given stable identifier.
func (c *Catalog) ByID(id string) (*Stretch, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// ByName returns the stretch with the given display name.
func (c *Catalog) ByName(name string) (*Stretch, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// ByCategory returns all stretches in the given category.
func (c *Catalog) ByCategory(category string) []Stretch {
	var out []Stretch
	for _, s := range c.stretches {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Random returns a random stretch, optionally filtered by difficulty.
// An empty difficulty matches everything. Returns false when nothing
// matches.
func (c *Catalog) Random(difficulty string) (*Stretch, bool) {
	var candidates []*Stretch
	for i := range c.stretches {
		if difficulty == "" || c.stretches[i].Difficulty == difficulty {
			candidates = append(candidates, &c.stretches[i])
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// Categories returns the category metadata map.
func (c *Catalog) Categories() map[string]CategoryInfo {
	return c.categories
}

// Routine returns a routine by key.
func (c *Catalog) Routine(key string) (Routine, bool) {
	r, ok := c.routines[key]
	return r, ok
}

// Routines returns all routines keyed by name.
func (c *Catalog) Routines() map[string]Routine {
	return c.routines
}
