// Package form provides stretch form classification and session scoring
// over extracted pose landmarks.
package form

import "strings"

// Category selects which classifier rule-set applies to a stretch.
type Category int

const (
	// CategoryGeneric is the fallback for stretches with no dedicated
	// rule-set; it only checks that a pose is present.
	CategoryGeneric Category = iota
	// CategoryNeck covers lateral neck stretches scored by head tilt.
	CategoryNeck
	// CategoryShoulder covers shoulder raises and rolls scored by
	// shoulder angles.
	CategoryShoulder
	// CategoryBack covers forward bends scored by hip flexion.
	CategoryBack
)

// String returns the category name as used in the stretch catalog.
func (c Category) String() string {
	switch c {
	case CategoryNeck:
		return "neck"
	case CategoryShoulder:
		return "shoulder"
	case CategoryBack:
		return "back"
	default:
		return "generic"
	}
}

// ParseCategory maps a catalog category name to a Category.
// Matching is by substring, first match wins; anything unrecognized
// falls back to CategoryGeneric.
func ParseCategory(s string) Category {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "neck"):
		return CategoryNeck
	case strings.Contains(s, "shoulder"):
		return CategoryShoulder
	case strings.Contains(s, "back"):
		return CategoryBack
	default:
		return CategoryGeneric
	}
}
