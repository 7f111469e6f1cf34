// Package tags normalizes vendor-specific dietary labels into the closed
// set of canonical dietary tags shared across all three parsers.
package tags

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Canonical dietary tags (closed set), per spec.md §3.2.
const (
	Vegan      = "vegan"
	Vegetarian = "vegetarian"
	GlutenFree = "gluten-free"
	Halal      = "halal"
	Mindful    = "mindful"
	Balanced   = "balanced"
	FarmToFork = "farm-to-fork"
	Humane     = "humane"
)

// dietaryTagMap maps a lowercased raw vendor tag to its canonical form.
// Vendor-agnostic: every parser feeds its raw labels through the same map.
var dietaryTagMap = map[string]string{
	"isvegan":      Vegan,
	"isvegetarian": Vegetarian,
	"ismindful":    Mindful,
	"vegan":        Vegan,
	"vegetarian":   Vegetarian,
	"made without gluten-containing ingredients": GlutenFree,
	"gluten free": GlutenFree,
	"in balance":  Balanced,
	"farm to fork": FarmToFork,
	"humane":      Humane,
	"halal":       Halal,
}

// Normalize maps raw vendor tags to the canonical set, dropping unknown
// tags and returning a sorted, deduplicated result. A dropped tag is logged
// at warn level only when logger is non-nil; the three vendor parsers pass
// nil, so their unknown tags are dropped without a log entry.
// Pure and idempotent: Normalize(Normalize(t)) == Normalize(t).
func Normalize(logger *zap.Logger, raw []string) []string {
	canonical := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		mapped, ok := dietaryTagMap[strings.ToLower(t)]
		if !ok {
			if logger != nil {
				logger.Warn("unknown dietary tag dropped", zap.String("tag", t))
			}
			continue
		}
		canonical[mapped] = struct{}{}
	}
	out := make([]string, 0, len(canonical))
	for t := range canonical {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
