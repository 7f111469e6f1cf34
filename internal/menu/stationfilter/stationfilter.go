// Package stationfilter implements the data-driven station filtering
// pipeline shared by all three vendor parsers: merge aliases, hide, truncate,
// reorder, drop empty. Pure, no I/O — grounded on the v1 station filter
// logic (merge -> hide -> truncate -> sort -> remove empty).
package stationfilter

import (
	"sort"
	"strings"

	"github.com/claremont-dine/menu-api/internal/menu"
)

// Config is the per-vendor static station filter configuration, per
// spec.md §3.4.
type Config struct {
	// Combined maps canonical display name -> aliases (lowercased) that
	// should be merged under it.
	Combined map[string][]string
	// Hidden is the set of lowercased station names to drop.
	Hidden []string
	// Truncated maps lowercased station name -> item limit. A limit of -1
	// drops the station entirely; a positive limit caps item count.
	Truncated map[string]int
	// Ordered is the sort-priority list, lowercased. A name listed more than
	// once ranks by its first position.
	Ordered []string
}

// Apply runs the five-step pipeline in spec.md §4.2 order: merge, hide,
// truncate, sort, drop-empty. Every station in the result has at least one
// item and its lowercased name is not in config.Hidden.
func Apply(stations []menu.Station, cfg Config) []menu.Station {
	merged := mergeAliases(stations, cfg.Combined)
	visible := hide(merged, cfg.Hidden, cfg.Truncated)
	truncated := truncate(visible, cfg.Truncated)
	sorted := sortByPriority(truncated, cfg.Ordered)
	return dropEmpty(sorted)
}

func buildAliasMap(combined map[string][]string) map[string]string {
	aliasMap := make(map[string]string)
	for canonical, aliases := range combined {
		for _, alias := range aliases {
			aliasMap[strings.ToLower(alias)] = canonical
		}
	}
	return aliasMap
}

func mergeAliases(stations []menu.Station, combined map[string][]string) []menu.Station {
	aliasMap := buildAliasMap(combined)

	type entry struct {
		name  string
		items []menu.Item
	}
	byKey := make(map[string]*entry)
	var order []string

	for _, s := range stations {
		lowerName := strings.ToLower(s.Name)
		canonical, ok := aliasMap[lowerName]
		if !ok {
			canonical = s.Name
		}
		key := strings.ToLower(canonical)

		if e, exists := byKey[key]; exists {
			e.items = append(e.items, s.Items...)
			continue
		}
		items := make([]menu.Item, len(s.Items))
		copy(items, s.Items)
		byKey[key] = &entry{name: canonical, items: items}
		order = append(order, key)
	}

	out := make([]menu.Station, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		out = append(out, menu.Station{Name: e.name, Items: e.items})
	}
	return out
}

func hide(stations []menu.Station, hidden []string, truncated map[string]int) []menu.Station {
	hiddenSet := make(map[string]struct{}, len(hidden))
	for _, h := range hidden {
		hiddenSet[strings.ToLower(h)] = struct{}{}
	}
	truncateHidden := make(map[string]struct{})
	for name, limit := range truncated {
		if limit == -1 {
			truncateHidden[strings.ToLower(name)] = struct{}{}
		}
	}

	out := make([]menu.Station, 0, len(stations))
	for _, s := range stations {
		key := strings.ToLower(s.Name)
		if _, ok := hiddenSet[key]; ok {
			continue
		}
		if _, ok := truncateHidden[key]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

func truncate(stations []menu.Station, truncated map[string]int) []menu.Station {
	out := make([]menu.Station, 0, len(stations))
	for _, s := range stations {
		limit, ok := truncated[strings.ToLower(s.Name)]
		if ok && limit > 0 && limit < len(s.Items) {
			out = append(out, menu.Station{Name: s.Name, Items: s.Items[:limit]})
		} else {
			out = append(out, s)
		}
	}
	return out
}

// sortByPriority orders stations by their index in `ordered`; stations not
// listed sort after all listed ones, preserving relative order (stable).
func sortByPriority(stations []menu.Station, ordered []string) []menu.Station {
	orderMap := make(map[string]int, len(ordered))
	for i, name := range ordered {
		key := strings.ToLower(name)
		if _, seen := orderMap[key]; !seen {
			orderMap[key] = i
		}
	}

	ranks := make([]rankedStation, len(stations))
	for i, s := range stations {
		priority, ok := orderMap[strings.ToLower(s.Name)]
		if !ok {
			priority = len(ordered) + 1
		}
		ranks[i] = rankedStation{station: s, priority: priority, original: i}
	}

	// SliceStable preserves relative order within equal priority, matching
	// the spec's requirement that unlisted stations keep arrival order.
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].priority < ranks[j].priority
	})

	out := make([]menu.Station, len(ranks))
	for i, r := range ranks {
		out[i] = r.station
	}
	return out
}

type rankedStation struct {
	station  menu.Station
	priority int
	original int
}

func dropEmpty(stations []menu.Station) []menu.Station {
	out := make([]menu.Station, 0, len(stations))
	for _, s := range stations {
		if len(s.Items) > 0 {
			out = append(out, s)
		}
	}
	return out
}
