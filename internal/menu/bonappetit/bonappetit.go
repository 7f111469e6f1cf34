// Package bonappetit parses Collins, Malott, and McConnell's Bon Appetit
// (BAMCO) cafe pages: two inline JavaScript object assignments
// (Bamco.menu_items and Bamco.dayparts) embedded in otherwise static HTML.
package bonappetit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/halls"
	"github.com/claremont-dine/menu-api/internal/menu/stationfilter"
	"github.com/claremont-dine/menu-api/internal/menu/tags"
	"github.com/claremont-dine/menu-api/internal/pkg/httpclient"
)

// Filter is the shared BonAppetit station filter configuration, carried
// verbatim from the original BONAPPETIT_FILTER dict.
var Filter = stationfilter.Config{
	Hidden: []string{
		"breakfast toppings", "breads, bagels and spreads", "cold cereals",
		"cold cereal", "fruits and yogurts", "beverage", "beverages",
		"build your own sandwich", "cereal", "toppings & condiments",
		"deli bar",
	},
	Ordered: []string{
		"chef's table", "main plate", "breakfast", "breakfast @home",
		"@home", "@ home", "breakfast options", "expo", "global",
		"options", "expo - mongolian", "expo - little italy", "grill",
		"pasta - express", "ovens", "collins late night snack", "vegan",
		"vegan salads", "vegan - hummus & pita", "sweets", "stock pot",
		"stocks",
	},
	Truncated: map[string]int{
		"breakfast grill": 5, "salad bar": -1, "grill": 3, "omelet bar": -1,
		"breakfast": 12, "breakfast @home": 3, "breakfast options": 5,
		"juice and smoothie bar": -1, "expo - mongolian": -1,
		"expo - little italy": 3, "chef's table - pasta bar": -1,
		"chef's table - taco bar": -1,
	},
	Combined: map[string][]string{
		"grill special": {"grill"},
		"sweets":        {"sweets", "chocolate chip cookies"},
		"main plate":    {"main plate", "main plate in balance"},
		"ovens":         {"ovens", "ovens2"},
	},
}

var (
	reMenuItems = regexp.MustCompile(`Bamco\.menu_items\s*=\s*(\{[^;]+\});`)
	reDayparts  = regexp.MustCompile(`Bamco\.dayparts\['(\d+)'\]\s*=\s*(\{[^;]+\});`)
	reHTMLTags  = regexp.MustCompile(`<[^>]+>`)
)

func cleanStationLabel(raw string) string {
	cleaned := reHTMLTags.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "@")
	return strings.TrimSpace(cleaned)
}

// Parser scrapes one BonAppetit-powered hall.
type Parser struct {
	hall   halls.Hall
	client *http.Client
}

// New builds a BonAppetit parser for the given hall_id. hallID must be
// registered in the halls package with Vendor == halls.BonAppetit.
func New(hallID string) (*Parser, error) {
	h, ok := halls.Get(hallID)
	if !ok || h.Vendor != halls.BonAppetit {
		return nil, fmt.Errorf("unknown BonAppetit hall %q", hallID)
	}
	return &Parser{hall: h, client: httpclient.New()}, nil
}

func (p *Parser) HallID() string      { return p.hall.ID }
func (p *Parser) MinStationCount() int { return 1 }

func (p *Parser) buildURL(date string) string {
	return strings.ReplaceAll(p.hall.BonAppetitCafeURL, "{date}", date)
}

func (p *Parser) FetchRaw(ctx context.Context, date string) (string, error) {
	req, err := httpclient.NewRequest(p.buildURL(date))
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type baItem struct {
	Label   string          `json:"label"`
	Special json.RawMessage `json:"special"`
	CorIcon json.RawMessage `json:"cor_icon"`
}

// isSpecial applies the vendor's truthiness rule: a non-zero integer or a
// non-empty string counts, matching the wire shapes BAMCO actually sends
// (bool only shows up in hand-written fixtures, never on real pages).
func isSpecial(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, err := n.Float64()
		return err == nil && f != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != ""
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return false
}

// corIconTags extracts dietary-tag values when cor_icon is object-shaped.
// The vendor sometimes sends a list instead; per spec, that shape yields no
// tags rather than guessing at a mapping.
func corIconTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil
	}
	out := make([]string, 0, len(asMap))
	for _, v := range asMap {
		out = append(out, v)
	}
	return out
}

type baStationRef struct {
	Label string        `json:"label"`
	Items []json.Number `json:"items"`
}

type baDaypart struct {
	Label    string         `json:"label"`
	Stations []baStationRef `json:"stations"`
}

// Parse interprets one BAMCO cafe page's inline JS payload. Pure, no I/O.
func (p *Parser) Parse(raw string, date string) (menu.Menu, error) {
	menuItems, err := extractMenuItems(raw)
	if err != nil {
		return menu.Menu{}, err
	}
	dayparts, err := extractDayparts(raw)
	if err != nil {
		return menu.Menu{}, err
	}

	var meals []menu.Meal
	for _, dp := range dayparts {
		label := dp.Label
		if label == "" {
			label = "Unknown"
		}
		stations := buildStations(dp, menuItems)
		filtered := stationfilter.Apply(stations, Filter)
		if len(filtered) > 0 {
			meals = append(meals, menu.Meal{Period: strings.ToLower(label), Stations: filtered})
		}
	}

	return menu.Menu{HallID: p.HallID(), Date: date, Meals: meals}, nil
}

func extractMenuItems(html string) (map[string]baItem, error) {
	m := reMenuItems.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("could not find Bamco.menu_items in page")
	}
	var items map[string]baItem
	if err := json.Unmarshal([]byte(m[1]), &items); err != nil {
		return nil, fmt.Errorf("decode Bamco.menu_items: %w", err)
	}
	return items, nil
}

func extractDayparts(html string) ([]baDaypart, error) {
	matches := reDayparts.FindAllStringSubmatch(html, -1)
	if matches == nil {
		return nil, fmt.Errorf("could not find Bamco.dayparts in page")
	}
	out := make([]baDaypart, 0, len(matches))
	for _, m := range matches {
		var dp baDaypart
		if err := json.Unmarshal([]byte(m[2]), &dp); err != nil {
			return nil, fmt.Errorf("decode Bamco.dayparts['%s']: %w", m[1], err)
		}
		out = append(out, dp)
	}
	return out, nil
}

// buildStations filters items by the "special" flag (only items actively
// being served), extracts dietary tags from cor_icon values, cleans station
// labels, and deduplicates items within each station by lowercased label.
func buildStations(dp baDaypart, menuItems map[string]baItem) []menu.Station {
	stations := make([]menu.Station, 0, len(dp.Stations))
	for _, st := range dp.Stations {
		name := cleanStationLabel(st.Label)
		if name == "" {
			continue
		}

		seen := make(map[string]struct{})
		var items []menu.Item
		for _, idNum := range st.Items {
			data, ok := menuItems[idNum.String()]
			if !ok || !isSpecial(data.Special) {
				continue
			}
			label := strings.TrimSpace(data.Label)
			if label == "" {
				continue
			}
			key := strings.ToLower(label)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			items = append(items, menu.NewItem(label, tags.Normalize(nil, corIconTags(data.CorIcon))))
		}
		stations = append(stations, menu.Station{Name: name, Items: items})
	}
	return stations
}
