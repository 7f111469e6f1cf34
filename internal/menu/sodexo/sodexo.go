// Package sodexo parses Hoch-Shanahan's Sodexo BiteMenu page: a week of
// menu data embedded as JSON inside an HTML "#nutData" div.
package sodexo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	aho_corasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/stationfilter"
	"github.com/claremont-dine/menu-api/internal/menu/tags"
	"github.com/claremont-dine/menu-api/internal/pkg/httpclient"
)

// urlTemplate is the Hoch-Shanahan BiteMenu endpoint; menuId/locationId are
// fixed per hall, date is the only variable.
const urlTemplate = "https://menus.sodexomyway.com/BiteMenu/MenuOnly?menuId=15258&locationId=13147001&startdate=%s"

// Filter is Hoch-Shanahan's station filter configuration, carried verbatim
// from the original SODEXO_FILTER dict.
var Filter = stationfilter.Config{
	Hidden: []string{
		"salad bar", "deli bar", "hot cereal", "sub connection",
		"deli bar hmc", "deli", "have a great day", "have a great day!",
		"rice", "potatoes", "sauces", "action-made to order",
	},
	Ordered: []string{
		"exhibition", "entree", "entrees", "dim sum", "entrees", "entree",
		"chicken entree", "beef entree", "fish/seafood entree", "pork",
		"action", "creations", "creations lto's", "breakfast grill",
		"chef's corner lto's", "chef's corner", "international", "oven",
		"taco bar", "breakfast", "grill breakfast", "grill",
		"the grill dinner", "vegetarian entrees", "special salad station",
		"veggie valley", "pasta/noodles", "pizza", "simple servings",
		"vegetables", "miscellaneous", "soups", "soup bar",
		"specialty salads", "hmc special salad", "salad", "hmc salad",
		"stg", "dessert", "desserts", "fruit bar", "bakery",
		"salad bar yogurt",
	},
	Truncated: map[string]int{
		"breakfast grill": 5, "salad bar": -1, "grill": 3, "omelet bar": -1,
		"breakfast": 12, "breakfast @home": 3, "breakfast options": -1,
		"international": 6, "burger shack": -1,
	},
	Combined: map[string][]string{
		"Special Salad Station": {
			"hmc salad", "special hot station salad north",
			"special bar salad-s", "special hot station salad south",
			"special station salad north", "special station salad south",
		},
		"Miscellaneous":    {"misc", "-"},
		"Soups":            {"stew", "stews", "soup"},
		"Breakfast Grill":  {"breakfast grill", "grill breakfast"},
		"The Grill Dinner": {"the grill dinner"},
		"Entree":           {"entree", "entrees"},
	},
}

var nutDataRe = regexp.MustCompile(`(?is)<div[^>]*id\s*=\s*["']nutData["'][^>]*>(.*?)</div>`)

var titleCaser = cases.Title(language.English)

// stationReplacer fixes title-case artifacts left by ALL-CAPS normalization
// (" And " -> " and ", " To " -> " to ", "Hmc" -> "HMC") in a single pass so
// overlapping matches can't interfere with each other.
var stationReplacer = buildStationReplacer()

func buildStationReplacer() aho_corasick.AhoCorasick {
	builder := aho_corasick.NewAhoCorasickBuilder(aho_corasick.Opts{
		AsciiCaseInsensitive: false,
		MatchKind:            aho_corasick.LeftMostFirstMatch,
		DFA:                  true,
	})
	return builder.Build([]string{" And ", " To ", "Hmc"})
}

func applyStationReplacements(s string) string {
	matches := stationReplacer.FindAll(s)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m.Start()])
		switch m.Pattern() {
		case 0:
			b.WriteString(" and ")
		case 1:
			b.WriteString(" to ")
		case 2:
			b.WriteString("HMC")
		}
		last = m.End()
	}
	b.WriteString(s[last:])
	return b.String()
}

// normalizeStationName matches v1 PHP behavior: strip trailing " SCR",
// title-case ALL-CAPS names with word-fixups, collapse blank/dash names to
// "Miscellaneous".
func normalizeStationName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" || name == "-" {
		return "Miscellaneous"
	}
	if strings.HasSuffix(name, " SCR") {
		name = strings.TrimSpace(strings.TrimSuffix(name, " SCR"))
	}
	if isUpper(name) {
		name = titleCaser.String(strings.ToLower(name))
		name = applyStationReplacements(name)
	}
	return strings.TrimSpace(name)
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// Parser scrapes Hoch-Shanahan's Sodexo BiteMenu.
type Parser struct {
	client *http.Client
}

// New builds a Sodexo parser using the shared HTTP client factory.
func New() *Parser {
	return &Parser{client: httpclient.New()}
}

func (p *Parser) HallID() string      { return "hoch" }
func (p *Parser) MinStationCount() int { return 1 }

func (p *Parser) FetchRaw(ctx context.Context, date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parse date: %w", err)
	}
	url := fmt.Sprintf(urlTemplate, t.Format("01/02/2006"))

	req, err := httpclient.NewRequest(url)
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

// Parse interprets the BiteMenu HTML payload for the target date. Pure, no
// I/O: exercised directly by tests against saved fixtures.
func (p *Parser) Parse(raw string, date string) (menu.Menu, error) {
	jsonText, err := extractJSON(raw)
	if err != nil {
		return menu.Menu{}, err
	}

	var days []sodexoDay
	if err := json.Unmarshal([]byte(jsonText), &days); err != nil {
		return menu.Menu{}, fmt.Errorf("decode menu json: %w", err)
	}

	var meals []menu.Meal
	for _, day := range days {
		dayDate := day.Date
		if len(dayDate) >= 10 {
			dayDate = dayDate[:10]
		}
		if dayDate != date {
			continue
		}
		for _, dp := range day.DayParts {
			if m, ok := parseDayPart(dp); ok {
				meals = append(meals, m)
			}
		}
	}

	return menu.Menu{HallID: p.HallID(), Date: date, Meals: meals}, nil
}

// extractJSON pulls the JSON payload out of the #nutData div. Primary path
// uses goquery; falls back to a regex scan if goquery can't find the node
// (some Sodexo responses are malformed enough to trip the HTML tokenizer).
func extractJSON(html string) (string, error) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if sel := doc.Find("#nutData"); sel.Length() > 0 {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text, nil
			}
		}
	}

	if m := nutDataRe.FindStringSubmatch(html); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("could not extract menu JSON: #nutData div not found or empty")
}

type sodexoDay struct {
	Date     string          `json:"date"`
	DayParts []sodexoDayPart `json:"dayParts"`
}

type sodexoDayPart struct {
	Name    string         `json:"dayPartName"`
	Courses []sodexoCourse `json:"courses"`
}

type sodexoCourse struct {
	Name      string            `json:"courseName"`
	MenuItems []sodexoMenuItem  `json:"menuItems"`
}

type sodexoMenuItem struct {
	FormalName   string `json:"formalName"`
	IsVegan      bool   `json:"isVegan"`
	IsVegetarian bool   `json:"isVegetarian"`
	IsMindful    bool   `json:"isMindful"`
}

// parseDayPart builds one meal period, merging items into stations with the
// same normalized name, applying the station filter pipeline, and dropping
// the meal entirely when filtering leaves no stations (v1 behavior: an
// empty meal never reaches the client).
func parseDayPart(dp sodexoDayPart) (menu.Meal, bool) {
	mealName := strings.ToLower(strings.TrimSpace(dp.Name))
	if mealName == "" {
		return menu.Meal{}, false
	}

	stationOrder := make([]string, 0, len(dp.Courses))
	stationMap := make(map[string]menu.Station, len(dp.Courses))

	for _, course := range dp.Courses {
		normalized := normalizeStationName(course.Name)
		items := parseItems(course.MenuItems)

		if normalized == "Miscellaneous" && len(items) == 0 {
			continue
		}

		key := strings.ToLower(normalized)
		if existing, ok := stationMap[key]; ok {
			existing.Items = append(existing.Items, items...)
			stationMap[key] = existing
			continue
		}
		stationMap[key] = menu.Station{Name: normalized, Items: items}
		stationOrder = append(stationOrder, key)
	}

	stations := make([]menu.Station, 0, len(stationOrder))
	for _, key := range stationOrder {
		stations = append(stations, stationMap[key])
	}

	filtered := stationfilter.Apply(stations, Filter)
	if len(filtered) == 0 {
		return menu.Meal{}, false
	}

	return menu.Meal{Period: mealName, Stations: filtered}, true
}

func parseItems(raw []sodexoMenuItem) []menu.Item {
	items := make([]menu.Item, 0, len(raw))
	for _, it := range raw {
		name := strings.TrimSpace(it.FormalName)
		if name == "" {
			continue
		}
		var rawTags []string
		if it.IsVegan {
			rawTags = append(rawTags, "isvegan")
		}
		if it.IsVegetarian {
			rawTags = append(rawTags, "isvegetarian")
		}
		if it.IsMindful {
			rawTags = append(rawTags, "ismindful")
		}
		items = append(items, menu.NewItem(name, tags.Normalize(nil, rawTags)))
	}
	return items
}
