// Package pomona parses Frank, Frary, and Oldenborg's menu feeds. Unlike
// the other two vendors, Pomona requires a two-step fetch: the public menu
// page is scraped only to discover a JSON feed URL, which is then fetched
// and parsed.
package pomona

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/halls"
	"github.com/claremont-dine/menu-api/internal/menu/stationfilter"
	"github.com/claremont-dine/menu-api/internal/menu/tags"
	"github.com/claremont-dine/menu-api/internal/pkg/httpclient"
)

const (
	pageURLTemplate         = "https://www.pomona.edu/administration/dining/menus/%s"
	fallbackJSONURLTemplate = "https://my.pomona.edu/eatec/%s.json"
)

// Filter is the shared Pomona station filter configuration, carried
// verbatim from the original POMONA_FILTER dict.
var Filter = stationfilter.Config{
	Ordered: []string{
		"entree", "expo", "grill", "mainline", "starch", "pizza",
		"allergen friendly station", "salad", "salad bar", "vegetable",
		"vegan/veggie", "soup", "deli-salad", "dessert",
	},
	Truncated: map[string]int{
		"breakfast grill": 5,
	},
	Combined: map[string][]string{
		"Grill": {"grill", "grill station"},
		"Soup":  {"soup", "soup station", "soups"},
		"Expo":  {"expo", "expo station"},
	},
}

// Parser scrapes one Pomona dining hall (Frank, Frary, or Oldenborg).
type Parser struct {
	hall   halls.Hall
	client *http.Client
}

// New builds a Pomona parser for the given hall_id. hallID must be
// registered in the halls package with Vendor == halls.Pomona.
func New(hallID string) (*Parser, error) {
	h, ok := halls.Get(hallID)
	if !ok || h.Vendor != halls.Pomona {
		return nil, fmt.Errorf("unknown Pomona hall %q", hallID)
	}
	return &Parser{hall: h, client: httpclient.New()}, nil
}

func (p *Parser) HallID() string      { return p.hall.ID }
func (p *Parser) MinStationCount() int { return 1 }

// discoverJSONURL extracts the feed URL from the menu page's
// #dining-menu-from-json node, falling back to the known eatec URL pattern
// if the attribute is absent.
func (p *Parser) discoverJSONURL(pageHTML string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML)); err == nil {
		sel := doc.Find("#dining-menu-from-json")
		if sel.Length() > 0 {
			if url, ok := sel.Attr("data-dining-menu-json-url"); ok && url != "" {
				return url
			}
		}
	}
	return fmt.Sprintf(fallbackJSONURLTemplate, p.hall.Name)
}

func (p *Parser) get(ctx context.Context, url string) (string, error) {
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
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchRaw performs the two-step fetch: page HTML -> JSON URL -> JSON body.
// The JSON body (not the page HTML) is what Parse expects.
func (p *Parser) FetchRaw(ctx context.Context, date string) (string, error) {
	pageURL := fmt.Sprintf(pageURLTemplate, p.hall.PomonaSlug)
	pageHTML, err := p.get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch menu page: %w", err)
	}

	jsonURL := p.discoverJSONURL(pageHTML)
	jsonBody, err := p.get(ctx, jsonURL)
	if err != nil {
		return "", fmt.Errorf("fetch json feed: %w", err)
	}
	return jsonBody, nil
}

type eatecRoot struct {
	EatecExchange struct {
		Menu json.RawMessage `json:"menu"`
	} `json:"EatecExchange"`
}

type eatecEntry struct {
	ServeDate       string `json:"@servedate"`
	MealPeriodName  string `json:"@mealperiodname"`
	MenuBulletin    string `json:"@menubulletin"`
	Recipes         struct {
		Recipe json.RawMessage `json:"recipe"`
	} `json:"recipes"`
}

type eatecRecipe struct {
	DisplayOnWebsite string `json:"@displayonwebsite"`
	ShortName        string `json:"@shortName"`
	Category         string `json:"@category"`
	DietaryChoices   struct {
		DietaryChoice json.RawMessage `json:"dietaryChoice"`
	} `json:"dietaryChoices"`
}

type eatecDietaryChoice struct {
	ID   string `json:"@id"`
	Text string `json:"#text"`
}

var oldenborgSplitRe = regexp.MustCompile(`[,/]\s*`)

// Parse interprets one EatecExchange JSON feed. Pure, no I/O. Handles the
// single-entry edge case where the vendor returns an object instead of a
// one-element array, and splits combined item names on comma (or
// comma-and-slash for Oldenborg).
func (p *Parser) Parse(raw string, date string) (menu.Menu, error) {
	var root eatecRoot
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return menu.Menu{}, fmt.Errorf("decode EatecExchange root: %w", err)
	}

	entries, err := decodeOneOrMany[eatecEntry](root.EatecExchange.Menu)
	if err != nil {
		return menu.Menu{}, fmt.Errorf("decode menu entries: %w", err)
	}

	targetStr := strings.ReplaceAll(date, "-", "")
	var mealOrder []string
	mealStations := make(map[string][]menu.Station)

	for _, entry := range entries {
		if entry.ServeDate != targetStr {
			continue
		}
		mealPeriod := entry.MealPeriodName
		if mealPeriod == "" {
			continue
		}
		if strings.EqualFold(mealPeriod, "closed") || strings.EqualFold(entry.MenuBulletin, "closed") {
			continue
		}

		recipes, err := decodeOneOrMany[eatecRecipe](entry.Recipes.Recipe)
		if err != nil {
			return menu.Menu{}, fmt.Errorf("decode recipes: %w", err)
		}

		stations, err := p.buildStations(recipes)
		if err != nil {
			return menu.Menu{}, err
		}
		filtered := stationfilter.Apply(stations, Filter)

		mealKey := strings.ToLower(mealPeriod)
		if _, ok := mealStations[mealKey]; !ok {
			mealOrder = append(mealOrder, mealKey)
		}
		mealStations[mealKey] = append(mealStations[mealKey], filtered...)
	}

	var meals []menu.Meal
	for _, key := range mealOrder {
		stations := mealStations[key]
		if len(stations) > 0 {
			meals = append(meals, menu.Meal{Period: key, Stations: stations})
		}
	}

	return menu.Menu{HallID: p.HallID(), Date: date, Meals: meals}, nil
}

// buildStations groups recipes by category, preserving first-seen order,
// and splits combined item names per-hall.
func (p *Parser) buildStations(recipes []eatecRecipe) ([]menu.Station, error) {
	order := make([]string, 0, len(recipes))
	byCategory := make(map[string][]menu.Item)
	displayName := make(map[string]string)

	for _, recipe := range recipes {
		if recipe.DisplayOnWebsite != "" && recipe.DisplayOnWebsite != "Y" {
			continue
		}
		rawName := strings.TrimSpace(recipe.ShortName)
		if rawName == "" {
			continue
		}
		category := strings.TrimSpace(recipe.Category)
		if category == "" {
			category = "Miscellaneous"
		}

		rawTags, err := extractDietaryTags(recipe)
		if err != nil {
			return nil, err
		}
		normalizedTags := tags.Normalize(nil, rawTags)

		for _, name := range p.splitItemName(rawName) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(category)
			if _, ok := byCategory[key]; !ok {
				order = append(order, key)
				displayName[key] = category
			}
			byCategory[key] = append(byCategory[key], menu.NewItem(name, normalizedTags))
		}
	}

	stations := make([]menu.Station, 0, len(order))
	for _, key := range order {
		stations = append(stations, menu.Station{Name: displayName[key], Items: byCategory[key]})
	}
	return stations, nil
}

// splitItemName splits combined item names by comma (all halls) or
// comma-and-slash (Oldenborg only).
func (p *Parser) splitItemName(name string) []string {
	var parts []string
	if p.hall.SplitOnSlash {
		parts = oldenborgSplitRe.Split(name, -1)
	} else {
		parts = strings.Split(name, ",")
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// extractDietaryTags reads a recipe's dietaryChoices, keeping only choices
// whose #text is "Yes".
func extractDietaryTags(recipe eatecRecipe) ([]string, error) {
	choices, err := decodeOneOrMany[eatecDietaryChoice](recipe.DietaryChoices.DietaryChoice)
	if err != nil {
		return nil, fmt.Errorf("decode dietary choices: %w", err)
	}
	var raw []string
	for _, c := range choices {
		if c.Text == "Yes" && c.ID != "" {
			raw = append(raw, c.ID)
		}
	}
	return raw, nil
}

// decodeOneOrMany handles EatecExchange's single-item edge case, where a
// collection with exactly one member is serialized as a bare object instead
// of a one-element array.
func decodeOneOrMany[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asSlice []T
	if err := json.Unmarshal(raw, &asSlice); err == nil {
		return asSlice, nil
	}

	var single T
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}
