package menu

import (
	"context"
	"time"
)

// Parser is the contract every vendor scraper implements. FetchRaw and
// Parse are kept separate so Parse can be exercised against saved fixtures
// without network access, per spec.md's fetch/parse split.
type Parser interface {
	HallID() string

	// FetchRaw performs the vendor-specific network I/O and returns the raw
	// response body (HTML or JSON, depending on vendor).
	FetchRaw(ctx context.Context, date string) (string, error)

	// Parse interprets raw content into a Menu. Pure: no I/O.
	Parse(raw string, date string) (Menu, error)

	// MinStationCount is the minimum station count a valid meal must have;
	// a meal with fewer stations fails Validate.
	MinStationCount() int
}

// Validate applies the structural check every parser's output must pass:
// at least one meal, and every meal with at least MinStationCount stations.
func Validate(p Parser, m Menu) error {
	if len(m.Meals) == 0 {
		return &ValidationError{HallID: p.HallID(), Reason: "no meals"}
	}
	min := p.MinStationCount()
	for _, meal := range m.Meals {
		if len(meal.Stations) < min {
			return &ValidationError{
				HallID: p.HallID(),
				Reason: "meal " + meal.Period + " has fewer than the minimum station count",
			}
		}
	}
	return nil
}

// FetchAndParse runs the full fetch -> parse -> validate pipeline, the Go
// equivalent of BaseParser.fetch_and_parse. A fetch or parse failure is
// returned as a *FetchError or *ParseError, which the fallback orchestrator
// records as an "error" run. A menu that fails Validate returns
// (Menu{}, false, nil), signalling "no live data" without an error.
func FetchAndParse(ctx context.Context, p Parser, date string) (Menu, bool, error) {
	raw, err := p.FetchRaw(ctx, date)
	if err != nil {
		return Menu{}, false, &FetchError{HallID: p.HallID(), Err: err}
	}

	m, err := p.Parse(raw, date)
	if err != nil {
		return Menu{}, false, &ParseError{HallID: p.HallID(), Err: err}
	}

	if err := Validate(p, m); err != nil {
		return Menu{}, false, nil
	}

	return m, true, nil
}

// Clock abstracts time.Now. Nothing in this module takes a Clock; the
// orchestrator and the snapshot store call time.Now directly.
type Clock func() time.Time

// RealClock is a Clock backed by time.Now.
func RealClock() time.Time { return time.Now() }
