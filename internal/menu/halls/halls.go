// Package halls holds the static registry mapping each dining hall to its
// vendor and vendor-specific connection details. The registry is code, not
// runtime config, since the consortium's hall lineup changes on the order of
// years, not deploys.
package halls

// Vendor identifies which scraper a hall is parsed by.
type Vendor string

const (
	Sodexo     Vendor = "sodexo"
	BonAppetit Vendor = "bonappetit"
	Pomona     Vendor = "pomona"
)

// Hall is one consortium dining hall's static registry entry.
type Hall struct {
	ID     string
	Name   string
	Vendor Vendor

	// BonAppetitCafeURL is the cafebonappetit.com URL template (with a
	// "{date}" placeholder) for BonAppetit halls; empty otherwise.
	BonAppetitCafeURL string

	// PomonaSlug is the pomona.edu dining-menu page slug for Pomona halls;
	// empty otherwise.
	PomonaSlug string

	// SplitOnSlash marks Pomona halls (Oldenborg) whose item names are
	// split on comma AND slash, rather than comma alone.
	SplitOnSlash bool
}

// registry is keyed by hall_id, grounded verbatim on menu_service.py's
// HALL_CONFIG plus the vendor-specific BAMCO_HALLS/POMONA_HALLS dicts.
var registry = map[string]Hall{
	"hoch": {
		ID: "hoch", Name: "Hoch-Shanahan", Vendor: Sodexo,
	},
	"collins": {
		ID: "collins", Name: "Collins", Vendor: BonAppetit,
		BonAppetitCafeURL: "https://collins-cmc.cafebonappetit.com/cafe/collins/{date}",
	},
	"malott": {
		ID: "malott", Name: "Malott", Vendor: BonAppetit,
		BonAppetitCafeURL: "https://scripps.cafebonappetit.com/cafe/malott-dining-commons/{date}",
	},
	"mcconnell": {
		ID: "mcconnell", Name: "McConnell", Vendor: BonAppetit,
		BonAppetitCafeURL: "https://pitzer.cafebonappetit.com/cafe/mcconnell-bistro/{date}",
	},
	"frank": {
		ID: "frank", Name: "Frank", Vendor: Pomona,
		PomonaSlug: "frank",
	},
	"frary": {
		ID: "frary", Name: "Frary", Vendor: Pomona,
		PomonaSlug: "frary",
	},
	"oldenborg": {
		ID: "oldenborg", Name: "Oldenborg", Vendor: Pomona,
		PomonaSlug: "oldenborg", SplitOnSlash: true,
	},
}

// Ordered is the consortium's canonical hall presentation order.
var Ordered = []string{"hoch", "collins", "malott", "mcconnell", "frank", "frary", "oldenborg"}

// Get looks up a hall by ID. ok is false for any ID outside the registry.
func Get(hallID string) (Hall, bool) {
	h, ok := registry[hallID]
	return h, ok
}

// All returns every registered hall in canonical order.
func All() []Hall {
	out := make([]Hall, 0, len(Ordered))
	for _, id := range Ordered {
		out = append(out, registry[id])
	}
	return out
}
