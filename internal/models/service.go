package models

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/uptrace/bun"
)

// Category classifies a health service for display.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryTraditional
	CategoryCommunity
	CategoryWestern
)

// ParseCategory accepts both the short fixture values ("traditional") and the
// long names ("traditional-healing"). Anything else is CategoryUnknown.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "traditional", "traditional-healing":
		return CategoryTraditional
	case "community", "community-health":
		return CategoryCommunity
	case "western", "western-medicine":
		return CategoryWestern
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryTraditional:
		return "traditional-healing"
	case CategoryCommunity:
		return "community-health"
	case CategoryWestern:
		return "western-medicine"
	default:
		return "unknown"
	}
}

// Label is the human-readable legend name.
func (c Category) Label() string {
	switch c {
	case CategoryTraditional:
		return "Traditional Healing"
	case CategoryCommunity:
		return "Community Health"
	case CategoryWestern:
		return "Western Medicine"
	default:
		return "Other"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText never fails; unrecognised values decode to CategoryUnknown.
func (c *Category) UnmarshalText(b []byte) error {
	*c = ParseCategory(string(b))
	return nil
}

// HealthService is a point-of-care provider anchored to a territory.
type HealthService struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Category              Category  `json:"type"`
	Description           string    `json:"description"`
	Address               string    `json:"address"`
	Phone                 string    `json:"phone,omitempty"`
	Website               string    `json:"website,omitempty"`
	OpeningHours          string    `json:"openingHours,omitempty"`
	Offered               []string  `json:"services"`
	Location              orb.Point `json:"coordinates"` // [lng, lat]
	TerritoryID           string    `json:"territoryId"`
	CulturallyAppropriate bool      `json:"culturallyAppropriate"`
}

// HealthServiceRecord maps the health_services table
type HealthServiceRecord struct {
	bun.BaseModel `bun:"table:health_services,alias:hs"`

	ID                    string   `bun:"id,pk"`
	Name                  string   `bun:"name"`
	Category              string   `bun:"category"`
	Description           string   `bun:"description"`
	Address               string   `bun:"address"`
	Phone                 *string  `bun:"phone"`
	Website               *string  `bun:"website"`
	OpeningHours          *string  `bun:"opening_hours"`
	Offered               []string `bun:"offered,array"`
	Longitude             float64  `bun:"lon"`
	Latitude              float64  `bun:"lat"`
	TerritoryID           string   `bun:"territory_id"`
	CulturallyAppropriate bool     `bun:"culturally_appropriate"`
	SortOrder             int      `bun:"sort_order"`
}

// ToModel converts a row into the catalog representation
func (r HealthServiceRecord) ToModel() HealthService {
	return HealthService{
		ID:                    r.ID,
		Name:                  r.Name,
		Category:              ParseCategory(r.Category),
		Description:           r.Description,
		Address:               r.Address,
		Phone:                 deref(r.Phone),
		Website:               deref(r.Website),
		OpeningHours:          deref(r.OpeningHours),
		Offered:               r.Offered,
		Location:              orb.Point{r.Longitude, r.Latitude},
		TerritoryID:           r.TerritoryID,
		CulturallyAppropriate: r.CulturallyAppropriate,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
