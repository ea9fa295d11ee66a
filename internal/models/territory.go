package models

import (
	"github.com/paulmach/orb"
	"github.com/uptrace/bun"
)

// Territory is a named First Nations region with a polygon boundary.
type Territory struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Language    string      `json:"language,omitempty"`
	Boundary    orb.Polygon `json:"-"`
}

// TerritoryRecord represents a territory row with its PostGIS boundary
type TerritoryRecord struct {
	bun.BaseModel `bun:"table:territories,alias:t"`

	ID          string  `bun:"id,pk" json:"id"`
	Name        string  `bun:"name" json:"name"`
	Description string  `bun:"description" json:"description"`
	Language    *string `bun:"language" json:"language"`
	SortOrder   int     `bun:"sort_order" json:"sort_order"`
	GeoJSON     string  `bun:"geojson,scanonly" json:"-"` // ST_AsGeoJSON(boundary)
}

// ToModel converts a row into the catalog representation once its boundary
// GeoJSON has been decoded.
func (r TerritoryRecord) ToModel(boundary orb.Polygon) Territory {
	return Territory{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Language:    deref(r.Language),
		Boundary:    boundary,
	}
}
