// Package presentation maps catalog entities and interaction state to the
// visual primitives the map client draws. Every function here is pure and
// total: unknown inputs fall back to a default and nothing returns an error.
package presentation

import "healthmap/internal/models"

// Marker colors.
const (
	ColorTraditional = "#8B4513"
	ColorCommunity   = "#228B22"
	ColorWestern     = "#DC143C"
	ColorUnknown     = "#6C757D"

	ColorDroneInFlight   = "#007bff"
	ColorDroneLoading    = "#ffc107"
	ColorDroneDelivering = "#28a745"
	ColorDroneUnknown    = "#6c757d"

	ColorBoundary = "#ff7800"
)

// MarkerStyle describes a round div marker.
type MarkerStyle struct {
	Color       string `json:"color"`
	Shape       string `json:"shape"`
	Size        [2]int `json:"size"`
	Anchor      [2]int `json:"anchor"`
	BorderColor string `json:"borderColor"`
	BorderWidth int    `json:"borderWidth"`
}

// PathStyle uses Leaflet path option names so the client can pass it through.
type PathStyle struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	DashArray   string  `json:"dashArray"`
	FillOpacity float64 `json:"fillOpacity"`
}

func circleMarker(color string) MarkerStyle {
	return MarkerStyle{
		Color:       color,
		Shape:       "circle",
		Size:        [2]int{20, 20},
		Anchor:      [2]int{10, 10},
		BorderColor: "white",
		BorderWidth: 2,
	}
}

// ServiceMarkerStyle colors a service marker by category.
func ServiceMarkerStyle(c models.Category) MarkerStyle {
	switch c {
	case models.CategoryTraditional:
		return circleMarker(ColorTraditional)
	case models.CategoryCommunity:
		return circleMarker(ColorCommunity)
	case models.CategoryWestern:
		return circleMarker(ColorWestern)
	case models.CategoryUnknown:
		return circleMarker(ColorUnknown)
	default:
		return circleMarker(ColorUnknown)
	}
}

// DroneMarkerStyle colors a drone marker by delivery status.
func DroneMarkerStyle(s models.DroneStatus) MarkerStyle {
	switch s {
	case models.DroneStatusInFlight:
		return circleMarker(ColorDroneInFlight)
	case models.DroneStatusLoading:
		return circleMarker(ColorDroneLoading)
	case models.DroneStatusDelivering:
		return circleMarker(ColorDroneDelivering)
	case models.DroneStatusUnknown:
		return circleMarker(ColorDroneUnknown)
	default:
		return circleMarker(ColorDroneUnknown)
	}
}

// BoundaryStyle is the same for every territory.
func BoundaryStyle() PathStyle {
	return PathStyle{
		Color:       ColorBoundary,
		FillColor:   ColorBoundary,
		Weight:      2,
		Opacity:     1,
		DashArray:   "3",
		FillOpacity: 0.2,
	}
}

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Label string `json:"label"`
	Kind  string `json:"kind"` // marker or boundary
	Color string `json:"color"`
}

// Legend lists the service categories followed by the boundary swatch.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, 4)
	for _, c := range []models.Category{
		models.CategoryTraditional,
		models.CategoryCommunity,
		models.CategoryWestern,
	} {
		out = append(out, LegendEntry{Label: c.Label(), Kind: "marker", Color: ServiceMarkerStyle(c).Color})
	}
	out = append(out, LegendEntry{Label: "First Nations Boundaries", Kind: "boundary", Color: ColorBoundary})
	return out
}
