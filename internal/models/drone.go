package models

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/uptrace/bun"
)

type DroneStatus int

const (
	DroneStatusUnknown DroneStatus = iota
	DroneStatusInFlight
	DroneStatusLoading
	DroneStatusDelivering
)

func ParseDroneStatus(s string) DroneStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in-flight":
		return DroneStatusInFlight
	case "loading":
		return DroneStatusLoading
	case "delivering":
		return DroneStatusDelivering
	default:
		return DroneStatusUnknown
	}
}

func (s DroneStatus) String() string {
	switch s {
	case DroneStatusInFlight:
		return "in-flight"
	case DroneStatusLoading:
		return "loading"
	case DroneStatusDelivering:
		return "delivering"
	default:
		return "unknown"
	}
}

func (s DroneStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DroneStatus) UnmarshalText(b []byte) error {
	*s = ParseDroneStatus(string(b))
	return nil
}

// DeliveryUnit is a supply drone in transit. It has no relationship to
// territories or services.
type DeliveryUnit struct {
	ID               string      `json:"id"`
	Position         orb.Point   `json:"position"` // [lng, lat]
	From             string      `json:"from"`
	To               string      `json:"to"`
	Payload          []string    `json:"payload"`
	Status           DroneStatus `json:"status"`
	EstimatedArrival string      `json:"estimatedArrival"`
}

// DeliveryUnitRecord maps the delivery_units table
type DeliveryUnitRecord struct {
	bun.BaseModel `bun:"table:delivery_units,alias:du"`

	ID               string   `bun:"id,pk"`
	Longitude        float64  `bun:"lon"`
	Latitude         float64  `bun:"lat"`
	Origin           string   `bun:"origin"`
	Destination      string   `bun:"destination"`
	Payload          []string `bun:"payload,array"`
	Status           string   `bun:"status"`
	EstimatedArrival string   `bun:"estimated_arrival"`
	SortOrder        int      `bun:"sort_order"`
}

func (r DeliveryUnitRecord) ToModel() DeliveryUnit {
	return DeliveryUnit{
		ID:               r.ID,
		Position:         orb.Point{r.Longitude, r.Latitude},
		From:             r.Origin,
		To:               r.Destination,
		Payload:          r.Payload,
		Status:           ParseDroneStatus(r.Status),
		EstimatedArrival: r.EstimatedArrival,
	}
}
