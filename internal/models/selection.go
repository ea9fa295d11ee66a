package models

import "time"

type SelectionKind string

const (
	SelectionNone    SelectionKind = "none"
	SelectionService SelectionKind = "service"
	SelectionDrone   SelectionKind = "drone"
)

// Overlay is the display surface currently shown on top of the map.
type Overlay string

const (
	OverlayNone            Overlay = "none"
	OverlayServiceDetail   Overlay = "service-detail"
	OverlayDroneDetail     Overlay = "drone-detail"
	OverlayResourceRequest Overlay = "resource-request"
)

// Selection holds at most one selected entity plus the last clicked
// territory, which survives closing the detail overlay.
type Selection struct {
	Kind            SelectionKind `json:"kind"`
	ServiceID       string        `json:"service_id,omitempty"`
	DroneID         string        `json:"drone_id,omitempty"`
	LastTerritoryID string        `json:"last_territory_id,omitempty"`
	Overlay         Overlay       `json:"overlay"`
	Seq             uint64        `json:"seq"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// EmptySelection is the state of a fresh session.
func EmptySelection() Selection {
	return Selection{Kind: SelectionNone, Overlay: OverlayNone}
}
