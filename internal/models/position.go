package models

import "time"

// PositionSource tags how a position was resolved.
type PositionSource string

const (
	SourceSensor PositionSource = "sensor"
	SourceSearch PositionSource = "search"
)

// ResolvedPosition is the best-known user location. Seq increases with every
// completed resolution, so a higher Seq always supersedes a lower one.
type ResolvedPosition struct {
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	AccuracyM  float64        `json:"accuracy_m,omitempty"`
	Label      string         `json:"label,omitempty"`
	Source     PositionSource `json:"source"`
	Seq        uint64         `json:"seq"`
	ResolvedAt time.Time      `json:"resolved_at"`
}

// ResolverStatus is the position resolver's state machine.
type ResolverStatus string

const (
	StatusIdle      ResolverStatus = "idle"
	StatusLocating  ResolverStatus = "locating"
	StatusSearching ResolverStatus = "searching"
	StatusResolved  ResolverStatus = "resolved"
	StatusError     ResolverStatus = "error"
)

// PositionSnapshot is a read-only view of a position resolver.
type PositionSnapshot struct {
	Status    ResolverStatus    `json:"status"`
	Position  *ResolvedPosition `json:"position"`
	Message   string            `json:"message,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
}
