package models

// EntityKind identifies which catalog table a marker click refers to.
type EntityKind string

const (
	EntityTerritory EntityKind = "territory"
	EntityService   EntityKind = "service"
	EntityDrone     EntityKind = "drone"
)
