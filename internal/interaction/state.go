// Package interaction owns the per-session selection: which service or drone
// is selected, the last clicked territory, and the visible overlay.
package interaction

import (
	"sync"
	"time"

	"healthmap/internal/models"
)

// State is mutated only by the click resolver and explicit close actions.
// Everything else reads value snapshots.
type State struct {
	mu  sync.RWMutex
	sel models.Selection
	seq uint64
	now func() time.Time
}

func New() *State {
	return &State{sel: models.EmptySelection(), now: time.Now}
}

// SelectService makes serviceID the selection and opens its detail overlay.
func (s *State) SelectService(serviceID string) models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.Kind = models.SelectionService
		sel.ServiceID = serviceID
		sel.DroneID = ""
		sel.Overlay = models.OverlayServiceDetail
	})
}

// SelectDrone makes droneID the selection and opens its detail overlay.
func (s *State) SelectDrone(droneID string) models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.Kind = models.SelectionDrone
		sel.DroneID = droneID
		sel.ServiceID = ""
		sel.Overlay = models.OverlayDroneDetail
	})
}

// RecordTerritory stores the clicked territory and, when representativeID is
// non-empty, selects that service in the same update.
func (s *State) RecordTerritory(territoryID, representativeID string) models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.LastTerritoryID = territoryID
		if representativeID == "" {
			return
		}
		sel.Kind = models.SelectionService
		sel.ServiceID = representativeID
		sel.DroneID = ""
		sel.Overlay = models.OverlayServiceDetail
	})
}

// Close clears the selection and its detail overlay. The last clicked
// territory is kept for the resource request form.
func (s *State) Close() models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.Kind = models.SelectionNone
		sel.ServiceID = ""
		sel.DroneID = ""
		if sel.Overlay != models.OverlayResourceRequest {
			sel.Overlay = models.OverlayNone
		}
	})
}

// OpenResourceRequest shows the resource request form, prefilled from
// LastTerritoryID.
func (s *State) OpenResourceRequest() models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.Overlay = models.OverlayResourceRequest
	})
}

// CloseResourceRequest hides the form and forgets the last territory.
func (s *State) CloseResourceRequest() models.Selection {
	return s.update(func(sel *models.Selection) {
		sel.LastTerritoryID = ""
		if sel.Overlay != models.OverlayResourceRequest {
			return
		}
		switch sel.Kind {
		case models.SelectionService:
			sel.Overlay = models.OverlayServiceDetail
		case models.SelectionDrone:
			sel.Overlay = models.OverlayDroneDetail
		default:
			sel.Overlay = models.OverlayNone
		}
	})
}

func (s *State) Snapshot() models.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

func (s *State) update(fn func(*models.Selection)) models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.sel)
	s.seq++
	s.sel.Seq = s.seq
	s.sel.UpdatedAt = s.now()
	return s.sel
}
