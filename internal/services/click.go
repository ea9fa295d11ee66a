package services

import (
	"fmt"

	"healthmap/internal/catalog"
	"healthmap/internal/interaction"
	"healthmap/internal/metrics"
	"healthmap/internal/models"

	"go.uber.org/zap"
)

// TerritoryResolution is the outcome of a territory click. Candidates holds
// every service in the territory; Selected is the representative that was
// actually selected, if any.
type TerritoryResolution struct {
	Territory  models.Territory       `json:"territory"`
	Candidates []models.HealthService `json:"candidates"`
	Selected   *models.HealthService  `json:"selected,omitempty"`
	Selection  models.Selection       `json:"selection"`
}

// ClickResolver turns an already hit-tested entity id into a selection.
// It holds no per-session state; the session's interaction.State is passed in.
type ClickResolver struct {
	catalog *catalog.Catalog
	metrics *metrics.Collector
	logr    *zap.Logger
}

func NewClickResolver(cat *catalog.Catalog, m *metrics.Collector, logr *zap.Logger) *ClickResolver {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &ClickResolver{catalog: cat, metrics: m, logr: logr}
}

// ResolveTerritoryClick records the territory and selects the first of its
// services in catalog order. A territory with no services only updates
// LastTerritoryID. Unknown ids leave the state untouched.
func (r *ClickResolver) ResolveTerritoryClick(state *interaction.State, territoryID string) (TerritoryResolution, error) {
	t, ok := r.catalog.Territory(territoryID)
	if !ok {
		r.miss(models.EntityTerritory, territoryID)
		return TerritoryResolution{}, fmt.Errorf("territory %q: %w", territoryID, ErrUnknownEntity)
	}

	res := TerritoryResolution{
		Territory:  t,
		Candidates: r.catalog.ServicesOf(territoryID),
	}

	representative := ""
	if rep, ok := Representative(res.Candidates); ok {
		res.Selected = &rep
		representative = rep.ID
	}
	res.Selection = state.RecordTerritory(territoryID, representative)

	r.metrics.ObserveClick(string(models.EntityTerritory), "resolved")
	r.logr.Debug("territory click resolved",
		zap.String("territory", territoryID),
		zap.Int("candidates", len(res.Candidates)),
		zap.String("selected", representative))
	return res, nil
}

// ResolveMarkerClick selects the service or drone a marker represents.
func (r *ClickResolver) ResolveMarkerClick(state *interaction.State, kind models.EntityKind, id string) (models.Selection, error) {
	switch kind {
	case models.EntityService:
		if _, ok := r.catalog.Service(id); !ok {
			r.miss(kind, id)
			return state.Snapshot(), fmt.Errorf("service %q: %w", id, ErrUnknownEntity)
		}
		r.metrics.ObserveClick(string(kind), "resolved")
		return state.SelectService(id), nil
	case models.EntityDrone:
		if _, ok := r.catalog.Drone(id); !ok {
			r.miss(kind, id)
			return state.Snapshot(), fmt.Errorf("drone %q: %w", id, ErrUnknownEntity)
		}
		r.metrics.ObserveClick(string(kind), "resolved")
		return state.SelectDrone(id), nil
	default:
		r.miss(kind, id)
		return state.Snapshot(), fmt.Errorf("marker kind %q: %w", kind, ErrUnknownEntity)
	}
}

// Representative picks the service shown for a territory click: the first
// candidate. Territories with several services surface only this one.
func Representative(candidates []models.HealthService) (models.HealthService, bool) {
	if len(candidates) == 0 {
		return models.HealthService{}, false
	}
	return candidates[0], true
}

func (r *ClickResolver) miss(kind models.EntityKind, id string) {
	r.metrics.ObserveClick(string(kind), "unknown")
	r.logr.Debug("click on unknown entity ignored", zap.String("kind", string(kind)), zap.String("id", id))
}
