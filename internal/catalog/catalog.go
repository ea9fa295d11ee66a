// Package catalog holds the static, read-only tables of territories, health
// services and delivery drones that the map is built from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"healthmap/internal/models"

	"github.com/paulmach/orb"
)

var (
	ErrDuplicateID       = errors.New("duplicate entity id")
	ErrDanglingTerritory = errors.New("service references unknown territory")
	ErrInvalidBoundary   = errors.New("invalid territory boundary")
)

// DefaultCenter is the initial map center (Cairns) as [lng, lat].
var DefaultCenter = orb.Point{145.7781, -16.9186}

// Tables is the raw content produced by a Source, in catalog order.
type Tables struct {
	Territories []models.Territory
	Services    []models.HealthService
	Drones      []models.DeliveryUnit
}

// Source supplies catalog tables from somewhere (embedded fixture, disk, Postgres).
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Tables, error)
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	territories []models.Territory
	services    []models.HealthService
	drones      []models.DeliveryUnit

	territoryIdx map[string]int
	serviceIdx   map[string]int
	droneIdx     map[string]int
	byTerritory  map[string][]int
}

// Load fetches tables from src and validates them into a Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	t, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog from %s: %w", src.Name(), err)
	}
	return New(*t)
}

// New validates the tables and builds lookup indexes.
func New(t Tables) (*Catalog, error) {
	c := &Catalog{
		territories:  slices.Clone(t.Territories),
		services:     slices.Clone(t.Services),
		drones:       slices.Clone(t.Drones),
		territoryIdx: make(map[string]int, len(t.Territories)),
		serviceIdx:   make(map[string]int, len(t.Services)),
		droneIdx:     make(map[string]int, len(t.Drones)),
		byTerritory:  make(map[string][]int),
	}

	for i, tr := range c.territories {
		if _, dup := c.territoryIdx[tr.ID]; dup {
			return nil, fmt.Errorf("territory %q: %w", tr.ID, ErrDuplicateID)
		}
		if err := validateBoundary(tr.Boundary); err != nil {
			return nil, fmt.Errorf("territory %q: %w", tr.ID, err)
		}
		c.territoryIdx[tr.ID] = i
	}

	for i, s := range c.services {
		if _, dup := c.serviceIdx[s.ID]; dup {
			return nil, fmt.Errorf("service %q: %w", s.ID, ErrDuplicateID)
		}
		if _, ok := c.territoryIdx[s.TerritoryID]; !ok {
			return nil, fmt.Errorf("service %q -> %q: %w", s.ID, s.TerritoryID, ErrDanglingTerritory)
		}
		c.serviceIdx[s.ID] = i
		c.byTerritory[s.TerritoryID] = append(c.byTerritory[s.TerritoryID], i)
	}

	for i, d := range c.drones {
		if _, dup := c.droneIdx[d.ID]; dup {
			return nil, fmt.Errorf("drone %q: %w", d.ID, ErrDuplicateID)
		}
		c.droneIdx[d.ID] = i
	}

	return c, nil
}

func validateBoundary(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidBoundary)
	}
	for _, ring := range p {
		if len(ring) < 4 || !ring.Closed() {
			return fmt.Errorf("%w: ring must be closed with at least 4 points", ErrInvalidBoundary)
		}
	}
	return nil
}

// Territory looks up a territory by id.
func (c *Catalog) Territory(id string) (models.Territory, bool) {
	i, ok := c.territoryIdx[id]
	if !ok {
		return models.Territory{}, false
	}
	return c.territories[i], true
}

// Service looks up a health service by id.
func (c *Catalog) Service(id string) (models.HealthService, bool) {
	i, ok := c.serviceIdx[id]
	if !ok {
		return models.HealthService{}, false
	}
	return c.services[i], true
}

// Drone looks up a delivery unit by id.
func (c *Catalog) Drone(id string) (models.DeliveryUnit, bool) {
	i, ok := c.droneIdx[id]
	if !ok {
		return models.DeliveryUnit{}, false
	}
	return c.drones[i], true
}

func (c *Catalog) Territories() []models.Territory { return slices.Clone(c.territories) }

func (c *Catalog) Services() []models.HealthService { return slices.Clone(c.services) }

func (c *Catalog) Drones() []models.DeliveryUnit { return slices.Clone(c.drones) }

// ServicesOf returns the services whose territory foreign key equals
// territoryID, in catalog order. The result is a fresh slice.
func (c *Catalog) ServicesOf(territoryID string) []models.HealthService {
	idx := c.byTerritory[territoryID]
	out := make([]models.HealthService, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.services[i])
	}
	return out
}

// ServicesByCategory filters services by category; no categories means all.
func (c *Catalog) ServicesByCategory(categories ...models.Category) []models.HealthService {
	if len(categories) == 0 {
		return c.Services()
	}
	out := make([]models.HealthService, 0, len(c.services))
	for _, s := range c.services {
		if slices.Contains(categories, s.Category) {
			out = append(out, s)
		}
	}
	return out
}

// Bounds is the union of every territory boundary, service and drone anchor.
// An empty catalog yields a zero-size bound at DefaultCenter.
func (c *Catalog) Bounds() orb.Bound {
	b := DefaultCenter.Bound()
	first := true
	extend := func(o orb.Bound) {
		if first {
			b, first = o, false
			return
		}
		b = b.Union(o)
	}
	for _, t := range c.territories {
		extend(t.Boundary.Bound())
	}
	for _, s := range c.services {
		extend(s.Location.Bound())
	}
	for _, d := range c.drones {
		extend(d.Position.Bound())
	}
	return b
}

// Counts reports table sizes, mostly for startup logging.
func (c *Catalog) Counts() (territories, services, drones int) {
	return len(c.territories), len(c.services), len(c.drones)
}
