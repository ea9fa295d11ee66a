package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"healthmap/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

//go:embed fixtures/territories.geojson fixtures/services.json fixtures/drones.json
var fixturesFS embed.FS

const (
	territoriesFile = "territories.geojson"
	servicesFile    = "services.json"
	dronesFile      = "drones.json"
)

// FSSource reads the three catalog files from a filesystem.
type FSSource struct {
	fsys  fs.FS
	label string
}

// Embedded returns the fixture compiled into the binary.
func Embedded() *FSSource {
	sub, err := fs.Sub(fixturesFS, "fixtures")
	if err != nil {
		// embed paths are fixed at build time
		panic(err)
	}
	return &FSSource{fsys: sub, label: "embedded"}
}

// Dir reads territories.geojson, services.json and drones.json from dir.
func Dir(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), label: "dir:" + dir}
}

// NewFSSource wraps an arbitrary filesystem, e.g. fstest.MapFS in tests.
func NewFSSource(fsys fs.FS, label string) *FSSource {
	return &FSSource{fsys: fsys, label: label}
}

func (s *FSSource) Name() string { return s.label }

func (s *FSSource) Fetch(_ context.Context) (*Tables, error) {
	territories, err := s.readTerritories()
	if err != nil {
		return nil, err
	}

	var services []models.HealthService
	if err := s.readJSON(servicesFile, &services); err != nil {
		return nil, err
	}

	var drones []models.DeliveryUnit
	if err := s.readJSON(dronesFile, &drones); err != nil {
		return nil, err
	}

	return &Tables{Territories: territories, Services: services, Drones: drones}, nil
}

func (s *FSSource) readJSON(name string, v any) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *FSSource) readTerritories() ([]models.Territory, error) {
	data, err := fs.ReadFile(s.fsys, territoriesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", territoriesFile, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", territoriesFile, err)
	}

	out := make([]models.Territory, 0, len(fc.Features))
	for _, f := range fc.Features {
		t, err := territoryFromFeature(f)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func territoryFromFeature(f *geojson.Feature) (models.Territory, error) {
	id := f.Properties.MustString("id", "")
	if id == "" {
		if s, ok := f.ID.(string); ok {
			id = s
		}
	}
	if id == "" {
		return models.Territory{}, fmt.Errorf("territory feature is missing an id")
	}

	boundary, err := asPolygon(f.Geometry)
	if err != nil {
		return models.Territory{}, fmt.Errorf("territory %q: %w", id, err)
	}

	return models.Territory{
		ID:          id,
		Name:        f.Properties.MustString("name", id),
		Description: f.Properties.MustString("description", ""),
		Language:    f.Properties.MustString("language", ""),
		Boundary:    boundary,
	}, nil
}

// asPolygon accepts a Polygon, or a MultiPolygon holding exactly one polygon.
func asPolygon(g orb.Geometry) (orb.Polygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return v, nil
	case orb.MultiPolygon:
		if len(v) == 1 {
			return v[0], nil
		}
		return nil, fmt.Errorf("%w: multipolygon with %d parts", ErrInvalidBoundary, len(v))
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", ErrInvalidBoundary)
	default:
		return nil, fmt.Errorf("%w: unexpected geometry type %T", ErrInvalidBoundary, g)
	}
}
