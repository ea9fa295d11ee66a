package catalog

import (
	"context"
	"fmt"

	"healthmap/internal/models"

	"github.com/paulmach/orb/geojson"
	"github.com/uptrace/bun"
)

// PostgresSource reads the catalog tables once at startup. Boundaries are
// stored as PostGIS geometry and converted with ST_AsGeoJSON.
type PostgresSource struct {
	db *bun.DB
}

func NewPostgresSource(db *bun.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Fetch(ctx context.Context) (*Tables, error) {
	territories, err := s.fetchTerritories(ctx)
	if err != nil {
		return nil, err
	}

	var serviceRows []models.HealthServiceRecord
	if err := s.db.NewSelect().
		Model(&serviceRows).
		OrderExpr("hs.sort_order ASC, hs.id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select health_services: %w", err)
	}
	services := make([]models.HealthService, 0, len(serviceRows))
	for _, r := range serviceRows {
		services = append(services, r.ToModel())
	}

	var droneRows []models.DeliveryUnitRecord
	if err := s.db.NewSelect().
		Model(&droneRows).
		OrderExpr("du.sort_order ASC, du.id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select delivery_units: %w", err)
	}
	drones := make([]models.DeliveryUnit, 0, len(droneRows))
	for _, r := range droneRows {
		drones = append(drones, r.ToModel())
	}

	return &Tables{Territories: territories, Services: services, Drones: drones}, nil
}

func (s *PostgresSource) fetchTerritories(ctx context.Context) ([]models.Territory, error) {
	var rows []models.TerritoryRecord

	err := s.db.NewSelect().
		Column("id").
		Column("name").
		Column("description").
		Column("language").
		Column("sort_order").
		ColumnExpr("ST_AsGeoJSON(boundary) AS geojson").
		TableExpr("territories AS t").
		Where("boundary IS NOT NULL").
		OrderExpr("sort_order ASC, id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select territories: %w", err)
	}

	out := make([]models.Territory, 0, len(rows))
	for _, row := range rows {
		g, err := geojson.UnmarshalGeometry([]byte(row.GeoJSON))
		if err != nil {
			return nil, fmt.Errorf("territory %q: parse boundary: %w", row.ID, err)
		}
		boundary, err := asPolygon(g.Geometry())
		if err != nil {
			return nil, fmt.Errorf("territory %q: %w", row.ID, err)
		}
		out = append(out, row.ToModel(boundary))
	}
	return out, nil
}
