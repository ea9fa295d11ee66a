package catalog

import (
	"context"
	"fmt"

	"healthmap/internal/config"
	"healthmap/internal/database"
)

// LoadConfigured loads the catalog from the source named by CATALOG_SOURCE:
// embedded (default), dir or postgres. The database connection is only held
// for the duration of the load.
func LoadConfigured(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	switch cfg.CatalogSource {
	case "", "embedded":
		return Load(ctx, Embedded())
	case "dir":
		return Load(ctx, Dir(cfg.CatalogDir))
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return Load(ctx, NewPostgresSource(db))
	default:
		return nil, fmt.Errorf("unknown CATALOG_SOURCE %q", cfg.CatalogSource)
	}
}
