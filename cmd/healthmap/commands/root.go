package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"healthmap/internal/catalog"
	"healthmap/internal/config"
	"healthmap/internal/logger"
)

// app holds what every subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	logr    *logger.Logger
	catalog *catalog.Catalog
}

var (
	appCtx     *app
	catalogDir string
	verbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthmap",
		Short:         "Inspect the health services map catalog and resolvers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if catalogDir != "" {
				cfg.CatalogSource = "dir"
				cfg.CatalogDir = catalogDir
			}

			logr := logger.Nop()
			if verbose {
				l, err := logger.New(cfg)
				if err != nil {
					return err
				}
				logr = l
			}

			cat, err := catalog.LoadConfigured(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			appCtx = &app{cfg: cfg, logr: logr, catalog: cat}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "load the catalog from this directory instead of CATALOG_SOURCE")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log resolver activity to stderr")

	root.AddCommand(catalogCmd(), searchCmd(), locateCmd(), clickCmd(), styleCmd())
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
