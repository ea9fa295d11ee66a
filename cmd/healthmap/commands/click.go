package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"healthmap/internal/interaction"
	"healthmap/internal/models"
	"healthmap/internal/services"
)

func clickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "click [territory|service|drone] [id]",
		Short:     "Resolve a map click to the selection it produces",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"territory", "service", "drone"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := models.EntityKind(args[0]), args[1]
			resolver := services.NewClickResolver(appCtx.catalog, nil, appCtx.logr.Component("clicks"))
			state := interaction.New()
			out := cmd.OutOrStdout()

			if kind == models.EntityTerritory {
				res, err := resolver.ResolveTerritoryClick(state, id)
				if errors.Is(err, services.ErrUnknownEntity) {
					return fmt.Errorf("no territory %q in catalog", id)
				}
				return printJSON(out, res)
			}

			sel, err := resolver.ResolveMarkerClick(state, kind, id)
			if errors.Is(err, services.ErrUnknownEntity) {
				return fmt.Errorf("no %s %q in catalog", kind, id)
			}
			return printJSON(out, sel)
		},
	}
	return cmd
}
