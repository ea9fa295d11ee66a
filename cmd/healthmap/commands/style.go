package commands

import (
	"github.com/spf13/cobra"

	"healthmap/internal/models"
	"healthmap/internal/presentation"
)

func styleCmd() *cobra.Command {
	var category, status string

	cmd := &cobra.Command{
		Use:   "style",
		Short: "Print marker and boundary styles and the legend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]any{
				"boundary": presentation.BoundaryStyle(),
				"legend":   presentation.Legend(),
			}
			if cmd.Flags().Changed("category") {
				out["service_marker"] = presentation.ServiceMarkerStyle(models.ParseCategory(category))
			}
			if cmd.Flags().Changed("status") {
				out["drone_marker"] = presentation.DroneMarkerStyle(models.ParseDroneStatus(status))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "service category to style (traditional, community, western)")
	cmd.Flags().StringVar(&status, "status", "", "drone status to style (in-flight, loading, delivering)")
	return cmd
}
