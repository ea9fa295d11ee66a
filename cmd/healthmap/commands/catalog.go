package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	var territory string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List territories, or the services of one territory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := appCtx.catalog
			out := cmd.OutOrStdout()

			if territory != "" {
				if _, ok := cat.Territory(territory); !ok {
					return fmt.Errorf("unknown territory %q", territory)
				}
				services := cat.ServicesOf(territory)
				if asJSON {
					return printJSON(out, services)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTYPE\tNAME")
				for _, s := range services {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Category, s.Name)
				}
				return tw.Flush()
			}

			if asJSON {
				return printJSON(out, cat.Territories())
			}
			t, s, d := cat.Counts()
			fmt.Fprintf(out, "%d territories, %d services, %d drones\n\n", t, s, d)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSERVICES")
			for _, terr := range cat.Territories() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", terr.ID, terr.Name, len(cat.ServicesOf(terr.ID)))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&territory, "territory", "t", "", "list the services of this territory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
