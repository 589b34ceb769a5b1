package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hongminglow/itarix-api/internal/pricing"
)

func newCatalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List services, tiers and features of the pricing catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			services := pricing.DefaultCatalog().Services()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(services)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tTIER\tPRICE\tHOURS\tPAGE COST")
			for _, svc := range services {
				for _, tier := range pricing.Tiers {
					price, ok := svc.BasePrice[tier]
					if !ok {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", svc.Name, tier, price, svc.BaseHours[tier], svc.PageCost)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}
