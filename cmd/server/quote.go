package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongminglow/itarix-api/internal/pricing"
)

func newQuoteCmd() *cobra.Command {
	var (
		service  string
		tier     string
		subtype  string
		pages    int
		features []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a project without starting the server",
		Example: `  itarix quote --service "Web Services" --tier basic --type bakery --pages 3 --feature order_online`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := pricing.NewEngine(pricing.DefaultCatalog())
			est, err := engine.Estimate(pricing.Request{
				Service:  service,
				Tier:     pricing.Tier(tier),
				Subtype:  subtype,
				Pages:    max(pages, 1),
				Features: features,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(est)
			}
			featureList := "none"
			if len(est.Features) > 0 {
				featureList = strings.Join(est.Features, ", ")
			}
			_, err = fmt.Fprintf(out, "%s (%s, %s), %d page(s)\nfeatures: %s\nprice: %d\nestimated hours: %d\n",
				est.Service, est.Tier, est.Subtype, est.Pages, featureList, est.Price, est.Hours)
			return err
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Catalog service name")
	cmd.Flags().StringVar(&tier, "tier", string(pricing.TierBasic), "Tier (basic|pro|premium)")
	cmd.Flags().StringVar(&subtype, "type", "", "Business subtype, for example bakery")
	cmd.Flags().IntVar(&pages, "pages", 1, "Page count for services priced per page")
	cmd.Flags().StringSliceVar(&features, "feature", nil, "Feature key (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the estimate as JSON")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
