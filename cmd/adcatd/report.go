// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luxfi/adcat/pkg/analytics"
	"github.com/luxfi/adcat/pkg/exchange"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print revenue and unclaimed categories from the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.close()

		svc, err := rt.exchange()
		if err != nil {
			return err
		}
		return report(cmd, svc)
	},
}

func report(cmd *cobra.Command, svc *exchange.Service) error {
	ctx := cmd.Context()
	rev, err := svc.Revenue(ctx)
	if err != nil {
		return err
	}
	forSale, err := svc.CategoriesForSale(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total API costs:   $%s\n", rev.TotalCosts.StringFixed(2))
	fmt.Fprintf(out, "Total ad revenue:  $%s\n", rev.TotalRevenue.StringFixed(2))
	fmt.Fprintf(out, "Net profit:        $%s\n", rev.NetProfit.StringFixed(2))
	fmt.Fprintf(out, "Profit per day:    $%s\n", rev.ProfitPerDay.StringFixed(2))

	companies := make([]string, 0, len(rev.ByCompany))
	for company := range rev.ByCompany {
		companies = append(companies, company)
	}
	sort.Strings(companies)

	fmt.Fprintln(out, "\nRevenue by company:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, company := range companies {
		fmt.Fprintf(tw, "  %s\t$%s\n", company, rev.ByCompany[company].StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nCategories for sale:")
	return printForSale(out, forSale)
}

func printForSale(w io.Writer, list []analytics.Unclaimed) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "  none")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, u := range list {
		fmt.Fprintf(tw, "  %s\t%d mentions\n", u.Category, u.Mentions)
	}
	return tw.Flush()
}
