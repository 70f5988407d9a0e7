package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhyland87/chem-crawler/internal/application/search"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
)

// newSearchCommand builds `chemcrawl search <query>`, which streams results
// to stdout as they arrive.
func newSearchCommand() *cobra.Command {
	var (
		enabled []string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search enabled suppliers and stream matching products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			svc, _, _ := buildSearchService(cliCtx.Config, cliCtx.Logger, prometheus.NewNopPipelineMetrics())

			ids := enabled
			if len(ids) == 0 {
				ids = cliCtx.Config.Suppliers.Enabled
			}
			if limit == 0 {
				limit = cliCtx.Config.Search.DefaultLimit
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			stream, err := svc.Search(ctx, search.Request{Query: query, Suppliers: ids, Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			count := 0
			for result := range stream.Results() {
				count++
				if cliCtx.OutputFormat == "json" {
					if err := enc.Encode(result); err != nil {
						stream.Cancel()
						return err
					}
					continue
				}
				p := result.Product
				fmt.Fprintf(out, "[%s] %s — %s%.2f / %g %s", result.Supplier, p.Title, p.CurrencySymbol, p.Price, p.Quantity, p.UOM)
				if p.CAS != "" {
					fmt.Fprintf(out, "  CAS %s", p.CAS)
				}
				fmt.Fprintf(out, "\n    %s\n", p.URL)
			}
			if cliCtx.OutputFormat == "text" {
				fmt.Fprintf(out, "%d result(s) for %q\n", count, query)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&enabled, "suppliers", "s", nil, "comma-separated supplier ids (default: config suppliers.enabled)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "max results per supplier (default: config search.default_limit)")
	return cmd
}

// newSuppliersCommand builds `chemcrawl suppliers`, listing registered
// adapter identifiers.
func newSuppliersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suppliers",
		Short: "List registered supplier adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ids := suppliers.IDs()
			if cliCtx.OutputFormat == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string][]string{"suppliers": ids})
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no suppliers registered")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
