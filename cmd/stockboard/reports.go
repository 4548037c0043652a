package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stockboard/backend/internal/domain"
	"github.com/stockboard/backend/internal/usecase"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show product counts per category and recent products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			analytics, err := a.client.Analytics(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(analytics.CategoryStats))
			for _, stat := range analytics.CategoryStats {
				category := stat.Category
				if category == "" {
					category = string(domain.BucketUncategorized)
				}
				rows = append(rows, []string{category, strconv.Itoa(stat.Count)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Category", "Products"}, rows, []columnAlignment{alignLeft, alignRight}))
			if len(analytics.RecentProducts) > 0 {
				fmt.Fprintln(out, "Recent products:")
				fmt.Fprintln(out, renderProducts(analytics.RecentProducts))
			}
			return nil
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var query domain.SearchQuery

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search products by name and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			products, err := a.client.Search(cmd.Context(), usecase.NormalizeSearch(query))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "No products found")
				return nil
			}
			fmt.Fprintln(out, renderProducts(products))
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Name, "name", "", "Match products whose name contains this text")
	cmd.Flags().StringVar(&query.Category, "category", "", "Match products in this category")
	return cmd
}
