package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/deal-drive/site/search"
)

func newQueryCmd() *cobra.Command {
	var (
		c    criteria
		page int
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a search against the listings collection and print the hits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ts := search.NewTypesense(cfg.TypesenseURL, cfg.TypesenseAPIKey, cfg.TypesenseCollection, cfg.TypesenseTimeout)
			s := c.state()
			q := search.NewQuery(s, search.Compile(s, c.origin(), search.Options{IncludeDataSources: c.sourceToggle}))

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			result, err := ts.Search(ctx, q.WithPage(page))
			if err != nil {
				return err
			}
			printPage(cmd, result)
			return nil
		},
	}
	c.bind(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "Result page to fetch")
	return cmd
}

func printPage(cmd *cobra.Command, p search.Page) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "page %d, %d found, last page: %t\n\n", p.Number, p.Total, p.LastPage)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tMILEAGE\tSOURCE")
	for _, h := range p.Hits {
		mileage := "-"
		if h.HasMileage() {
			mileage = fmt.Sprintf("%d", h.Mileage)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", h.ID, h.Title, h.Price, mileage, h.DataSource)
	}
	w.Flush()
}
