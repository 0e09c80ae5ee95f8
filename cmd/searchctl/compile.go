package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deal-drive/site/search"
)

func newCompileCmd() *cobra.Command {
	var c criteria
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the filter expression and sort for the given criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := c.state()
			expr := search.Compile(s, c.origin(), search.Options{IncludeDataSources: c.sourceToggle})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "filter_by: %s\n", expr)
			fmt.Fprintf(out, "sort_by:   %s\n", search.SortBy(s.Sort))
			fmt.Fprintf(out, "url:       %s\n", s.SearchURL())
			return nil
		},
	}
	c.bind(cmd)
	return cmd
}
