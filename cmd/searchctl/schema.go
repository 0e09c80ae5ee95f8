package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deal-drive/site/search"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the listings collection when it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			ts := search.NewTypesense(cfg.TypesenseURL, cfg.TypesenseAPIKey, cfg.TypesenseCollection, cfg.TypesenseTimeout)
			created, err := ts.EnsureCollection(ctx)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created collection %q\n", ts.Collection())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "collection %q already exists\n", ts.Collection())
			}
			return nil
		},
	}
}
