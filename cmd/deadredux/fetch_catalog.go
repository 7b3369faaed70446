package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/deadredux/internal/ingest"
)

func newFetchCatalogCommand(app *appContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "fetch-catalog",
		Short: "Download every show summary from Relisten into the catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if outPath == "" {
				outPath = app.config.Catalog.Path
			}

			fetcher := ingest.NewFetcher(app.relistenClient(), app.config.Relisten.RequestDelay)
			result, err := fetcher.Run(ctx, outPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d shows from %d years to %s\n", result.Shows, result.Years, result.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default: catalog.path)")
	return cmd
}
