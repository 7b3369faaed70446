package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newArchiveCommand(app *appContext) *cobra.Command {
	var start, end string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List featured shows, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := app.service(app.relistenClient(), nil)
			if err != nil {
				return err
			}

			if start == "" {
				start = svc.LaunchDate()
			}
			if end == "" {
				end = svc.Today()
			}

			picks, err := svc.Archive(start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, picks)
			}
			if len(picks) == 0 {
				fmt.Fprintln(out, "No shows in the archive yet.")
				return nil
			}
			fmt.Fprintln(out, renderPicks(picks))
			fmt.Fprintf(out, "%d %s featured so far\n", len(picks), pluralShows(len(picks)))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First featured date (default: launch date)")
	cmd.Flags().StringVar(&end, "end", "", "Last featured date (default: today, UTC)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func pluralShows(n int) string {
	if n == 1 {
		return "show"
	}
	return "shows"
}
