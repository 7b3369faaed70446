package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/deadredux/internal/format"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/shows"
	"github.com/rewired-gh/deadredux/internal/storage"
)

func newPickCommand(app *appContext) *cobra.Command {
	var withDetails bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pick [date]",
		Short: "Show the pick for a date (default: today, UTC)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cache shows.DetailsCache
			if withDetails {
				store, err := storage.New(app.config.Storage.DBPath)
				if err != nil {
					return fmt.Errorf("failed to initialize storage: %w", err)
				}
				defer store.Close()
				cache = store
			}

			svc, _, err := app.service(app.relistenClient(), cache)
			if err != nil {
				return err
			}

			date := svc.Today()
			if len(args) == 1 {
				date = args[0]
			}
			out := cmd.OutOrStdout()

			if !withDetails {
				pick, err := svc.Pick(date)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, pick)
				}
				fmt.Fprintln(out, renderPicks([]models.DailyPick{pick}))
				return nil
			}

			page, err := svc.Page(cmd.Context(), date)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, page)
			}
			printPage(out, page)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withDetails, "details", "d", false, "Fetch sources and setlist from Relisten")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func renderPicks(picks []models.DailyPick) string {
	headers := []string{"Featured", "Show Date", "Venue", "Location", "Rating", "Sources", "SBD"}
	rows := make([][]string, 0, len(picks))
	for _, p := range picks {
		rating := ""
		if p.Show.AvgRating > 0 {
			rating = format.Rating(p.Show.AvgRating)
		}
		sbd := ""
		if p.Show.HasSoundboard {
			sbd = "yes"
		}
		rows = append(rows, []string{
			p.FeaturedDate,
			p.Show.Date,
			p.Show.Venue,
			p.Show.Location,
			rating,
			strconv.Itoa(p.Show.SourceCount),
			sbd,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
}

func printPage(out io.Writer, page *shows.Page) {
	fmt.Fprintln(out, renderPicks([]models.DailyPick{{FeaturedDate: page.FeaturedDate, Show: page.Show}}))

	if tour := page.TourName; tour != "" {
		fmt.Fprintf(out, "Tour:     %s\n", tour)
	}
	fmt.Fprintf(out, "Relisten: %s\n", page.RelistenURL)

	source := page.BestSource
	if source == nil {
		fmt.Fprintln(out, "No recording available.")
		return
	}

	fmt.Fprintf(out, "Source:   %s (id %d, soundboard: %t, %d reviews)\n",
		source.UpstreamIdentifier, source.ID, source.IsSoundboard, source.NumReviews)
	fmt.Fprintf(out, "Player:   %s\n", page.EmbedURL)
	if total := format.Duration(page.TotalDuration); total != "" {
		fmt.Fprintf(out, "Length:   %s\n", total)
	}

	var rows [][]string
	for _, set := range source.Sets {
		for _, track := range set.Tracks {
			rows = append(rows, []string{set.Name, track.Title, format.Duration(track.Duration)})
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Set", "Track", "Length"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("Failed to encode output: %v", err)
		return err
	}
	return nil
}
