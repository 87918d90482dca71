package cli

import (
	"fmt"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/filter"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/storage"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		file      string
		sortOrder string
		criteria  filter.Criteria
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the events of a previously saved file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			f, err := criteria.Build(time.Now())
			if err != nil {
				return err
			}

			path := file
			if path == "" {
				path = a.cfg.Output
			}
			store, err := storage.New(path)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			events, err := store.Load()
			if err != nil {
				return err
			}

			events = f.Apply(events)

			w := cmd.OutOrStdout()
			if !f.IsEmpty() {
				fmt.Fprintf(w, "🔎 %s\n", f)
			}
			if len(events) == 0 {
				fmt.Fprintln(w, "❌ No events found!")
				return nil
			}

			sortEvents(events, order)
			fmt.Fprintf(w, "📊 Events in %s: %d\n\n", store.Path(), len(events))
			WriteListing(w, events)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Events file to read (defaults to the configured output)")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Sort order: date or title (default: file order)")
	cmd.Flags().StringSliceVar(&criteria.Titles, "title", nil, "Only events whose title contains one of these words")
	cmd.Flags().StringSliceVar(&criteria.Locations, "location", nil, "Only events at one of these locations")
	cmd.Flags().StringSliceVar(&criteria.Organizers, "organizer", nil, "Only events by one of these organizers")
	cmd.Flags().StringVar(&criteria.Dates, "dates", "", "Only events starting in this range, e.g. 'Mar 1-15', 'März' or '2025-03-01..2025-03-31'")
	cmd.Flags().BoolVar(&criteria.WeekendsOnly, "weekends", false, "Only events on Saturday or Sunday")

	return cmd
}
