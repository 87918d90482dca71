package cli

import (
	"fmt"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/server"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/storage"
	"github.com/spf13/cobra"
)

const defaultAddr = ":8080"

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		file string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the saved events over HTTP",
		Long: `Serve the saved events file as JSON on /events and /events/{id}.
The file is read on every request, so a scrape can refresh it while serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				path = a.cfg.Output
			}
			store, err := storage.New(path)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			return server.ListenAndServe(cmd.Context(), addr, server.NewRouter(store))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "Listen address")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Events file to serve (defaults to the configured output)")

	return cmd
}
