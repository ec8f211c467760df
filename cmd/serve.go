package main

import (
	"github.com/meghashyamc/localsearch/api"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search page",
		Long: `Serve the search page on server.port (default 3000). Each browser session gets its own
query and results; searches go to client.base_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.Run(cmd.Context(), a.cfg, logger.New(a.cfg.GetLogLevel()))
		},
	}
}

func newBackendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Run a local search service over a catalog file",
		Long: `Load the job-posting catalog at catalog.path (CSV, JSON or a ZIP of either), index it and
answer GET /search?query= on backend.port (default 8000).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.RunBackend(cmd.Context(), a.cfg, logger.New(a.cfg.GetLogLevel()))
		},
	}
}
