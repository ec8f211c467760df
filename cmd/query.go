package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/tui"
	"github.com/meghashyamc/localsearch/ui"
	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one search and print the results",
		Long: `Run one search and print the results.

Examples:
  # Search for Go jobs
  localsearch query golang

  # Everything the service returns for an empty query, as JSON
  localsearch query "" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithWriter(cmd.ErrOrStderr(), a.cfg.GetLogLevel())

			client, err := a.newSearchClient(log)
			if err != nil {
				return err
			}

			searchController := controller.New(cmd.Context(), log, client)
			defer searchController.Close()

			searchController.SetQuery(args[0])
			<-searchController.TriggerSearch()
			snapshot := searchController.Snapshot()

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(snapshot); err != nil {
					return err
				}
			} else if rendered := tui.RenderResults(ui.NewPage(snapshot).Pane); len(rendered) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
			}

			if len(snapshot.Error) > 0 {
				return errors.New(snapshot.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the interaction state as JSON")

	return cmd
}
