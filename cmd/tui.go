package main

import (
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Search from the terminal",
		Long:  `Search from the terminal. Logs go to log.file, if set, so they do not disturb the screen.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := logger.NewFile(a.cfg.GetLogFile(), a.cfg.GetLogLevel())
			if err != nil {
				return err
			}
			defer closer.Close()

			client, err := a.newSearchClient(log)
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(), controller.New(cmd.Context(), log, client))
		},
	}
}
