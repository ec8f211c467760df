package main

import (
	"github.com/joho/godotenv"
	"github.com/meghashyamc/localsearch/config"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/search"
	"github.com/meghashyamc/localsearch/validation"
	"github.com/spf13/cobra"
)

const (
	flagEnv      = "env"
	flagBaseURL  = "base-url"
	flagLogLevel = "log-level"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	env string
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "localsearch",
		Short: "Search a job-posting catalog from the browser or the terminal",
		Long: `localsearch is a small client for a search service that answers GET /search?query=.

It can serve a web page (serve), run in the terminal (tui) or print the results of a single
query (query). The backend command runs a local search service over a catalog file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.env, flagEnv, "", "configuration environment, reads config/config.<env>.yaml (default $ENV or local)")
	rootCmd.PersistentFlags().String(flagBaseURL, "", "base URL of the search service")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newBackendCmd(a))
	rootCmd.AddCommand(newTUICmd(a))
	rootCmd.AddCommand(newQueryCmd(a))

	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	godotenv.Load()

	cfg, err := config.Load(a.env)
	if err != nil {
		return err
	}
	if err := cfg.BindFlag("client.base_url", cmd.Flags().Lookup(flagBaseURL)); err != nil {
		return err
	}
	if err := cfg.BindFlag("log.level", cmd.Flags().Lookup(flagLogLevel)); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

// newSearchClient validates the client settings before building the client.
func (a *app) newSearchClient(logger logger.Logger) (*search.Client, error) {
	validator, err := validation.New(logger)
	if err != nil {
		return nil, err
	}

	settings := a.cfg.ClientSettings()
	if err := validator.Validate(settings); err != nil {
		return nil, err
	}

	return search.New(logger, settings.BaseURL, settings.Timeout)
}
