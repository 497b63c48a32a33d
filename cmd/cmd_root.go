package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manzanit0/tourplanner/pkg/env"
	"github.com/manzanit0/tourplanner/pkg/logger"
)

const ServiceName = "tourplanner"

var envFile string

// cfg is loaded once before any subcommand runs.
var cfg *env.Config

var rootCmd = &cobra.Command{
	Use:   "tourplanner",
	Short: "map widget and tour planning backend",
	Long: `
tourplanner serves a map widget that recenters on places looked up through
Nominatim, together with the tour planning API behind it: tours routed through
OpenRouteService, tour logs, JSON import/export and markdown reports.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if envFile != "" {
			cfg, err = env.Load(envFile)
		} else {
			cfg, err = env.Load()
		}
		if err != nil {
			return err
		}

		logger.InitGlobalSlog(ServiceName, cfg.Debug)
		return nil
	},
}

var Version = "dev"

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
}

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
