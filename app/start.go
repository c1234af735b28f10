package app

import (
	"github.com/spf13/cobra"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/daemon"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	configPath string // Path to the configuration directory

	err     error
	cfg     config.Config
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the ToonStack-Admin web service",
		PreRun: func(_ *cobra.Command, _ []string) {
			if cfg, err = config.ReadConfig(configPath); err != nil {
				panic(err)
			}

			if devMode {
				cfg.DevMode = true
			}

			if err = logger.Init(cfg.Log); err != nil {
				panic(err)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d := daemon.New(&cfg)
			if err := d.Start(); err != nil {
				return err
			}

			return nil
		},
	}
)
