package main

import (
	"github.com/rapidmidiex/rmxchords"
	"github.com/rapidmidiex/rmxchords/logging"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal trainer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.ForTUI(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return rmxchords.Run(cfg, logger)
}
