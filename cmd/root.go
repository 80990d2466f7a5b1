package main

import (
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rmxchords",
	Short: "Piano chord voicing trainer",
	Long: `rmxchords drills recognition of piano chord voicings: triads and seventh
chords in every inversion, shown as notes, keyboard diagrams or names.
Without a subcommand it starts the terminal trainer.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "config file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
