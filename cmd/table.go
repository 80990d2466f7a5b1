package main

import (
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/spf13/cobra"
)

var tableOctave int

func init() {
	tableCmd.Flags().IntVar(&tableOctave, "octave", 4, "base octave of the roots")
	rootCmd.AddCommand(tableCmd)
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print every voicing in the reference text format",
	RunE: func(cmd *cobra.Command, args []string) error {
		return chord.DefaultTable().Format(cmd.OutOrStdout(), tableOctave)
	},
}
