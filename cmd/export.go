package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/midi"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/spf13/cobra"
)

var exportVelocity int

func init() {
	exportCmd.Flags().IntVar(&exportVelocity, "velocity", midi.DefaultVelocity, "note velocity (1-127)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.mid>",
	Short: "Write the configured quiz selection to a MIDI file",
	Long: `Writes every voicing of the configured quiz selection, fitted to the
keyboard window, to a Standard MIDI File. Each chord fills one bar.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sel, err := cfg.Quiz.Selection()
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		n, err := export(f, sel, exportVelocity)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chords to %s\n", n, args[0])
		return nil
	},
}

// export writes every voicing of sel and returns how many were written.
func export(w io.Writer, sel quiz.Selection, velocity int) (int, error) {
	if velocity < 1 || velocity > 127 {
		return 0, fmt.Errorf("velocity %d out of range 1-127", velocity)
	}
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	keys := sel.Candidates()
	voicings := make([]chord.Voicing, len(keys))
	for i, k := range keys {
		v, err := sel.Voicing(k)
		if err != nil {
			return 0, err
		}
		voicings[i] = v
	}
	if err := midi.WriteSMF(w, voicings, uint8(velocity)); err != nil {
		return 0, err
	}
	return len(voicings), nil
}
