package main

import (
	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/phase"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(transitionCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the project's phase, rules, strain, saturation, and branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		status, err := e.project().Status()
		if err != nil {
			return err
		}
		return emit(status)
	},
}

var transitionCmd = &cobra.Command{
	Use:   "transition <target>",
	Short: "Advance to the next stage or stage-2 sub-phase",
	Long: `Advance the project. Targets:

  stage2_collaboration             requires the manual coding foundation
  phase2_synthesis                 stage-2 sub-phase
  phase3_pattern_characterization  stage-2 sub-phase
  cross_wave_analysis              stage-2 sub-phase
  stage3_synthesis                 final synthesis

The rule artifact is regenerated after every transition.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := phase.Advance(e.store, args[0])
		if err != nil {
			return err
		}
		if _, err := e.rules().Regenerate(); err != nil {
			return err
		}
		return emit(result)
	},
}
