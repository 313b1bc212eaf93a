package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Regenerate and print the methodological rules",
	Long: `Recompute the rule set from the study design and current phase,
rewrite the rules artifact, and print it. Status transitions since the
previous artifact are noted in the journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		art, err := e.rules().Regenerate()
		if err != nil {
			return err
		}
		return emit(art)
	},
}
