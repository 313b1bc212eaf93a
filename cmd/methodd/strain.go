package main

import (
	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/state"
)

var (
	overrideJustification string
	resolutionNotes       string
	strainRuleID          string
)

func init() {
	recordOverrideCmd.Flags().StringVar(&overrideJustification, "justification", "", "why the rule was overridden")
	recordResolutionCmd.Flags().StringVar(&resolutionNotes, "notes", "", "review notes")
	strainCmd.Flags().StringVar(&strainRuleID, "rule", "", "check a single rule")
	rootCmd.AddCommand(recordOverrideCmd)
	rootCmd.AddCommand(recordResolutionCmd)
	rootCmd.AddCommand(strainCmd)
}

var recordOverrideCmd = &cobra.Command{
	Use:   "record-override <rule-id>",
	Short: "Record a rule override and check for methodological strain",
	Long: `Record one override of a rule. Overrides are never blocked; reaching
the strain threshold within a phase flags the rule and prints a review
prompt instead.

Example:
  methodd record-override case-isolation --justification "Comparing coping themes across sites"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := e.strain().RecordOverride(args[0], overrideJustification)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var recordResolutionCmd = &cobra.Command{
	Use:   "record-resolution <rule-id> <resolution>",
	Short: "Record the outcome of a strain review",
	Long: `Close a strain review. Resolutions:

  phase_transition    the overrides signaled readiness; resets the count
  adjust_rule         the rule was reconfigured to fit the methodology
  isolated_exception  the pattern was legitimate but exceptional`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		review, err := e.strain().RecordResolution(args[0], state.Resolution(args[1]), resolutionNotes)
		if err != nil {
			return err
		}
		return emit(review)
	},
}

var strainCmd = &cobra.Command{
	Use:   "strain",
	Short: "Report override counts and strain standing",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		report, err := e.strain().Check(strainRuleID)
		if err != nil {
			return err
		}
		return emit(report)
	},
}
