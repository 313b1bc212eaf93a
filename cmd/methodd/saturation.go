package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/saturation"
	"github.com/interpretivelabs/methodd/internal/state"
)

var (
	docName             string
	docNewCodes         int
	refinementOldState  string
	refinementNewState  string
	refinementRationale string
	redundancyNotes     string
)

func init() {
	recordDocumentCmd.Flags().StringVar(&docName, "name", "", "human-readable document name")
	recordDocumentCmd.Flags().IntVar(&docNewCodes, "new-codes", 0, "new codes this document produced")
	recordRefinementCmd.Flags().StringVar(&refinementOldState, "old", "", "previous definition")
	recordRefinementCmd.Flags().StringVar(&refinementNewState, "new", "", "new definition")
	recordRefinementCmd.Flags().StringVar(&refinementRationale, "rationale", "", "why the code changed")
	updateRedundancyCmd.Flags().StringVar(&redundancyNotes, "notes", "", "assessment notes")
	rootCmd.AddCommand(recordDocumentCmd)
	rootCmd.AddCommand(recordRefinementCmd)
	rootCmd.AddCommand(updateCoverageCmd)
	rootCmd.AddCommand(updateRedundancyCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(saturationCmd)
}

var recordDocumentCmd = &cobra.Command{
	Use:   "record-document <doc-id>",
	Short: "Record a coded document for the code generation signal",
	Long: `Record one coded document and how many new codes it produced.

Example:
  methodd record-document INT_014 --name "Interview 14" --new-codes 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := e.saturation().RecordDocument(args[0], docName, docNewCodes)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var recordRefinementCmd = &cobra.Command{
	Use:   "record-refinement <code-id> <change-type>",
	Short: "Record a code split, merge, or redefinition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := e.saturation().RecordRefinement(args[0], state.ChangeType(args[1]),
			refinementOldState, refinementNewState, refinementRationale)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var updateCoverageCmd = &cobra.Command{
	Use:   "update-coverage <json>",
	Short: "Update per-code coverage from a JSON object",
	Long: `Update coverage statistics. The argument maps code ids to raw counts:

  methodd update-coverage '{"coping":{"document_count":8,"case_count":2}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		var data map[string]saturation.CoverageInput
		if err := json.Unmarshal([]byte(args[0]), &data); err != nil {
			return state.WrapError(state.CodeInvalidArgument, err, "coverage argument is not valid JSON")
		}
		result, err := e.saturation().UpdateCoverage(data)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var updateRedundancyCmd = &cobra.Command{
	Use:   "update-redundancy <score>",
	Short: "Record the conceptual redundancy judgment (0 to 1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		var score float64
		if err := json.Unmarshal([]byte(args[0]), &score); err != nil {
			return state.WrapError(state.CodeInvalidArgument, err, "score must be a number")
		}
		result, err := e.saturation().UpdateRedundancy(score, redundancyNotes)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Recompute the composite saturation level",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		assessment, err := e.saturation().Assess()
		if err != nil {
			return err
		}
		return emit(assessment)
	},
}

var saturationCmd = &cobra.Command{
	Use:   "saturation",
	Short: "Print the stored saturation evidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		tracking, err := e.saturation().Status()
		if err != nil {
			return err
		}
		return emit(tracking)
	},
}
