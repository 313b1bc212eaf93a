package main

import (
	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/project"
)

var (
	initName        string
	initQuestion    string
	initCases       []string
	initWaves       []string
	initTheoretical string
	initEmpirical   string
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "study name (required)")
	initCmd.Flags().StringVar(&initQuestion, "question", "", "guiding research question")
	initCmd.Flags().StringArrayVar(&initCases, "case", nil, "case name (repeatable)")
	initCmd.Flags().StringArrayVar(&initWaves, "wave", nil, "wave name (repeatable)")
	initCmd.Flags().StringVar(&initTheoretical, "theoretical", "", "theoretical stream folder")
	initCmd.Flags().StringVar(&initEmpirical, "empirical", "", "empirical stream folder")
	_ = initCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize methodology tracking for a project",
	Long: `Create the project document, journal, and main branch.

Examples:
  # A multi-case longitudinal study
  methodd init --name "Hospital Adoption Study" \
    --question "How do care teams adopt clinical decision support?" \
    --case "Hospital A" --case "Hospital B" \
    --wave "Wave 1" --wave "Wave 2" \
    --theoretical literature --empirical data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		st, err := e.project().Init(project.InitRequest{
			ProjectName:      initName,
			ResearchQuestion: initQuestion,
			CaseNames:        initCases,
			WaveNames:        initWaves,
			TheoreticalPath:  initTheoretical,
			EmpiricalPath:    initEmpirical,
		})
		if err != nil {
			return err
		}
		if _, err := e.rules().Regenerate(); err != nil {
			return err
		}
		return emit(map[string]any{
			"success":      true,
			"project_name": st.ProjectName,
			"state_path":   e.store.StatePath(),
			"version":      st.Version,
		})
	},
}
