package main

import (
	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/state"
)

var (
	forkFraming      string
	forkRationale    string
	switchRationale  string
	abandonRationale string
)

func init() {
	forkCmd.Flags().StringVar(&forkFraming, "framing", "exploratory",
		"exploratory, confirmatory, negative_case, or alternative_interpretation")
	forkCmd.Flags().StringVar(&forkRationale, "rationale", "", "why this branch exists")
	switchCmd.Flags().StringVar(&switchRationale, "rationale", "", "why switch now")
	abandonCmd.Flags().StringVar(&abandonRationale, "rationale", "", "why the line of analysis was dropped")
	rootCmd.AddCommand(forkCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(branchesCmd)
}

var forkCmd = &cobra.Command{
	Use:   "fork <name>",
	Short: "Fork a new interpretive branch and switch to it",
	Long: `Fork a branch off the current one to pursue an alternative reading
without losing the main line.

Example:
  methodd fork "Resistance as agency" --framing alternative_interpretation \
    --rationale "The refusals may be protective rather than avoidant"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := e.branches().Fork(args[0], state.BranchFraming(forkFraming), forkRationale)
		if err != nil {
			return err
		}
		return emit(result)
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <branch-id>",
	Short: "Move the working pointer to another active branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		br, err := e.branches().Switch(args[0], switchRationale)
		if err != nil {
			return err
		}
		return emit(br)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch-id> <memo>",
	Short: "Merge a branch back into its parent",
	Long: `Merge a branch. The memo records what the branch taught you and must
be at least 50 characters; a branch that taught nothing should be abandoned
instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		br, err := e.branches().Merge(args[0], args[1])
		if err != nil {
			return err
		}
		return emit(br)
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon <branch-id>",
	Short: "Abandon a branch, keeping its record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		br, err := e.branches().Abandon(args[0], abandonRationale)
		if err != nil {
			return err
		}
		return emit(br)
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List every branch and the decision trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		listing, err := e.branches().List()
		if err != nil {
			return err
		}
		return emit(listing)
	},
}
