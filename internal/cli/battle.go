package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var battleCmd = &cobra.Command{
	Use:   "battle [resume-a] [resume-b]",
	Short: "Compare two resumes head to head",
	Long: `Critique two resumes in parallel, then have the model pick a winner.
The score difference and the skills added or removed between the two are
computed locally from the critiques.`,
	Args: cobra.ExactArgs(2),
	RunE: runBattle,
}

var battleOpts commandOptions

func init() {
	outputFlags(battleCmd, &battleOpts)
	battleCmd.Flags().StringVarP(&battleOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain")
}

func runBattle(cmd *cobra.Command, args []string) error {
	createInput := func(contents []string) (types.BattleInput, error) {
		if len(contents) != 2 {
			return types.BattleInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.BattleInput{ResumeA: contents[0], ResumeB: contents[1], TargetDomain: battleOpts.Domain}, nil
	}

	_, err := runTask(cmd, args, &battleOpts, createInput, (*tasks.Analyzer).Battle,
		logInput(cmd, func(in types.BattleInput) []any {
			return []any{"resume_a_chars", len(in.ResumeA), "resume_b_chars", len(in.ResumeB)}
		}))
	if err != nil {
		return fmt.Errorf("failed to compare resumes: %w", err)
	}
	return nil
}
