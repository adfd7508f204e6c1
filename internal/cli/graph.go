package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [resume-file]",
	Short: "Map current and missing skills for a target role",
	Long: `Build a skill knowledge graph: the skills the resume shows, the skills the
target role still needs, and the prerequisite links between them.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

var graphOpts commandOptions

var graphRole string

func init() {
	outputFlags(graphCmd, &graphOpts)
	graphCmd.Flags().StringVar(&graphRole, "role", prompts.DefaultTargetRole, "Target role")
}

func runGraph(cmd *cobra.Command, args []string) error {
	_, err := runTask(cmd, args, &graphOpts,
		single(func(text string) types.SkillGraphInput {
			return types.SkillGraphInput{ResumeText: text, TargetRole: graphRole}
		}),
		(*tasks.Analyzer).SkillGraph,
		logInput(cmd, func(in types.SkillGraphInput) []any {
			return []any{"resume_chars", len(in.ResumeText), "target_role", in.TargetRole}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to build skill graph: %w", err)
	}
	return nil
}
