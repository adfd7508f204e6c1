package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var learnCmd = &cobra.Command{
	Use:   "learn [skill...]",
	Short: "Plan how to learn missing skills",
	Long: `Build a learning plan for up to five missing skills, with priority, study
topics, resources and a time estimate for each.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLearn,
}

var learnOpts commandOptions

func init() {
	outputFlags(learnCmd, &learnOpts)
	learnCmd.Flags().StringVarP(&learnOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain")
}

func runLearn(cmd *cobra.Command, args []string) error {
	createInput := func([]string) (types.LearningPathInput, error) {
		return types.LearningPathInput{MissingSkills: args, TargetDomain: learnOpts.Domain}, nil
	}

	_, err := runTask(cmd, nil, &learnOpts, createInput, (*tasks.Analyzer).LearningPath,
		logInput(cmd, func(in types.LearningPathInput) []any {
			return []any{"skills", len(in.MissingSkills), "target_domain", in.TargetDomain}
		}))
	if err != nil {
		return fmt.Errorf("failed to build learning path: %w", err)
	}
	return nil
}
