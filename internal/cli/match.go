package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] [job-description-file]",
	Short: "Match a resume against a job description",
	Long: `Compare a resume with a job description and report the match
percentage, role fit, matched and missing keywords, skill gaps and
recommendations.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

var matchOpts commandOptions

func init() {
	outputFlags(matchCmd, &matchOpts)
	matchCmd.Flags().StringVarP(&matchOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain")
}

func runMatch(cmd *cobra.Command, args []string) error {
	createInput := func(contents []string) (types.JDMatchInput, error) {
		if len(contents) != 2 {
			return types.JDMatchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.JDMatchInput{
			ResumeText:     contents[0],
			JobDescription: contents[1],
			TargetDomain:   matchOpts.Domain,
		}, nil
	}

	_, err := runTask(cmd, args, &matchOpts, createInput, (*tasks.Analyzer).MatchJD,
		logInput(cmd, func(in types.JDMatchInput) []any {
			return []any{"resume_chars", len(in.ResumeText), "job_chars", len(in.JobDescription)}
		}))
	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	return nil
}
