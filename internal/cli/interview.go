package cli

import (
	"fmt"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var interviewCmd = &cobra.Command{
	Use:   "interview [resume-file]",
	Short: "Generate interview questions from a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runInterview,
}

var interviewOpts commandOptions

func init() {
	outputFlags(interviewCmd, &interviewOpts)
	interviewCmd.Flags().StringVarP(&interviewOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain")
}

func runInterview(cmd *cobra.Command, args []string) error {
	_, err := runTask(cmd, args, &interviewOpts,
		single(func(text string) types.InterviewInput {
			return types.InterviewInput{ResumeText: text, TargetDomain: interviewOpts.Domain}
		}),
		(*tasks.Analyzer).InterviewQuestions,
		logInput(cmd, func(in types.InterviewInput) []any {
			return []any{"resume_chars", len(in.ResumeText), "target_domain", in.TargetDomain}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}
	return nil
}
