package cli

import (
	"fmt"

	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume-file]",
	Short: "Rewrite a whole resume for impact",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnhance,
}

var enhanceOpts commandOptions

var enhanceInput struct {
	tone string
	role string
}

func init() {
	outputFlags(enhanceCmd, &enhanceOpts)
	enhanceCmd.Flags().StringVar(&enhanceInput.tone, "tone", "professional", "Tone of the rewritten resume")
	enhanceCmd.Flags().StringVar(&enhanceInput.role, "role", "", "Role to target")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	_, err := runTask(cmd, args, &enhanceOpts,
		single(func(text string) types.EnhanceInput {
			return types.EnhanceInput{ResumeText: text, Tone: enhanceInput.tone, TargetRole: enhanceInput.role}
		}),
		(*tasks.Analyzer).Enhance,
		logInput(cmd, func(in types.EnhanceInput) []any {
			return []any{"resume_chars", len(in.ResumeText), "tone", in.Tone, "target_role", in.TargetRole}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to enhance resume: %w", err)
	}
	return nil
}
