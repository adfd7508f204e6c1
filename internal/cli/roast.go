package cli

import (
	"fmt"

	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var roastCmd = &cobra.Command{
	Use:   "roast [resume-file]",
	Short: "Get a brutally honest, funny take on a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoast,
}

var roastOpts commandOptions

func init() {
	outputFlags(roastCmd, &roastOpts)
}

func runRoast(cmd *cobra.Command, args []string) error {
	_, err := runTask(cmd, args, &roastOpts,
		single(func(text string) types.RoastInput { return types.RoastInput{ResumeText: text} }),
		(*tasks.Analyzer).Roast,
		logInput(cmd, func(in types.RoastInput) []any { return []any{"resume_chars", len(in.ResumeText)} }),
	)
	if err != nil {
		return fmt.Errorf("failed to roast resume: %w", err)
	}
	return nil
}
