package cli

import (
	"fmt"
	"strings"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Ask the career assistant a question",
	Long: `Ask a one-off question. With --resume the assistant answers with your
resume as context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var chatOpts commandOptions

var chatResume string

func init() {
	outputFlags(chatCmd, &chatOpts)
	chatCmd.Flags().StringVarP(&chatOpts.Domain, "domain", "d", prompts.DefaultDomain, "Target domain")
	chatCmd.Flags().StringVarP(&chatResume, "resume", "r", "", "Resume file to use as context")
}

func runChat(cmd *cobra.Command, args []string) error {
	var files []string
	if chatResume != "" {
		files = []string{chatResume}
	}
	message := strings.Join(args, " ")

	createInput := func(contents []string) (types.ChatInput, error) {
		in := types.ChatInput{Message: message, TargetDomain: chatOpts.Domain}
		if len(contents) > 0 {
			in.ResumeContext = contents[0]
		}
		return in, nil
	}

	_, err := runTask(cmd, files, &chatOpts, createInput, (*tasks.Analyzer).Chat,
		logInput(cmd, func(in types.ChatInput) []any {
			return []any{"message_chars", len(in.Message), "has_resume", in.ResumeContext != ""}
		}))
	if err != nil {
		return fmt.Errorf("failed to chat: %w", err)
	}
	return nil
}
