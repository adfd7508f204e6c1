package cli

import (
	"fmt"
	"strings"

	"resumalyzer/internal/common"
	"resumalyzer/internal/tasks"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [bullet...]",
	Short: "Rewrite resume bullets in the XYZ format",
	Long: `Rewrite one or more resume bullet points as "Accomplished X as measured
by Y by doing Z". Bullets are taken from the arguments or, with --file, one
per line from a text file. Each bullet is rewritten independently.`,
	RunE: runRewrite,
}

var rewriteOpts commandOptions

var rewriteFile string

func init() {
	outputFlags(rewriteCmd, &rewriteOpts)
	rewriteCmd.Flags().StringVarP(&rewriteFile, "file", "f", "", "Text file with one bullet per line")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}

	bullets := args
	if rewriteFile != "" {
		content, err := common.NewFileProcessor(nil, app.Logger).ReadFile(rewriteFile)
		if err != nil {
			return err
		}
		bullets = append(bullets, splitBullets(content)...)
	}
	if len(bullets) == 0 {
		return fmt.Errorf("no bullets given: pass them as arguments or use --file")
	}

	_, err = runTask(cmd, nil, &rewriteOpts,
		func([]string) ([]string, error) { return bullets, nil },
		(*tasks.Analyzer).RewriteBullets,
		logInput(cmd, func(in []string) []any { return []any{"bullets", len(in)} }),
	)
	if err != nil {
		return fmt.Errorf("failed to rewrite bullets: %w", err)
	}
	return nil
}

// splitBullets returns the non-empty lines of content without list markers
func splitBullets(content string) []string {
	var bullets []string
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}
