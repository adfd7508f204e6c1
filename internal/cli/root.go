package cli

import (
	"context"
	"fmt"
	"io"

	"resumalyzer/internal/common"
	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/observability"

	"github.com/spf13/cobra"
)

// App is what every command needs from main
type App struct {
	Config        *config.Config
	Logger        *errors.Logger
	Observability *observability.ObservabilityManager
}

// Define a custom private type for the context key.
type appKeyType struct{}

var appKey = appKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumalyzer",
	Short: "AI resume analysis from the command line or over HTTP",
	Long: `Resumalyzer critiques resumes, matches them against job descriptions,
rewrites bullets, writes cover letters, compares two resumes, plans learning
paths and prepares interview questions using a generative model.

Every model response is checked against a contract before it is shown: bad
or missing fields get defaults, and a failed call returns a safe fallback.`,
	SilenceUsage: true,
}

// Execute runs the root command with app attached to ctx
func Execute(ctx context.Context, app *App) error {
	// Attach the app to the context, making it available to all subcommands
	rootCmd.SetContext(context.WithValue(ctx, appKey, app))
	return rootCmd.Execute()
}

// appFromContext is a helper function to get the app from context
func appFromContext(ctx context.Context) (*App, error) {
	if app, ok := ctx.Value(appKey).(*App); ok && app.Config != nil {
		if app.Logger == nil {
			app.Logger = errors.Discard()
		}
		return app, nil
	}
	return nil, fmt.Errorf("application context not initialized")
}

// outputFlags registers --output and --format and validates the format before the run
func outputFlags(cmd *cobra.Command, cfg *commandOptions) {
	cmd.Flags().StringVarP(&cfg.Output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cfg.Output.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		app, err := appFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.AllowedFormats(app.Config.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if cfg.Output.OutputFormat == "" {
			cfg.Output.OutputFormat = app.Config.App.DefaultFormat
		}
		return validateFormat(cfg.Output.OutputFormat, app.Config.App.SupportedFormats)
	}
}

func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func init() {
	rootCmd.AddCommand(critiqueCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(coverLetterCmd)
	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(battleCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(roastCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
