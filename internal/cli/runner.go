package cli

import (
	"context"
	"fmt"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/common"
	"resumalyzer/internal/extract"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/tasks"

	"github.com/spf13/cobra"
)

// commandOptions holds the flags shared by every task command
type commandOptions struct {
	Output common.CommandConfig
	Domain string
}

var validateFormat = common.ValidateOutputFormat

// session is the per-invocation wiring of a task command
type session struct {
	app      *App
	analyzer *tasks.Analyzer
	provider ai.Provider
	files    *common.FileProcessor
	output   *common.OutputHandler
}

func (s *session) Close() {
	if s.provider == nil {
		return
	}
	if err := s.provider.Close(); err != nil {
		s.app.Logger.LogError(err, "Failed to close AI provider")
	}
}

// newSession builds the provider and analyzer for one command run
func newSession(cmd *cobra.Command) (*session, error) {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(cmd.Context(), app.Config, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	analyzer, err := newAnalyzer(app, provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	extractor := extract.NewExtractor(app.Config.App.MaxResumeChars, app.Config.App.MaxFileSize, app.Logger)
	files := common.NewFileProcessor(extractor, app.Logger)
	return &session{
		app:      app,
		analyzer: analyzer,
		provider: provider,
		files:    files,
		output:   common.NewOutputHandler(files, stdout(cmd), app.Logger),
	}, nil
}

// newAnalyzer wires the task catalog, prompt overrides and contract observers
func newAnalyzer(app *App, invoker ai.CompletionInvoker) (*tasks.Analyzer, error) {
	builder := prompts.NewBuilder()
	overrides, sources, err := app.Config.PromptOverrides()
	if err != nil {
		return nil, err
	}
	if err := builder.SetOverrides(overrides); err != nil {
		return nil, fmt.Errorf("failed to apply prompt overrides: %w", err)
	}
	for _, src := range sources {
		app.Logger.Debug("Prompt override loaded",
			"task", string(src.Task), "type", src.Type, "source", src.Source, "file", src.FilePath)
	}

	contract := app.Observability.Contract()
	return tasks.NewAnalyzer(invoker, tasks.NewCatalog(app.Config), app.Logger,
		tasks.WithPrompts(builder),
		tasks.WithSchemaObserver(contract),
		tasks.WithFallbackObserver(contract),
	), nil
}

// runTask runs one task over the files in args and prints the result. run
// is a method expression such as (*tasks.Analyzer).Critique.
func runTask[Input, Output any](
	cmd *cobra.Command,
	args []string,
	opts *commandOptions,
	createInput common.CreateInputFunc[Input],
	run func(*tasks.Analyzer, context.Context, Input) Output,
	logDetails common.LogDetailsFunc[Input],
) (Output, error) {
	var zero Output
	s, err := newSession(cmd)
	if err != nil {
		return zero, err
	}
	defer s.Close()

	result, err := common.RunTaskCommand(cmd.Context(), s.app.Logger, opts.Output, args,
		common.TaskCommand[Input, Output]{
			Files:       s.files,
			Output:      s.output,
			CreateInput: createInput,
			Run: func(ctx context.Context, in Input) Output {
				return run(s.analyzer, ctx, in)
			},
			LogDetails: logDetails,
		})
	return result, err
}

// single checks a task that takes exactly one input file
func single[Input any](build func(text string) Input) common.CreateInputFunc[Input] {
	return func(contents []string) (Input, error) {
		var zero Input
		if len(contents) != 1 {
			return zero, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return build(contents[0]), nil
	}
}

// logInput logs the start of a command with the fields returned by describe
func logInput[Input any](cmd *cobra.Command, describe func(Input) []any) common.LogDetailsFunc[Input] {
	return func(in Input, cfg common.CommandConfig) {
		app, err := appFromContext(cmd.Context())
		if err != nil {
			return
		}
		kv := append(describe(in), "output_format", cfg.OutputFormat)
		app.Logger.Info("Starting "+cmd.Name(), kv...)
	}
}
