package common

import (
	"context"
	"fmt"

	"resumalyzer/internal/errors"
)

// CreateInputFunc defines how to create the specific task input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// TaskFunc is a task entry point. Tasks never fail; a provider problem
// surfaces as a fallback result.
type TaskFunc[Input, Output any] func(context.Context, Input) Output

// TaskCommand wires one CLI command to a task
type TaskCommand[Input, Output any] struct {
	Files       *FileProcessor
	Output      *OutputHandler
	CreateInput CreateInputFunc[Input]
	Run         TaskFunc[Input, Output]
	LogDetails  LogDetailsFunc[Input]
}

// RunTaskCommand extracts the input files, runs the task and writes the
// formatted result. The result is returned so callers can persist it.
func RunTaskCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	cmd TaskCommand[Input, Output],
) (Output, error) {
	var zero Output
	if logger == nil {
		logger = errors.Discard()
	}

	// Check the output path before spending a provider call
	if err := cmd.Files.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return zero, err
	}

	contents, err := cmd.Files.ExtractFiles(args...)
	if err != nil {
		return zero, err
	}

	input, err := cmd.CreateInput(contents)
	if err != nil {
		return zero, fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if cmd.LogDetails != nil {
		cmd.LogDetails(input, cmdConfig)
	}

	result := cmd.Run(ctx, input)

	if err := cmd.Output.HandleOutput(result, cmdConfig); err != nil {
		return zero, err
	}
	return result, nil
}
