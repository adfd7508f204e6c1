package common

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newRoastCommand(analyzer *tasks.Analyzer, stdout *bytes.Buffer) TaskCommand[types.RoastInput, string] {
	fp := NewFileProcessor(nil, nil)
	return TaskCommand[types.RoastInput, string]{
		Files:  fp,
		Output: NewOutputHandler(fp, stdout, nil),
		CreateInput: func(contents []string) (types.RoastInput, error) {
			return types.RoastInput{ResumeText: contents[0]}, nil
		},
		Run: analyzer.Roast,
	}
}

func TestRunTaskCommandWritesFormattedResult(t *testing.T) {
	inv := ai.NewScriptedInvoker().QueueFor(types.TaskRoast, ai.Reply("Your resume is a haiku of buzzwords."))
	analyzer := tasks.NewAnalyzer(inv, nil, errors.Discard())
	var stdout bytes.Buffer

	resume := writeFile(t, "resume.txt", "Jane Doe\nSynergy expert\n")
	result, err := RunTaskCommand(context.Background(), nil,
		CommandConfig{OutputFormat: "text"}, []string{resume}, newRoastCommand(analyzer, &stdout))

	require.NoError(t, err)
	assert.Equal(t, "Your resume is a haiku of buzzwords.", result)
	assert.Contains(t, stdout.String(), "haiku of buzzwords")

	calls := inv.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Request.User, "Jane Doe Synergy expert", "input files are cleaned before prompting")
}

func TestRunTaskCommandWritesOutputFile(t *testing.T) {
	inv := ai.NewScriptedInvoker()
	analyzer := tasks.NewAnalyzer(inv, nil, errors.Discard())
	var stdout bytes.Buffer

	out := filepath.Join(t.TempDir(), "reports", "roast.json")
	resume := writeFile(t, "resume.md", "# Jane")
	_, err := RunTaskCommand(context.Background(), nil,
		CommandConfig{OutputFormat: "json", OutputFile: out}, []string{resume}, newRoastCommand(analyzer, &stdout))
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tasks.RoastFallback, decoded, "exhausted script falls back")
}

func TestRunTaskCommandRejectsBadInput(t *testing.T) {
	inv := ai.NewScriptedInvoker()
	analyzer := tasks.NewAnalyzer(inv, nil, errors.Discard())
	var stdout bytes.Buffer

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.txt")}, errors.ErrCodeFileNotFound},
		{"unsupported format", []string{writeFile(t, "resume.rtf", "x")}, errors.ErrCodeUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunTaskCommand(context.Background(), nil,
				CommandConfig{OutputFormat: "text"}, tt.args, newRoastCommand(analyzer, &stdout))
			require.Error(t, err)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error code %s, got %v", tt.want, err)
			}
		})
	}
	assert.Zero(t, inv.CallCount(), "bad input must not reach the provider")
}

func TestReadFileKeepsRawContent(t *testing.T) {
	fp := NewFileProcessor(nil, nil)
	path := writeFile(t, "bullets.txt", "first bullet\nsecond bullet\n")

	content, err := fp.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first bullet\nsecond bullet\n", content)
}
