package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/store"
	"resumalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBullets(t *testing.T) {
	content := "- Built the API\n\n* Led a team of 4\n• Cut costs 20%\nplain line\n"
	got := splitBullets(content)
	want := []string{"Built the API", "Led a team of 4", "Cut costs 20%", "plain line"}
	assert.Equal(t, want, got)
}

func TestAppFromContext(t *testing.T) {
	if _, err := appFromContext(context.Background()); err == nil {
		t.Error("Expected error for a context without an app")
	}

	app := &App{Config: &config.Config{}}
	got, err := appFromContext(context.WithValue(context.Background(), appKey, app))
	require.NoError(t, err)
	assert.NotNil(t, got.Logger, "missing logger is replaced with a discard logger")
}

func TestHistoryCommandListsSavedAnalyses(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "analyses.db")
	st, err := store.OpenSQLite(storePath, nil)
	require.NoError(t, err)
	rec := &types.AnalysisRecord{
		UserEmail:    "jane@example.com",
		TargetDomain: "design",
		ResumeText:   "secret resume text",
		Results:      types.CritiqueResult{Score: 77},
	}
	require.NoError(t, st.Save(context.Background(), rec))
	require.NoError(t, st.Close())

	app := &App{
		Config: &config.Config{App: config.AppConfig{
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
			StorePath:        storePath,
		}},
		Logger: errors.Discard(),
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"history", "--email", "jane@example.com", "--format", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute(context.Background(), app))

	var got []types.AnalysisRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, 77, got[0].Results.Score)
	assert.Empty(t, got[0].ResumeText, "history listings omit resume text")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute(context.Background(), &App{Config: &config.Config{}}))
	assert.Contains(t, out.String(), "resumalyzer version "+Version)
}
