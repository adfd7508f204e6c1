package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "  Roast this: {{.ResumeText}}\n"
	testFile := filepath.Join(tempDir, "roast.user.tmpl")
	writeFile(t, testFile, content)

	loaded, err := loadPromptFromFile(testFile, "user", types.TaskRoast)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loaded != strings.TrimSpace(content) {
		t.Errorf("Expected trimmed content %q, got %q", strings.TrimSpace(content), loaded)
	}

	emptyFile := filepath.Join(tempDir, "empty.tmpl")
	writeFile(t, emptyFile, "   \n")
	if _, err := loadPromptFromFile(emptyFile, "user", types.TaskRoast); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := loadPromptFromFile(filepath.Join(tempDir, "nonexistent.tmpl"), "user", types.TaskRoast); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestPromptOverridesPriority(t *testing.T) {
	tempDir := t.TempDir()
	promptDir := filepath.Join(tempDir, "prompts")
	if err := os.Mkdir(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(promptDir, "roast.user.tmpl"), "dir roast {{.ResumeText}}")
	configured := filepath.Join(tempDir, "chat-system.tmpl")
	writeFile(t, configured, "file chat system")

	config := &Config{
		Prompts: PromptsConfig{
			Dir: promptDir,
			Overrides: map[string]PromptOverride{
				"roast":    {User: "inline roast"},
				"chat":     {SystemFile: configured, System: "inline chat system"},
				"jd_match": {User: "inline jd {{.ResumeText}}"},
			},
		},
	}

	set, sources, err := config.PromptOverrides()
	if err != nil {
		t.Fatalf("Expected overrides to resolve, got %v", err)
	}

	tests := []struct {
		task   types.Task
		system string
		user   string
	}{
		{types.TaskRoast, "", "dir roast {{.ResumeText}}"},
		{types.TaskChat, "file chat system", ""},
		{types.TaskJDMatch, "", "inline jd {{.ResumeText}}"},
	}
	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			got := set[tt.task]
			if got.System != tt.system || got.User != tt.user {
				t.Errorf("Expected %+v, got %+v", prompts.Template{System: tt.system, User: tt.user}, got)
			}
		})
	}

	if _, ok := set[types.TaskCritique]; ok {
		t.Error("Expected no override for critique")
	}
	if len(sources) != 3 {
		t.Errorf("Expected 3 prompt sources, got %d", len(sources))
	}
}

func TestPromptOverridesRejectBrokenTemplate(t *testing.T) {
	config := &Config{
		Prompts: PromptsConfig{
			Overrides: map[string]PromptOverride{"roast": {User: "{{.ResumeText"}},
		},
	}
	if _, _, err := config.PromptOverrides(); err == nil {
		t.Error("Expected parse error for broken override")
	}
}

func TestPromptOverridesMissingConfiguredFile(t *testing.T) {
	config := &Config{
		Prompts: PromptsConfig{
			Overrides: map[string]PromptOverride{"roast": {UserFile: "/does/not/exist.tmpl"}},
		},
	}
	if _, _, err := config.PromptOverrides(); err == nil {
		t.Error("Expected error for missing prompt file")
	}
}

type recordingSink struct {
	mu   sync.Mutex
	sets []prompts.Set
}

func (s *recordingSink) SetOverrides(set prompts.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, set)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

func TestPromptWatcherReloadsOnChange(t *testing.T) {
	promptDir := t.TempDir()
	config := &Config{Prompts: PromptsConfig{Dir: promptDir, DebounceDelay: 20 * time.Millisecond}}
	sink := &recordingSink{}

	watcher, err := NewPromptWatcher(config, sink, newTestLogger())
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	if !watcher.IsRunning() {
		t.Fatal("Expected watcher to be running")
	}

	writeFile(t, filepath.Join(promptDir, "roast.user.tmpl"), "short roast {{.ResumeText}}")

	deadline := time.Now().Add(3 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if sink.count() == 0 {
		t.Fatal("Expected overrides to be reloaded after file change")
	}

	sink.mu.Lock()
	last := sink.sets[len(sink.sets)-1]
	sink.mu.Unlock()
	if last[types.TaskRoast].User != "short roast {{.ResumeText}}" {
		t.Errorf("Expected reloaded roast override, got %q", last[types.TaskRoast].User)
	}
}

func TestPromptWatcherRequiresDir(t *testing.T) {
	if _, err := NewPromptWatcher(&Config{}, &recordingSink{}, nil); err == nil {
		t.Error("Expected error without prompts.dir")
	}
}
