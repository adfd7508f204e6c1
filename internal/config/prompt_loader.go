package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"
)

// Prompt file names inside prompts.dir
const (
	systemPromptSuffix = ".system.tmpl"
	userPromptSuffix   = ".user.tmpl"
)

// PromptSource records where an override was loaded from
type PromptSource struct {
	Task     types.Task
	Type     string // "system" or "user"
	Source   string // "dir", "file", "config"
	FilePath string
}

// PromptOverrides resolves the override templates for every task.
// Priority is prompt directory file > configured file > inline config; tasks
// with none of these use the built-in templates. Every resolved template is
// parsed before it is returned.
func (c *Config) PromptOverrides() (prompts.Set, []PromptSource, error) {
	set := prompts.Set{}
	var sources []PromptSource

	for _, task := range types.AllTasks {
		inline := c.Prompts.Overrides[task.ConfigKey()]

		system, sysSource, err := c.resolvePrompt(task, "system", systemPromptSuffix, inline.SystemFile, inline.System)
		if err != nil {
			return nil, nil, err
		}
		user, userSource, err := c.resolvePrompt(task, "user", userPromptSuffix, inline.UserFile, inline.User)
		if err != nil {
			return nil, nil, err
		}

		if system == "" && user == "" {
			continue
		}
		set[task] = prompts.Template{System: system, User: user}
		for _, src := range []*PromptSource{sysSource, userSource} {
			if src != nil {
				sources = append(sources, *src)
			}
		}
	}

	if err := prompts.Validate(set); err != nil {
		return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid prompt override", err)
	}
	return set, sources, nil
}

// resolvePrompt picks one override by priority: dir file, configured file, inline text
func (c *Config) resolvePrompt(task types.Task, promptType, suffix, filePath, inline string) (string, *PromptSource, error) {
	if c.Prompts.Dir != "" {
		path := filepath.Join(c.Prompts.Dir, string(task)+suffix)
		if _, err := os.Stat(path); err == nil {
			content, err := loadPromptFromFile(path, promptType, task)
			if err != nil {
				return "", nil, err
			}
			return content, &PromptSource{Task: task, Type: promptType, Source: "dir", FilePath: path}, nil
		}
	}

	if filePath != "" {
		content, err := loadPromptFromFile(filePath, promptType, task)
		if err != nil {
			return "", nil, err
		}
		return content, &PromptSource{Task: task, Type: promptType, Source: "file", FilePath: filePath}, nil
	}

	if strings.TrimSpace(inline) != "" {
		return inline, &PromptSource{Task: task, Type: promptType, Source: "config"}, nil
	}

	return "", nil, nil
}

// loadPromptFromFile reads a prompt template from disk and rejects empty files
func loadPromptFromFile(filePath, promptType string, task types.Task) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to resolve absolute path for %s %s prompt file '%s'", task, promptType, filePath), err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", errors.NewConfigError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("%s %s prompt file not found: %s", task, promptType, absPath), err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", errors.NewConfigError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to read %s %s prompt file '%s'", task, promptType, absPath), err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("%s %s prompt file '%s' is empty", task, promptType, absPath), nil)
	}

	return trimmedContent, nil
}
