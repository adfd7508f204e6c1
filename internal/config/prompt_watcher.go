package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"

	"github.com/fsnotify/fsnotify"
)

// OverrideSink receives reloaded prompt overrides
type OverrideSink interface {
	SetOverrides(prompts.Set) error
}

// PromptWatcher watches the prompt directory and pushes reloaded overrides
// into a sink. A reload that fails to parse keeps the previous overrides.
type PromptWatcher struct {
	mu sync.Mutex

	cfg  *Config
	sink OverrideSink

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	logger  *errors.Logger
	running bool
}

// NewPromptWatcher creates a watcher for cfg.Prompts.Dir
func NewPromptWatcher(cfg *Config, sink OverrideSink, logger *errors.Logger) (*PromptWatcher, error) {
	if cfg.Prompts.Dir == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "prompts.dir is required to watch prompt overrides", nil)
	}
	if logger == nil {
		logger = errors.Discard()
	}
	debounceDelay := cfg.Prompts.DebounceDelay
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &PromptWatcher{
		cfg:           cfg,
		sink:          sink,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}, nil
}

// Start begins watching the prompt directory
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(pw.cfg.Prompts.Dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			pw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", pw.cfg.Prompts.Dir, err)
	}
	pw.fsWatcher = watcher

	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt watcher started",
		"dir", pw.cfg.Prompts.Dir,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.running = false

	if err := pw.fsWatcher.Close(); err != nil {
		pw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	pw.logger.Info("Prompt watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.running
}

// Reload resolves overrides and hands them to the sink
func (pw *PromptWatcher) Reload() error {
	set, sources, err := pw.cfg.PromptOverrides()
	if err != nil {
		pw.logger.LogError(err, "Prompt reload failed, keeping previous overrides")
		return err
	}
	if err := pw.sink.SetOverrides(set); err != nil {
		pw.logger.LogError(err, "Prompt overrides rejected, keeping previous overrides")
		return err
	}
	pw.logger.Info("Prompt overrides reloaded", "tasks", len(set), "sources", len(sources))
	return nil
}

func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if shouldProcessPromptEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "File watcher error")

		case <-pw.reloadChan:
			_ = pw.Reload()

		case <-pw.stopChan:
			return
		}
	}
}

// shouldProcessPromptEvent keeps template file writes, creates, renames and removes
func shouldProcessPromptEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, systemPromptSuffix) && !strings.HasSuffix(event.Name, userPromptSuffix) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
			// reload already pending
		}
	})
}
