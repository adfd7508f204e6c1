package server

import (
	"fmt"
	"sync"
	"time"

	"resumalyzer/internal/errors"
)

const defaultKeyPollInterval = 5 * time.Minute

// KeySource returns the current server API keys and their secret version.
// config.VaultClient implements it.
type KeySource interface {
	ServerAPIKeys() ([]string, int64, error)
}

// KeyRefresher polls a KeySource and swaps the key ring when the secret
// version advances.
type KeyRefresher struct {
	mu sync.RWMutex

	source       KeySource
	ring         *KeyRing
	pollInterval time.Duration
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastError   string
	lastRefresh time.Time
}

// NewKeyRefresher creates a refresher that updates ring from source
func NewKeyRefresher(source KeySource, ring *KeyRing, pollInterval time.Duration, logger *errors.Logger) *KeyRefresher {
	if pollInterval <= 0 {
		pollInterval = defaultKeyPollInterval
	}
	if logger == nil {
		logger = errors.Discard()
	}
	return &KeyRefresher{
		source:       source,
		ring:         ring,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start begins polling
func (kr *KeyRefresher) Start() error {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	if kr.running {
		return fmt.Errorf("key refresher is already running")
	}
	kr.running = true
	kr.stopChan = make(chan struct{})
	go kr.pollLoop(kr.stopChan)
	kr.logger.Info("API key refresher started", "poll_interval", kr.pollInterval)
	return nil
}

// Stop stops polling
func (kr *KeyRefresher) Stop() {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	if !kr.running {
		return
	}
	close(kr.stopChan)
	kr.running = false
	kr.logger.Info("API key refresher stopped")
}

func (kr *KeyRefresher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(kr.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := kr.Refresh(); err != nil {
				kr.logger.LogError(err, "Failed to refresh API keys")
			}
		case <-stop:
			return
		}
	}
}

// Refresh reads the source once and installs the keys when the version is
// newer than the last one seen. An empty key list is never installed.
func (kr *KeyRefresher) Refresh() (bool, error) {
	keys, version, err := kr.source.ServerAPIKeys()

	kr.mu.Lock()
	defer kr.mu.Unlock()
	kr.lastRefresh = time.Now()
	if err != nil {
		kr.lastError = err.Error()
		return false, fmt.Errorf("failed to read API keys: %w", err)
	}
	kr.lastError = ""

	if version <= kr.lastVersion {
		return false, nil
	}
	if len(keys) == 0 {
		return false, fmt.Errorf("secret version %d holds no API keys", version)
	}

	kr.ring.Replace(keys)
	kr.lastVersion = version
	kr.logger.Info("API keys refreshed", "version", version, "count", len(keys))
	return true, nil
}

// Status returns the refresher state for /stats
func (kr *KeyRefresher) Status() map[string]any {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	status := map[string]any{
		"running":       kr.running,
		"poll_interval": kr.pollInterval.String(),
		"last_version":  kr.lastVersion,
	}
	if !kr.lastRefresh.IsZero() {
		status["last_refresh"] = kr.lastRefresh.UTC().Format(time.RFC3339)
	}
	if kr.lastError != "" {
		status["last_error"] = kr.lastError
	}
	return status
}
