package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync/atomic"
)

// KeyRing holds the accepted API keys. Replace swaps the whole set so
// requests never see a partial update.
type KeyRing struct {
	keys atomic.Pointer[map[string]struct{}]
}

// NewKeyRing creates a ring holding keys
func NewKeyRing(keys []string) *KeyRing {
	r := &KeyRing{}
	r.Replace(keys)
	return r
}

// Replace installs a new key set. Empty keys are ignored.
func (r *KeyRing) Replace(keys []string) {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			set[key] = struct{}{}
		}
	}
	r.keys.Store(&set)
}

// Len returns the number of configured keys
func (r *KeyRing) Len() int {
	return len(*r.keys.Load())
}

// Valid reports whether key is in the ring
func (r *KeyRing) Valid(key string) bool {
	for candidate := range *r.keys.Load() {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// requestAPIKey reads X-API-Key, falling back to an Authorization Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
