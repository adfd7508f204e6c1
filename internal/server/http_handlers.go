package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler reports service status including AI model availability
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"service":   "resumalyzer",
		"version":   s.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"store":     s.store != nil,
	}

	healthy := true
	if s.provider != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		info := s.provider.ModelInfo(ctx)
		response["ai_model"] = info
		response["circuit_breakers"] = s.provider.BreakerStats()
		healthy = info != nil && info.Available
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumalyzer",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_upload_size_bytes":  s.MaxUploadSize,
			"api_keys":               s.Keys.Len(),
		},
	}

	// Add rate limiting stats if enabled
	if s.Budget != nil {
		response["rate_limiting"] = s.Budget.Stats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":        s.RateLimit.Enabled,
			"calls_per_min":  s.RateLimit.CallsPerMin,
			"burst_capacity": s.RateLimit.BurstCapacity,
			"by_ip":          s.RateLimit.ByIP,
			"by_api_key":     s.RateLimit.ByAPIKey,
		}
	}

	if s.refresher != nil {
		response["key_refresh"] = s.refresher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeSuccess writes {"success": true, key: value}
func writeSuccess(w http.ResponseWriter, key string, value any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		key:       value,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
