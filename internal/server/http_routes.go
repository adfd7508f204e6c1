package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	jsonLimit := s.requestSizeLimitMiddleware(s.MaxRequestSize)
	uploadLimit := s.requestSizeLimitMiddleware(s.uploadLimit())

	// protected routes are authenticated, size-limited and charged cost model calls
	protected := func(cost int, limit func(http.HandlerFunc) http.HandlerFunc, h http.HandlerFunc) http.HandlerFunc {
		return s.budgetMiddleware(cost)(s.authMiddleware(limit(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	if h := s.om.MetricsHandler(); h != nil {
		mux.Handle("GET "+s.om.MetricsEndpoint(), h)
	}

	mux.HandleFunc("POST /api/resume/upload", protected(costSingleCall, uploadLimit, s.uploadHandler))
	mux.HandleFunc("POST /api/resume/analyze", protected(costSingleCall, jsonLimit, s.analyzeHandler))
	mux.HandleFunc("POST /api/resume/jd-match", protected(costSingleCall, jsonLimit, s.jdMatchHandler))
	mux.HandleFunc("POST /api/resume/rewrite", protected(costSingleCall, jsonLimit, s.rewriteHandler))
	mux.HandleFunc("POST /api/resume/cover-letter", protected(costSingleCall, jsonLimit, s.coverLetterHandler))
	mux.HandleFunc("POST /api/resume/cover-letter-enhanced", protected(costSingleCall, jsonLimit, s.coverLetterHandler))
	mux.HandleFunc("POST /api/resume/enhance", protected(costSingleCall, jsonLimit, s.enhanceHandler))
	mux.HandleFunc("POST /api/resume/roast", protected(costSingleCall, jsonLimit, s.roastHandler))
	mux.HandleFunc("POST /api/resume/learning-path", protected(costSingleCall, jsonLimit, s.learningPathHandler))
	mux.HandleFunc("POST /api/resume/interview-questions", protected(costSingleCall, jsonLimit, s.interviewHandler))
	mux.HandleFunc("POST /api/resume/graph", protected(costSingleCall, jsonLimit, s.graphHandler))
	mux.HandleFunc("POST /api/graph/upload", protected(costSingleCall, uploadLimit, s.graphUploadHandler))
	mux.HandleFunc("POST /api/resume/compare", protected(costCompare, uploadLimit, s.compareHandler))
	mux.HandleFunc("POST /api/chat", protected(costSingleCall, jsonLimit, s.chatHandler))

	mux.HandleFunc("GET /api/resume/history", protected(costStoreRead, jsonLimit, s.historyHandler))
	mux.HandleFunc("GET /api/resume/analysis/{id}", protected(costStoreRead, jsonLimit, s.analysisHandler))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if s.Keys.Len() == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.Keys.Valid(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r),
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(limit int64) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next(w, r)
		}
	}
}

// uploadLimit bounds a multipart body: two resumes plus form overhead
func (s *Server) uploadLimit() int64 {
	if s.MaxUploadSize <= 0 {
		return 0
	}
	return 2*s.MaxUploadSize + multipartOverhead
}
