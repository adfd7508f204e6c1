package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayStoreInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health, /api/health              - Health check")
	fmt.Println("  GET  /stats                            - Server statistics")
	if s.om.MetricsHandler() != nil {
		fmt.Printf("  GET  %-34s - Prometheus metrics\n", s.om.MetricsEndpoint())
	}
	fmt.Println("  POST /api/resume/upload                - Upload and critique a resume file")
	fmt.Println("  POST /api/resume/analyze               - Critique resume text")
	fmt.Println("  POST /api/resume/jd-match              - Match a resume to a job description")
	fmt.Println("  POST /api/resume/rewrite               - Rewrite one bullet point")
	fmt.Println("  POST /api/resume/cover-letter          - Generate a cover letter")
	fmt.Println("  POST /api/resume/enhance               - Rewrite the whole resume")
	fmt.Println("  POST /api/resume/roast                 - Roast a resume")
	fmt.Println("  POST /api/resume/learning-path         - Plan learning for missing skills")
	fmt.Println("  POST /api/resume/interview-questions   - Generate interview questions")
	fmt.Println("  POST /api/resume/graph, /api/graph/upload - Build a skill graph")
	fmt.Println("  POST /api/resume/compare               - Compare two resumes")
	fmt.Println("  POST /api/chat                         - Career chat assistant")
	fmt.Println("  GET  /api/resume/history?email=        - Stored analyses for an email")
	fmt.Println("  GET  /api/resume/analysis/{id}         - One stored analysis")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if n := s.Keys.Len(); n > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /api endpoints")
		if s.refresher != nil {
			fmt.Println("  - Keys are refreshed from Vault")
		}
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
		if s.MaxUploadSize > 0 {
			fmt.Printf("Upload size limit: %d bytes per file (%.1f MB)\n", s.MaxUploadSize, float64(s.MaxUploadSize)/(1024*1024))
		}
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d model calls/min, burst: %d)\n",
			s.RateLimit.CallsPerMin, s.RateLimit.BurstCapacity)
		fmt.Printf("  - /api/resume/compare spends %d calls, every other route %d\n", costCompare, costSingleCall)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

// displayStoreInfo shows whether analyses are persisted
func (s *Server) displayStoreInfo() {
	if s.store != nil {
		fmt.Println("Analysis store: ENABLED (uploads are saved)")
	} else {
		fmt.Println("Analysis store: DISABLED (history endpoints return 503)")
	}
}
