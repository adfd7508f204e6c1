package server

import (
	"time"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/config"
	resumalyzerErrors "resumalyzer/internal/errors"
	"resumalyzer/internal/extract"
	"resumalyzer/internal/observability"
	"resumalyzer/internal/store"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"
)

// AnalyzeRequest is the body of /api/resume/analyze
type AnalyzeRequest struct {
	ResumeText   string `json:"resumeText"`
	TargetDomain string `json:"targetDomain"`
}

// JDMatchRequest is the body of /api/resume/jd-match
type JDMatchRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	TargetDomain   string `json:"targetDomain"`
}

// RewriteRequest is the body of /api/resume/rewrite
type RewriteRequest struct {
	BulletText string `json:"bulletText"`
}

// CoverLetterRequest is the body of the cover letter endpoints
type CoverLetterRequest struct {
	ResumeText     string `json:"resumeText"`
	JobTitle       string `json:"jobTitle"`
	UserName       string `json:"userName"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
	Tone           string `json:"tone"`
}

// EnhanceRequest is the body of /api/resume/enhance
type EnhanceRequest struct {
	ResumeText string `json:"resumeText"`
	Tone       string `json:"tone"`
	TargetRole string `json:"targetRole"`
}

// RoastRequest is the body of /api/resume/roast
type RoastRequest struct {
	ResumeText string `json:"resumeText"`
}

// LearningPathRequest is the body of /api/resume/learning-path
type LearningPathRequest struct {
	MissingSkills []string `json:"missingSkills"`
	TargetDomain  string   `json:"targetDomain"`
}

// InterviewRequest is the body of /api/resume/interview-questions
type InterviewRequest struct {
	ResumeText   string `json:"resumeText"`
	TargetDomain string `json:"targetDomain"`
}

// GraphRequest is the body of /api/resume/graph
type GraphRequest struct {
	ResumeText string `json:"resumeText"`
	TargetRole string `json:"targetRole"`
}

// CompareRequest is the JSON body of /api/resume/compare
type CompareRequest struct {
	ResumeA      string `json:"resumeA"`
	ResumeB      string `json:"resumeB"`
	TargetDomain string `json:"targetDomain"`
}

// ChatRequest is the body of /api/chat
type ChatRequest struct {
	Message             string              `json:"message"`
	ResumeContext       string              `json:"resumeContext"`
	TargetDomain        string              `json:"targetDomain"`
	ConversationHistory []types.ChatMessage `json:"conversationHistory"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	Keys *KeyRing

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limits
	MaxRequestSize int64
	MaxUploadSize  int64

	// Rate limiting
	RateLimit *config.RateLimitConfig
	Budget    *CallBudget

	analyzer  *tasks.Analyzer
	provider  ai.Provider
	extractor *extract.Extractor
	store     store.Store
	om        *observability.ObservabilityManager
	refresher *KeyRefresher

	// Logger
	Logger *resumalyzerErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxUploadSize  int64
	RateLimit      *config.RateLimitConfig
}

// Deps are the collaborators the handlers call into. Store and KeySource
// may be nil.
type Deps struct {
	Analyzer      *tasks.Analyzer
	Provider      ai.Provider
	Extractor     *extract.Extractor
	Store         store.Store
	Observability *observability.ObservabilityManager
	KeySource     KeySource
	KeyRefresh    config.KeyRefreshConfig
}

// ServerConfigFrom builds the ServerConfig for appCfg
func ServerConfigFrom(appCfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		APIKeys:        appCfg.Server.APIKeys,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		MaxUploadSize:  appCfg.Server.MaxUploadSize,
		RateLimit:      &appCfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Deps, logger *resumalyzerErrors.Logger) *Server {
	if logger == nil {
		logger = resumalyzerErrors.Discard()
	}

	var budget *CallBudget
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		budget = NewCallBudget(cfg.RateLimit.CallsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	extractor := deps.Extractor
	if extractor == nil {
		extractor = extract.NewExtractor(0, cfg.MaxUploadSize, logger)
	}

	om := deps.Observability
	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{ServiceName: "resumalyzer"}, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Keys:           NewKeyRing(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxUploadSize:  cfg.MaxUploadSize,
		RateLimit:      cfg.RateLimit,
		Budget:         budget,
		analyzer:       deps.Analyzer,
		provider:       deps.Provider,
		extractor:      extractor,
		store:          deps.Store,
		om:             om,
		Logger:         logger,
	}

	if deps.KeySource != nil && deps.KeyRefresh.Enabled {
		s.refresher = NewKeyRefresher(deps.KeySource, s.Keys, deps.KeyRefresh.PollInterval, logger)
	}
	return s
}
