package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	resumalyzerErrors "resumalyzer/internal/errors"
	"resumalyzer/internal/observability"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "resumalyzer.api"

	// multipart bodies carry boundaries and form fields next to the files
	multipartOverhead = 1 << 20
)

// startSpan opens the api.<operation> span for a request
func (s *Server) startSpan(r *http.Request, operation string) (context.Context, trace.Span) {
	ctx, span := s.om.Tracer(instrumentationName).Start(r.Context(), "api."+operation)
	span.SetAttributes(attribute.String("operation", operation))
	return ctx, span
}

// reject records a validation failure on span and writes a 4xx
func reject(w http.ResponseWriter, span trace.Span, status int, title, message string) {
	span.RecordError(fmt.Errorf("%s", strings.ToLower(title)))
	span.SetAttributes(attribute.String("error.type", "validation"))
	writeErrorResponse(w, title, message, status)
}

// decode parses a JSON body into v, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, span trace.Span, v any) bool {
	if err := parseJSONRequest(r, v); err != nil {
		reject(w, span, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "analyze")
	defer span.End()

	var req AnalyzeRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) || blank(req.TargetDomain) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Resume text and target domain are required")
		return
	}
	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.String("request.target_domain", req.TargetDomain))

	analysis := s.analyzer.Critique(ctx, types.CritiqueInput{
		ResumeText:   req.ResumeText,
		TargetDomain: req.TargetDomain,
	})
	span.SetAttributes(attribute.Int("result.score", analysis.Score))
	writeSuccess(w, "analysis", analysis)
}

func (s *Server) jdMatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "jd_match")
	defer span.End()

	var req JDMatchRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) || blank(req.JobDescription) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Resume text and job description are required")
		return
	}

	result := s.analyzer.MatchJD(ctx, types.JDMatchInput(req))
	span.SetAttributes(attribute.Int("result.match_percentage", result.MatchPercentage))
	writeSuccess(w, "matchResult", result)
}

func (s *Server) rewriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "rewrite")
	defer span.End()

	var req RewriteRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.BulletText) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Bullet text is required")
		return
	}

	writeSuccess(w, "improvement", s.analyzer.RewriteBullet(ctx, types.BulletInput{Text: req.BulletText}))
}

func (s *Server) coverLetterHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "cover_letter")
	defer span.End()

	var req CoverLetterRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.JobTitle) || (blank(req.ResumeText) && blank(req.UserName)) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Job title and either resume text or user name are required")
		return
	}

	writeSuccess(w, "coverLetter", s.analyzer.CoverLetter(ctx, types.CoverLetterInput(req)))
}

func (s *Server) enhanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "enhance")
	defer span.End()

	var req EnhanceRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Resume text is required")
		return
	}

	writeSuccess(w, "enhancedResume", s.analyzer.Enhance(ctx, types.EnhanceInput(req)))
}

func (s *Server) roastHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "roast")
	defer span.End()

	var req RoastRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) {
		reject(w, span, http.StatusBadRequest, "Missing input", "No resume text provided")
		return
	}

	writeSuccess(w, "roast", s.analyzer.Roast(ctx, types.RoastInput{ResumeText: req.ResumeText}))
}

func (s *Server) learningPathHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "learning_path")
	defer span.End()

	var req LearningPathRequest
	if !decode(w, r, span, &req) {
		return
	}
	if req.MissingSkills == nil {
		reject(w, span, http.StatusBadRequest, "Missing input", "Missing skills array is required")
		return
	}
	span.SetAttributes(attribute.Int("request.skills", len(req.MissingSkills)))

	writeSuccess(w, "learningPath", s.analyzer.LearningPath(ctx, types.LearningPathInput(req)))
}

func (s *Server) interviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "interview_questions")
	defer span.End()

	var req InterviewRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Resume text is required")
		return
	}

	script := s.analyzer.InterviewQuestions(ctx, types.InterviewInput(req))
	writeSuccess(w, "questions", script.Questions)
}

func (s *Server) graphHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "graph")
	defer span.End()

	var req GraphRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.ResumeText) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Resume text is required")
		return
	}

	writeSuccess(w, "graph", s.analyzer.SkillGraph(ctx, types.SkillGraphInput(req)))
}

func (s *Server) graphUploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "graph_upload")
	defer span.End()

	text, ok := s.readUpload(w, r, span, "resume")
	if !ok {
		return
	}

	graph := s.analyzer.SkillGraph(ctx, types.SkillGraphInput{
		ResumeText: text,
		TargetRole: r.FormValue("targetRole"),
	})
	writeSuccess(w, "graph", graph)
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "chat")
	defer span.End()

	var req ChatRequest
	if !decode(w, r, span, &req) {
		return
	}
	if blank(req.Message) {
		reject(w, span, http.StatusBadRequest, "Missing input", "Message is required")
		return
	}
	span.SetAttributes(attribute.Int("request.history", len(req.ConversationHistory)))

	reply := s.analyzer.Chat(ctx, types.ChatInput{
		Message:       req.Message,
		ResumeContext: req.ResumeContext,
		TargetDomain:  req.TargetDomain,
		History:       req.ConversationHistory,
	})
	writeSuccess(w, "response", reply.Response)
}

// uploadHandler extracts an uploaded resume, critiques it and persists the
// record when the store is enabled.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "upload")
	defer span.End()
	metrics := s.om.GetMetrics()

	text, ok := s.readUpload(w, r, span, "resume")
	if !ok {
		metrics.RecordBusinessMetric(ctx, observability.MetricResumeUploaded, false)
		return
	}

	domain := r.FormValue("targetDomain")
	if blank(domain) {
		domain = prompts.DefaultDomain
	}
	span.SetAttributes(
		attribute.Int("request.resume_length", len(text)),
		attribute.String("request.target_domain", domain))

	results := s.analyzer.Critique(ctx, types.CritiqueInput{ResumeText: text, TargetDomain: domain})
	metrics.RecordBusinessMetric(ctx, observability.MetricResumeUploaded, true,
		attribute.String("target_domain", domain))

	response := map[string]any{
		"success":       true,
		"results":       results,
		"extractedText": text,
	}

	if s.store != nil {
		rec := &types.AnalysisRecord{
			UserEmail:    r.FormValue("userEmail"),
			TargetDomain: domain,
			ResumeText:   text,
			Results:      results,
		}
		if err := s.store.Save(ctx, rec); err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisStored, false)
			s.Logger.LogError(err, "Failed to persist analysis")
			writeErrorResponse(w, "Failed to process resume", err.Error(), http.StatusInternalServerError)
			return
		}
		metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisStored, true)
		response["analysisId"] = rec.ID
	}

	writeJSON(w, http.StatusOK, response)
}

// compareHandler accepts two uploaded files or a JSON body with both texts
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "compare")
	defer span.End()

	var in types.BattleInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		a, ok := s.readUpload(w, r, span, "resume1")
		if !ok {
			return
		}
		b, ok := s.readUpload(w, r, span, "resume2")
		if !ok {
			return
		}
		in = types.BattleInput{ResumeA: a, ResumeB: b, TargetDomain: r.FormValue("targetDomain")}
	} else {
		var req CompareRequest
		if !decode(w, r, span, &req) {
			return
		}
		if blank(req.ResumeA) || blank(req.ResumeB) {
			reject(w, span, http.StatusBadRequest, "Missing input", "Both resumes (resumeA, resumeB) are required")
			return
		}
		in = types.BattleInput(req)
	}

	result := s.analyzer.Battle(ctx, in)
	s.om.GetMetrics().RecordBusinessMetric(ctx, observability.MetricBattleCompared, true,
		attribute.String("winner_id", result.Battle.WinnerID))
	span.SetAttributes(attribute.Int("result.score_diff", result.Stats.ScoreDiff))
	writeSuccess(w, "data", result)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "history")
	defer span.End()

	if s.store == nil {
		writeErrorResponse(w, "History is disabled", "The analysis store is not enabled", http.StatusServiceUnavailable)
		return
	}
	email := r.URL.Query().Get("email")
	if blank(email) {
		reject(w, span, http.StatusBadRequest, "Missing input", "email query parameter is required")
		return
	}

	records, err := s.store.ListByEmail(ctx, email, 0)
	if err != nil {
		s.writeStoreError(w, span, err)
		return
	}
	for i := range records {
		records[i].ResumeText = ""
	}
	writeSuccess(w, "history", records)
}

func (s *Server) analysisHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "analysis")
	defer span.End()

	if s.store == nil {
		writeErrorResponse(w, "History is disabled", "The analysis store is not enabled", http.StatusServiceUnavailable)
		return
	}

	rec, err := s.store.Get(ctx, r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, span, err)
		return
	}
	writeSuccess(w, "analysis", rec)
}

func (s *Server) writeStoreError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	var appErr *resumalyzerErrors.AppError
	if errors.As(err, &appErr) && appErr.Code == resumalyzerErrors.ErrCodeNotFound {
		writeErrorResponse(w, "Analysis not found", appErr.Message, http.StatusNotFound)
		return
	}
	s.Logger.LogError(err, "Analysis store failure")
	writeErrorResponse(w, "Failed to read analyses", err.Error(), http.StatusInternalServerError)
}

// readUpload extracts the text of the multipart file in field
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, span trace.Span, field string) (string, bool) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			reject(w, span, http.StatusBadRequest, "Invalid upload", uploadError(err))
			return "", false
		}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		reject(w, span, http.StatusBadRequest, "Invalid upload", fmt.Sprintf("No %s file uploaded", field))
		return "", false
	}
	defer func() { _ = file.Close() }()

	text, err := s.extractor.ReadAll(file, header.Filename)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", string(resumalyzerErrors.TypeOf(err))))
		// a rejected upload is the client's fault; a file that would not parse is unprocessable
		status := http.StatusUnprocessableEntity
		if resumalyzerErrors.IsValidation(err) {
			status = http.StatusBadRequest
		}
		writeErrorResponse(w, "Failed to process resume", err.Error(), status)
		return "", false
	}
	return text, true
}

func uploadError(err error) string {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Sprintf("File too large (limit is %d bytes)", maxBytesErr.Limit)
	}
	return fmt.Sprintf("Failed to parse multipart form: %v", err)
}
