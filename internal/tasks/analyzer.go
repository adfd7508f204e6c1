package tasks

import (
	"context"
	"sync"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"
)

// Analyzer exposes one entry point per task. No entry point returns an
// error: every failure resolves to the task's fallback value.
type Analyzer struct {
	invoker   ai.CompletionInvoker
	catalog   *Catalog
	prompts   *prompts.Builder
	contract  schema.Observer
	fallbacks FallbackObserver
	logger    *errors.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithPrompts replaces the default prompt builder
func WithPrompts(b *prompts.Builder) Option {
	return func(a *Analyzer) { a.prompts = b }
}

// WithSchemaObserver receives every SchemaDefaultApplied event
func WithSchemaObserver(obs schema.Observer) Option {
	return func(a *Analyzer) { a.contract = obs }
}

// WithFallbackObserver is told about every fallback
func WithFallbackObserver(obs FallbackObserver) Option {
	return func(a *Analyzer) { a.fallbacks = obs }
}

// NewAnalyzer creates an analyzer. A nil catalog uses the built-in defaults.
func NewAnalyzer(invoker ai.CompletionInvoker, catalog *Catalog, logger *errors.Logger, opts ...Option) *Analyzer {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	if logger == nil {
		logger = errors.Discard()
	}
	a := &Analyzer{
		invoker: invoker,
		catalog: catalog,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompts == nil {
		a.prompts = prompts.NewBuilder()
	}
	return a
}

// Prompts returns the builder so overrides can be swapped at runtime
func (a *Analyzer) Prompts() *prompts.Builder {
	return a.prompts
}

// Catalog returns the task catalog
func (a *Analyzer) Catalog() *Catalog {
	return a.catalog
}

// Critique scores a resume against a target domain
func (a *Analyzer) Critique(ctx context.Context, in types.CritiqueInput) types.CritiqueResult {
	return run(ctx, a, types.TaskCritique, a.prompts.Critique(in), CritiqueFallback)
}

// MatchJD scores a resume against a job description
func (a *Analyzer) MatchJD(ctx context.Context, in types.JDMatchInput) types.JDMatchResult {
	return run(ctx, a, types.TaskJDMatch, a.prompts.JDMatch(in), JDMatchFallback)
}

// RewriteBullet rewrites one bullet point in XYZ format
func (a *Analyzer) RewriteBullet(ctx context.Context, in types.BulletInput) types.BulletRewrite {
	return run(ctx, a, types.TaskBulletRewrite, a.prompts.BulletRewrite(in), BulletRewriteFallback)
}

// RewriteBullets issues one independent call per bullet in parallel. Each
// result falls back on its own and keeps the position of its input.
func (a *Analyzer) RewriteBullets(ctx context.Context, bullets []string) []types.BulletRewrite {
	out := make([]types.BulletRewrite, len(bullets))
	var wg sync.WaitGroup
	for i, text := range bullets {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			out[i] = a.RewriteBullet(ctx, types.BulletInput{Text: text})
		}(i, text)
	}
	wg.Wait()
	return out
}

// CoverLetter writes a cover letter. The fallback embeds the request's job, company and name.
func (a *Analyzer) CoverLetter(ctx context.Context, in types.CoverLetterInput) types.CoverLetter {
	return run(ctx, a, types.TaskCoverLetter, a.prompts.CoverLetter(in), func() types.CoverLetter {
		return CoverLetterFallback(in)
	})
}

// Enhance rewrites the whole resume
func (a *Analyzer) Enhance(ctx context.Context, in types.EnhanceInput) types.EnhancedResume {
	return run(ctx, a, types.TaskEnhance, a.prompts.Enhance(in), EnhanceFallback)
}

// Battle critiques both resumes concurrently, then asks for a judgment once
// both are done. Score and skill differences are computed locally.
func (a *Analyzer) Battle(ctx context.Context, in types.BattleInput) types.BattleResult {
	var resumeA, resumeB types.CritiqueResult

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resumeA = a.Critique(ctx, types.CritiqueInput{ResumeText: in.ResumeA, TargetDomain: in.TargetDomain})
	}()
	go func() {
		defer wg.Done()
		resumeB = a.Critique(ctx, types.CritiqueInput{ResumeText: in.ResumeB, TargetDomain: in.TargetDomain})
	}()
	wg.Wait()

	judgment := run(ctx, a, types.TaskBattleJudge,
		a.prompts.BattleJudge(in.ResumeA, in.ResumeB, resumeA.Score, resumeB.Score),
		BattleJudgeFallback)

	diff := DiffSkills(resumeA.HardSkills, resumeB.HardSkills)
	return types.BattleResult{
		ResumeA: resumeA,
		ResumeB: resumeB,
		Battle:  judgment,
		Stats: types.BattleStats{
			ScoreDiff:     resumeB.Score - resumeA.Score,
			SkillsAdded:   diff.Added,
			SkillsRemoved: diff.Removed,
		},
	}
}

// Chat answers one message in plain text
func (a *Analyzer) Chat(ctx context.Context, in types.ChatInput) types.ChatReply {
	text := runText(ctx, a, types.TaskChat, a.prompts.Chat(in), func() string { return ChatApology })
	return types.ChatReply{Response: text}
}

// LearningPath plans at most five missing skills. No skills means no call.
func (a *Analyzer) LearningPath(ctx context.Context, in types.LearningPathInput) []types.SkillPlan {
	if len(prompts.CapSkills(in.MissingSkills)) == 0 {
		return LearningPathFallback()
	}
	return run(ctx, a, types.TaskLearningPath, a.prompts.LearningPath(in), LearningPathFallback)
}

// InterviewQuestions generates an interview script for the resume
func (a *Analyzer) InterviewQuestions(ctx context.Context, in types.InterviewInput) types.InterviewScript {
	return run(ctx, a, types.TaskInterviewQuestions, a.prompts.InterviewQuestions(in), InterviewFallback)
}

// Roast returns a short plain-text roast of the resume
func (a *Analyzer) Roast(ctx context.Context, in types.RoastInput) string {
	return runText(ctx, a, types.TaskRoast, a.prompts.Roast(in), func() string { return RoastFallback })
}

// SkillGraph maps current and missing skills for a target role
func (a *Analyzer) SkillGraph(ctx context.Context, in types.SkillGraphInput) types.SkillGraph {
	return run(ctx, a, types.TaskSkillGraph, a.prompts.SkillGraph(in), SkillGraphFallback)
}
