package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fallbackRecorder struct {
	mu      sync.Mutex
	reasons map[types.Task][]string
}

func (r *fallbackRecorder) FallbackUsed(task types.Task, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reasons == nil {
		r.reasons = make(map[types.Task][]string)
	}
	r.reasons[task] = append(r.reasons[task], reason)
}

func (r *fallbackRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.reasons {
		n += len(v)
	}
	return n
}

func newTestAnalyzer(inv ai.CompletionInvoker) (*Analyzer, *fallbackRecorder, *schema.Recorder) {
	fallbacks := &fallbackRecorder{}
	contract := &schema.Recorder{}
	a := NewAnalyzer(inv, nil, errors.Discard(),
		WithFallbackObserver(fallbacks),
		WithSchemaObserver(contract))
	return a, fallbacks, contract
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// structuredCase invokes one structured task and returns its result
type structuredCase struct {
	task     types.Task
	invoke   func(ctx context.Context, a *Analyzer) any
	fallback func() any
}

func structuredCases() []structuredCase {
	return []structuredCase{
		{types.TaskCritique, func(ctx context.Context, a *Analyzer) any {
			return a.Critique(ctx, types.CritiqueInput{ResumeText: "resume", TargetDomain: "design"})
		}, func() any { return CritiqueFallback() }},
		{types.TaskJDMatch, func(ctx context.Context, a *Analyzer) any {
			return a.MatchJD(ctx, types.JDMatchInput{ResumeText: "resume", JobDescription: "jd"})
		}, func() any { return JDMatchFallback() }},
		{types.TaskBulletRewrite, func(ctx context.Context, a *Analyzer) any {
			return a.RewriteBullet(ctx, types.BulletInput{Text: "did stuff"})
		}, func() any { return BulletRewriteFallback() }},
		{types.TaskCoverLetter, func(ctx context.Context, a *Analyzer) any {
			return a.CoverLetter(ctx, types.CoverLetterInput{ResumeText: "resume", JobTitle: "Engineer", CompanyName: "Acme", UserName: "Sam", Tone: "confident"})
		}, func() any {
			return CoverLetterFallback(types.CoverLetterInput{JobTitle: "Engineer", CompanyName: "Acme", UserName: "Sam", Tone: "confident"})
		}},
		{types.TaskEnhance, func(ctx context.Context, a *Analyzer) any {
			return a.Enhance(ctx, types.EnhanceInput{ResumeText: "resume"})
		}, func() any { return EnhanceFallback() }},
		{types.TaskInterviewQuestions, func(ctx context.Context, a *Analyzer) any {
			return a.InterviewQuestions(ctx, types.InterviewInput{ResumeText: "resume"})
		}, func() any { return InterviewFallback() }},
		{types.TaskSkillGraph, func(ctx context.Context, a *Analyzer) any {
			return a.SkillGraph(ctx, types.SkillGraphInput{ResumeText: "resume", TargetRole: "SRE"})
		}, func() any { return SkillGraphFallback() }},
		{types.TaskLearningPath, func(ctx context.Context, a *Analyzer) any {
			return a.LearningPath(ctx, types.LearningPathInput{MissingSkills: []string{"Go"}})
		}, func() any { return LearningPathFallback() }},
	}
}

// conformant returns a schema-conformant, non-fallback reply for task
func conformant(task types.Task) any {
	switch task {
	case types.TaskCritique:
		r := CritiqueFallback()
		r.Score, r.ATSCompatibility = 91, 88
		r.Strengths = []string{"Quantified impact"}
		r.TopProjects = []types.TopProject{{Name: "Billing", Score: 9, Reason: "Scale"}}
		r.Summary = "Strong resume."
		return r
	case types.TaskJDMatch:
		r := JDMatchFallback()
		r.MatchPercentage = 42
		return r
	case types.TaskBulletRewrite:
		return types.BulletRewrite{Improved: "Cut latency 30% by caching", Reason: "Metric added"}
	case types.TaskCoverLetter:
		return types.CoverLetter{Content: "Dear team,\nHello.", Tone: "confident", Personalization: []string{"Acme"}}
	case types.TaskEnhance:
		return types.EnhancedResume{Content: "Better resume", Improvements: []string{"Verbs"}}
	case types.TaskInterviewQuestions:
		return types.InterviewScript{Questions: []types.InterviewQuestion{
			{Question: "How did you shard it?", Type: "System Design", Difficulty: "Hard", Context: "Billing"},
		}}
	case types.TaskSkillGraph:
		return types.SkillGraph{
			Nodes: []types.SkillNode{{ID: "Go", Group: "current", Val: 8, Desc: "Listed"}},
			Links: []types.SkillLink{{Source: "Go", Target: "Kubernetes"}},
		}
	case types.TaskLearningPath:
		return []types.SkillPlan{{
			Skill: "Go", Priority: "High", WhyNeeded: "Core", TimeToLearn: "2 weeks",
			Resources:   []types.LearningResource{{Title: "Tour of Go", Type: "Documentation"}},
			StudyTopics: []string{"goroutines"},
		}}
	}
	return nil
}

func TestConformantReplyPassesThrough(t *testing.T) {
	for _, tc := range structuredCases() {
		t.Run(string(tc.task), func(t *testing.T) {
			want := conformant(tc.task)
			inv := ai.NewScriptedInvoker(ai.Reply(mustJSON(t, want)))
			a, fallbacks, contract := newTestAnalyzer(inv)

			got := tc.invoke(context.Background(), a)

			assert.Equal(t, want, got)
			assert.Equal(t, 0, fallbacks.count())
			for _, ev := range contract.Events() {
				assert.Equal(t, schema.ReasonBelowAdvisory, ev.Reason, "unexpected repair of %s", ev.Field)
			}
		})
	}
}

func TestEmptyReplyYieldsFallback(t *testing.T) {
	for _, tc := range structuredCases() {
		t.Run(string(tc.task), func(t *testing.T) {
			inv := ai.NewScriptedInvoker(ai.Reply(""))
			a, fallbacks, _ := newTestAnalyzer(inv)

			got := tc.invoke(context.Background(), a)

			assert.Equal(t, tc.fallback(), got)
			assert.Equal(t, []string{string(errors.ErrorTypeMalformedResponse)}, fallbacks.reasons[tc.task])
		})
	}
}

func TestFencedReplyMatchesUnwrapped(t *testing.T) {
	for _, tc := range structuredCases() {
		t.Run(string(tc.task), func(t *testing.T) {
			body := mustJSON(t, conformant(tc.task))
			inv := ai.NewScriptedInvoker(
				ai.Reply(body),
				ai.Reply("```json\n"+body+"\n```"),
			)
			a, fallbacks, _ := newTestAnalyzer(inv)

			plain := tc.invoke(context.Background(), a)
			fenced := tc.invoke(context.Background(), a)

			assert.Equal(t, plain, fenced)
			assert.Equal(t, 0, fallbacks.count())
		})
	}
}

func TestProviderErrorYieldsFallback(t *testing.T) {
	for _, tc := range structuredCases() {
		t.Run(string(tc.task), func(t *testing.T) {
			inv := ai.NewScriptedInvoker(ai.Fail(errors.NewProviderError(errors.ErrCodeProviderAuth, "bad key", nil)))
			a, fallbacks, _ := newTestAnalyzer(inv)

			assert.Equal(t, tc.fallback(), tc.invoke(context.Background(), a))
			assert.Equal(t, []string{string(errors.ErrorTypeProvider)}, fallbacks.reasons[tc.task])
		})
	}
}

func TestCritiquePartialReply(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Reply(`{"score": 85, "strengths": ["Clear metrics"]}`))
	a, fallbacks, contract := newTestAnalyzer(inv)

	got := a.Critique(context.Background(), types.CritiqueInput{ResumeText: "resume"})

	assert.Equal(t, 85, got.Score)
	assert.Equal(t, []string{"Clear metrics"}, got.Strengths)
	assert.Equal(t, 0, got.ATSCompatibility)
	assert.Equal(t, 0, got.GrammarScore)
	assert.Equal(t, []string{}, got.Weaknesses)
	assert.Equal(t, []string{}, got.ScamFlags)
	assert.Equal(t, []types.BulletImprovement{}, got.BulletImprovements)
	assert.Equal(t, []types.TopProject{}, got.TopProjects)
	assert.Equal(t, schema.NotProvided, got.Summary)
	assert.Equal(t, 0, fallbacks.count())
	assert.NotEmpty(t, contract.Events())
}

func TestCritiqueClampsScores(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Reply(`{"score": 150, "ats_compatibility": -20, "grammar_score": "77%",
		"top_projects": [{"name": "p", "score": 42, "reason": "r"}]}`))
	a, _, _ := newTestAnalyzer(inv)

	got := a.Critique(context.Background(), types.CritiqueInput{ResumeText: "resume"})

	assert.Equal(t, 100, got.Score)
	assert.Equal(t, 0, got.ATSCompatibility)
	assert.Equal(t, 77, got.GrammarScore)
	require.Len(t, got.TopProjects, 1)
	assert.Equal(t, 10, got.TopProjects[0].Score)
}

func TestSkillGraphNodeWithoutWeight(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Reply(`{"nodes": [{"id": "Go", "group": "current"}, "stray"],
		"links": [{"source": "Go", "target": "Docker"}]}`))
	a, fallbacks, _ := newTestAnalyzer(inv)

	got := a.SkillGraph(context.Background(), types.SkillGraphInput{ResumeText: "resume"})

	require.Len(t, got.Nodes, 1, "non-object nodes are dropped")
	assert.Equal(t, 1, got.Nodes[0].Val, "a missing weight takes the bottom of its range")
	assert.Len(t, got.Links, 1)
	assert.Equal(t, 0, fallbacks.count())
}

func TestFallbackLogLevelFollowsErrorClass(t *testing.T) {
	tests := []struct {
		name    string
		step    ai.Step
		level   string
		message string
	}{
		{"malformed reply warns", ai.Reply("no json here"), "WARN", "Model reply was not usable JSON, using fallback"},
		{"provider failure errors", ai.Fail(errors.NewProviderError(errors.ErrCodeProviderEmpty, "down", nil)),
			"ERROR", "Provider call failed, using fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			a := NewAnalyzer(ai.NewScriptedInvoker(tt.step), nil, errors.NewLoggerTo(&buf, slog.LevelWarn))

			got := a.Critique(context.Background(), types.CritiqueInput{ResumeText: "resume"})
			assert.Equal(t, CritiqueFallback(), got)

			var line map[string]any
			require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, tt.message, line["msg"])
		})
	}
}

func TestCritiqueRepairsLiteralNewlines(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Reply("Here you go:\n{\"score\": 70, \"summary\": \"line one\nline two\"}"))
	a, fallbacks, _ := newTestAnalyzer(inv)

	got := a.Critique(context.Background(), types.CritiqueInput{ResumeText: "resume"})

	assert.Equal(t, 70, got.Score)
	assert.Equal(t, "line one\nline two", got.Summary)
	assert.Equal(t, 0, fallbacks.count())
}

func TestBattle(t *testing.T) {
	critiqueA := CritiqueFallback()
	critiqueA.Score = 60
	critiqueA.HardSkills = []string{"Python", "SQL"}
	critiqueB := CritiqueFallback()
	critiqueB.Score = 82
	critiqueB.HardSkills = []string{"Python", "Go"}

	judge := types.BattleJudgment{
		Winner: "Candidate B", WinnerID: "resume2", Verdict: "B quantifies impact.",
		BetterPoints: []string{"Metrics"}, WorsePoints: []string{"Vague"},
	}

	replyA, replyB := mustJSON(t, critiqueA), mustJSON(t, critiqueB)
	inv := ai.NewScriptedInvoker().QueueFor(types.TaskBattleJudge, ai.Reply(mustJSON(t, judge)))
	inv.Respond = func(req prompts.Request, params ai.GenerationParams) (string, error) {
		if strings.Contains(req.User, "ALPHA-RESUME") {
			return replyA, nil
		}
		return replyB, nil
	}
	a, _, _ := newTestAnalyzer(inv)

	got := a.Battle(context.Background(), types.BattleInput{ResumeA: "ALPHA-RESUME", ResumeB: "BETA-RESUME"})

	assert.Equal(t, 60, got.ResumeA.Score)
	assert.Equal(t, 82, got.ResumeB.Score)
	assert.Equal(t, judge, got.Battle)
	assert.Equal(t, 22, got.Stats.ScoreDiff)
	assert.Equal(t, []string{"Go"}, got.Stats.SkillsAdded)
	assert.Equal(t, []string{"SQL"}, got.Stats.SkillsRemoved)

	calls := inv.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, types.TaskBattleJudge, calls[2].Params.Task, "judge must run after both critiques")
	assert.Contains(t, calls[2].Request.User, "Score: 60")
	assert.Contains(t, calls[2].Request.User, "Score: 82")
}

func TestBattleIgnoresModelScoreDiff(t *testing.T) {
	inv := ai.NewScriptedInvoker()
	inv.QueueFor(types.TaskBattleJudge, ai.Reply(`{"winner": "Tie", "score_diff": 99}`))
	inv.Respond = func(req prompts.Request, params ai.GenerationParams) (string, error) {
		return `{"score": 40, "hard_skills": ["Go"]}`, nil
	}
	a, _, _ := newTestAnalyzer(inv)

	got := a.Battle(context.Background(), types.BattleInput{ResumeA: "a", ResumeB: "b"})

	assert.Equal(t, 0, got.Stats.ScoreDiff)
	assert.Equal(t, []string{}, got.Stats.SkillsAdded)
	assert.Equal(t, []string{}, got.Stats.SkillsRemoved)
	assert.Equal(t, "Tie", got.Battle.Winner)
}

func TestLearningPathEmptyInputMakesNoCall(t *testing.T) {
	inv := ai.NewScriptedInvoker()
	a, fallbacks, _ := newTestAnalyzer(inv)

	for _, skills := range [][]string{nil, {}, {"  ", ""}} {
		got := a.LearningPath(context.Background(), types.LearningPathInput{MissingSkills: skills})
		assert.Equal(t, []types.SkillPlan{}, got)
	}
	assert.Equal(t, 0, inv.CallCount())
	assert.Equal(t, 0, fallbacks.count())
}

func TestLearningPathCapsSkills(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Reply(`[{"skill": "A"}, "junk"]`))
	a, _, _ := newTestAnalyzer(inv)

	got := a.LearningPath(context.Background(), types.LearningPathInput{
		MissingSkills: []string{"A", "B", "C", "D", "E", "F", "G"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Skill)
	assert.Equal(t, schema.NotProvided, got[0].Priority)
	assert.Equal(t, []types.LearningResource{}, got[0].Resources)

	user := inv.Calls()[0].Request.User
	assert.Contains(t, user, "A, B, C, D, E")
	assert.NotContains(t, user, ", F")
}

func TestRoast(t *testing.T) {
	t.Run("network error", func(t *testing.T) {
		netErr := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "api"}}
		inv := ai.NewScriptedInvoker(ai.Fail(netErr))
		a, fallbacks, _ := newTestAnalyzer(inv)

		assert.Equal(t, RoastFallback, a.Roast(context.Background(), types.RoastInput{ResumeText: "x"}))
		assert.Equal(t, 1, fallbacks.count())
	})

	t.Run("plain text bypasses normalizer", func(t *testing.T) {
		reply := "```json\n{\"not\": \"parsed\"}\n```"
		inv := ai.NewScriptedInvoker(ai.Reply("  " + reply + "\n"))
		a, _, contract := newTestAnalyzer(inv)

		assert.Equal(t, reply, a.Roast(context.Background(), types.RoastInput{ResumeText: "x"}))
		assert.Empty(t, contract.Events())
	})

	t.Run("blank reply", func(t *testing.T) {
		inv := ai.NewScriptedInvoker(ai.Reply("   "))
		a, _, _ := newTestAnalyzer(inv)
		assert.Equal(t, RoastFallback, a.Roast(context.Background(), types.RoastInput{ResumeText: "x"}))
	})
}

func TestChat(t *testing.T) {
	inv := ai.NewScriptedInvoker(
		ai.Reply("Lead with metrics."),
		ai.Fail(errors.NewProviderError(errors.ErrCodeProviderServer, "503", nil)),
	)
	a, _, _ := newTestAnalyzer(inv)

	in := types.ChatInput{Message: "How do I improve?", ResumeContext: "resume"}
	assert.Equal(t, "Lead with metrics.", a.Chat(context.Background(), in).Response)
	assert.Equal(t, ChatApology, a.Chat(context.Background(), in).Response)
	assert.False(t, inv.Calls()[0].Params.JSONMode)
}

func TestRewriteBulletsKeepsOrder(t *testing.T) {
	inv := ai.NewScriptedInvoker()
	inv.Respond = func(req prompts.Request, params ai.GenerationParams) (string, error) {
		switch {
		case strings.Contains(req.User, "bullet-one"):
			return `{"improved": "one improved", "reason": "r1"}`, nil
		case strings.Contains(req.User, "bullet-three"):
			return `{"improved": "three improved", "reason": "r3"}`, nil
		default:
			return "not json at all", nil
		}
	}
	a, fallbacks, _ := newTestAnalyzer(inv)

	got := a.RewriteBullets(context.Background(), []string{"bullet-one", "bullet-two", "bullet-three"})

	require.Len(t, got, 3)
	assert.Equal(t, "one improved", got[0].Improved)
	assert.Equal(t, BulletRewriteFallback(), got[1])
	assert.Equal(t, "three improved", got[2].Improved)
	assert.Equal(t, 1, fallbacks.count())
	assert.Equal(t, 3, inv.CallsFor(types.TaskBulletRewrite))
}

func TestCoverLetterFallbackUsesRequest(t *testing.T) {
	inv := ai.NewScriptedInvoker(ai.Fail(errors.NewProviderError(errors.ErrCodeProviderEmpty, "empty", nil)))
	a, _, _ := newTestAnalyzer(inv)

	got := a.CoverLetter(context.Background(), types.CoverLetterInput{JobTitle: "Engineer", CompanyName: "Acme"})

	assert.Contains(t, got.Content, "the Engineer position at Acme")
	assert.True(t, strings.HasSuffix(got.Content, "Sincerely,\nApplicant"))
	assert.Equal(t, "professional", got.Tone)
	assert.Equal(t, []string{"Relevant experience", "Company alignment"}, got.Personalization)
}

func TestCanceledContextYieldsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv := ai.NewScriptedInvoker(ai.Reply(`{"improved": "x", "reason": "y"}`))
	a, fallbacks, _ := newTestAnalyzer(inv)

	assert.Equal(t, BulletRewriteFallback(), a.RewriteBullet(ctx, types.BulletInput{Text: "b"}))
	assert.Equal(t, []string{string(errors.ErrorTypeProvider)}, fallbacks.reasons[types.TaskBulletRewrite])
}

func TestFallbacksAreFresh(t *testing.T) {
	first := CritiqueFallback()
	first.Strengths[0] = "mutated"
	first.BulletImprovements[0].Reason = "mutated"

	second := CritiqueFallback()
	assert.Equal(t, "Unable to analyze due to AI service error", second.Strengths[0])
	assert.Equal(t, "AI Service Timeout", second.BulletImprovements[0].Reason)
}
