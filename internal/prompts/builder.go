// Package prompts builds the instruction text sent to the model for each task.
//
// Building is pure: inputs are truncated to fixed budgets and rendered into
// templates. Templates can be overridden at runtime; a broken override never
// breaks a call because rendering falls back to the built-in template.
package prompts

import (
	"fmt"
	"strings"
	"sync/atomic"
	"text/template"

	"resumalyzer/internal/types"
)

// Hard cutoffs in runes applied to free-text inputs.
const (
	ChatContextBudget = 1000
	BattleTextBudget  = 1500
	SkillGraphBudget  = 1500
	RoastBudget       = 5000
	JDMatchBudget     = 8000
	InterviewBudget   = 10000
	EnhanceBudget     = 15000
	DefaultBudget     = 15000
)

// Prompt-level counts. The model is asked for these; nothing enforces them.
const (
	LearningPathSkillCap = 5
	MinBulletRewrites    = 4
	MinInterviewItems    = 9
	MaxInterviewItems    = 20
	RoastMaxWords        = 200
	MinGraphNodes        = 15
	MaxGraphNodes        = 20
)

// Request is the realized system and user instruction for one call.
type Request struct {
	System string
	User   string
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

type templateSet map[types.Task]compiled

var builtins = mustCompile(Defaults)

func mustCompile(s Set) templateSet {
	ts, err := compile(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func compile(s Set) (templateSet, error) {
	ts := make(templateSet, len(s))
	for task, tmpl := range s {
		var c compiled
		var err error
		if tmpl.System != "" {
			if c.system, err = template.New(string(task) + ".system").Option("missingkey=zero").Parse(tmpl.System); err != nil {
				return nil, fmt.Errorf("parse %s system template: %w", task, err)
			}
		}
		if tmpl.User != "" {
			if c.user, err = template.New(string(task) + ".user").Option("missingkey=zero").Parse(tmpl.User); err != nil {
				return nil, fmt.Errorf("parse %s user template: %w", task, err)
			}
		}
		ts[task] = c
	}
	return ts, nil
}

// Validate reports whether every template in s parses.
func Validate(s Set) error {
	_, err := compile(s)
	return err
}

// Builder renders task prompts. The zero value is not usable; call NewBuilder.
type Builder struct {
	overrides atomic.Pointer[templateSet]
}

// NewBuilder returns a builder that uses the built-in templates.
func NewBuilder() *Builder {
	b := &Builder{}
	empty := templateSet{}
	b.overrides.Store(&empty)
	return b
}

// SetOverrides replaces the override templates. On a parse error the
// previous overrides stay in effect.
func (b *Builder) SetOverrides(s Set) error {
	ts, err := compile(s)
	if err != nil {
		return err
	}
	b.overrides.Store(&ts)
	return nil
}

// Overridden reports which parts of a task's template are overridden.
func (b *Builder) Overridden(task types.Task) (system, user bool) {
	c := (*b.overrides.Load())[task]
	return c.system != nil, c.user != nil
}

// Build renders the templates for task with data.
func (b *Builder) Build(task types.Task, data any) Request {
	override := (*b.overrides.Load())[task]
	builtin := builtins[task]
	return Request{
		System: strings.TrimSpace(render(override.system, builtin.system, data)),
		User:   strings.TrimSpace(render(override.user, builtin.user, data)),
	}
}

func render(override, builtin *template.Template, data any) string {
	if override != nil {
		var sb strings.Builder
		if err := override.Execute(&sb, data); err == nil {
			return sb.String()
		}
	}
	if builtin == nil {
		return ""
	}
	var sb strings.Builder
	if err := builtin.Execute(&sb, data); err != nil {
		return ""
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func (b *Builder) Critique(in types.CritiqueInput) Request {
	domain := orDefault(in.TargetDomain, DefaultDomain)
	return b.Build(types.TaskCritique, struct {
		Domain, DomainGuidance, ResumeText     string
		MinBullets, MinQuestions, MaxQuestions int
	}{
		Domain:         DisplayDomain(domain),
		DomainGuidance: DomainGuidance(domain),
		ResumeText:     Truncate(in.ResumeText, DefaultBudget),
		MinBullets:     MinBulletRewrites,
		MinQuestions:   MinInterviewItems,
		MaxQuestions:   MaxInterviewItems,
	})
}

func (b *Builder) JDMatch(in types.JDMatchInput) Request {
	return b.Build(types.TaskJDMatch, struct {
		ResumeText, JobDescription, Domain string
	}{
		ResumeText:     Truncate(in.ResumeText, JDMatchBudget),
		JobDescription: Truncate(in.JobDescription, JDMatchBudget),
		Domain:         DisplayDomain(orDefault(in.TargetDomain, DefaultDomain)),
	})
}

func (b *Builder) BulletRewrite(in types.BulletInput) Request {
	return b.Build(types.TaskBulletRewrite, struct{ Text string }{
		Text: Truncate(in.Text, DefaultBudget),
	})
}

func (b *Builder) CoverLetter(in types.CoverLetterInput) Request {
	return b.Build(types.TaskCoverLetter, struct {
		ResumeText, UserName, JobTitle, CompanyName, Tone, JobDescription string
	}{
		ResumeText:     Truncate(in.ResumeText, DefaultBudget),
		UserName:       orDefault(in.UserName, "Applicant"),
		JobTitle:       orDefault(in.JobTitle, "General position"),
		CompanyName:    orDefault(in.CompanyName, "the company"),
		Tone:           orDefault(in.Tone, "professional"),
		JobDescription: Truncate(strings.TrimSpace(in.JobDescription), JDMatchBudget),
	})
}

func (b *Builder) Enhance(in types.EnhanceInput) Request {
	return b.Build(types.TaskEnhance, struct {
		ResumeText, Tone, TargetRole string
	}{
		ResumeText: Truncate(in.ResumeText, EnhanceBudget),
		Tone:       orDefault(in.Tone, "professional"),
		TargetRole: DisplayDomain(orDefault(in.TargetRole, "general professional")),
	})
}

// BattleJudge builds the judge prompt from two finished critiques.
func (b *Builder) BattleJudge(resumeA, resumeB string, scoreA, scoreB int) Request {
	return b.Build(types.TaskBattleJudge, struct {
		ResumeA, ResumeB string
		ScoreA, ScoreB   int
	}{
		ResumeA: Truncate(resumeA, BattleTextBudget),
		ResumeB: Truncate(resumeB, BattleTextBudget),
		ScoreA:  scoreA,
		ScoreB:  scoreB,
	})
}

func (b *Builder) Chat(in types.ChatInput) Request {
	domain := ""
	if strings.TrimSpace(in.TargetDomain) != "" {
		domain = DisplayDomain(in.TargetDomain)
	}
	return b.Build(types.TaskChat, struct {
		ResumeContext, Domain, Message string
		History                        []types.ChatMessage
	}{
		ResumeContext: Truncate(strings.TrimSpace(in.ResumeContext), ChatContextBudget),
		Domain:        domain,
		Message:       in.Message,
		History:       in.History,
	})
}

// LearningPath builds the prompt for at most LearningPathSkillCap skills.
func (b *Builder) LearningPath(in types.LearningPathInput) Request {
	return b.Build(types.TaskLearningPath, struct {
		Domain, Skills string
	}{
		Domain: DisplayDomain(orDefault(in.TargetDomain, DefaultDomain)),
		Skills: strings.Join(CapSkills(in.MissingSkills), ", "),
	})
}

// CapSkills keeps the first LearningPathSkillCap non-blank skills.
func CapSkills(skills []string) []string {
	out := make([]string, 0, LearningPathSkillCap)
	for _, s := range skills {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == LearningPathSkillCap {
			break
		}
	}
	return out
}

func (b *Builder) InterviewQuestions(in types.InterviewInput) Request {
	return b.Build(types.TaskInterviewQuestions, struct {
		ResumeText, Domain string
	}{
		ResumeText: Truncate(in.ResumeText, InterviewBudget),
		Domain:     DisplayDomain(orDefault(in.TargetDomain, DefaultDomain)),
	})
}

func (b *Builder) Roast(in types.RoastInput) Request {
	return b.Build(types.TaskRoast, struct {
		ResumeText string
		MaxWords   int
	}{
		ResumeText: Truncate(in.ResumeText, RoastBudget),
		MaxWords:   RoastMaxWords,
	})
}

func (b *Builder) SkillGraph(in types.SkillGraphInput) Request {
	return b.Build(types.TaskSkillGraph, struct {
		ResumeText, TargetRole string
		MinNodes, MaxNodes     int
	}{
		ResumeText: Truncate(in.ResumeText, SkillGraphBudget),
		TargetRole: orDefault(in.TargetRole, DefaultTargetRole),
		MinNodes:   MinGraphNodes,
		MaxNodes:   MaxGraphNodes,
	})
}
