// Package tasks binds prompts, the completion invoker, the normalizer and
// the validator into one total function per generation task.
package tasks

import (
	"resumalyzer/internal/ai"
	"resumalyzer/internal/config"
	"resumalyzer/internal/normalize"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"
)

// Spec is the immutable definition of one task
type Spec struct {
	ID     types.Task
	Inputs []string

	// Shape is the top-level JSON shape. Ignored when PlainText is set.
	Shape     normalize.Shape
	PlainText bool

	Schema schema.Schema
	Params ai.GenerationParams

	// Fallback builds the task's fallback for empty inputs. Entry points with
	// input-dependent fallbacks build their own from the same functions.
	Fallback func() any
}

// Catalog holds one Spec per task. It is read-only after NewCatalog.
type Catalog struct {
	specs map[types.Task]Spec
}

type defaults struct {
	temperature float32
	maxTokens   int32
	topP        float32
	jsonMode    bool
}

var builtinDefaults = map[types.Task]defaults{
	types.TaskCritique:           {0.5, 4096, 0.95, true},
	types.TaskJDMatch:            {0.5, 2048, 0, true},
	types.TaskBulletRewrite:      {0.6, 1024, 0, true},
	types.TaskCoverLetter:        {0.7, 2048, 0, true},
	types.TaskEnhance:            {0.6, 4096, 0.95, true},
	types.TaskBattleJudge:        {0.5, 2048, 0, true},
	types.TaskChat:               {0.6, 1024, 0, false},
	types.TaskLearningPath:       {0.3, 2048, 0, true},
	types.TaskInterviewQuestions: {0.6, 4096, 0.95, true},
	types.TaskRoast:              {0.8, 1024, 0, false},
	types.TaskSkillGraph:         {0.5, 2048, 0, true},
}

func percent(name string) schema.Field { return schema.IntField(name, 0, 100) }

var critiqueSchema = schema.Schema{
	Task: string(types.TaskCritique),
	Fields: []schema.Field{
		percent("score"),
		percent("ats_compatibility"),
		percent("grammar_score"),
		percent("readability_score"),
		percent("experience_match"),
		schema.ListField("strengths"),
		schema.ListField("weaknesses"),
		schema.ListField("improvements"),
		schema.ListField("hard_skills"),
		schema.ListField("soft_skills"),
		schema.ListField("keywords"),
		schema.ListField("missing_keywords"),
		schema.ListField("sections_detected"),
		schema.ListField("missing_sections"),
		schema.ListField("formatting_issues"),
		schema.ListField("grammar_issues"),
		schema.ListField("scam_flags"),
		schema.ObjectListField("bullet_improvements",
			schema.TextField("original"),
			schema.TextField("improved"),
			schema.TextField("reason"),
		).WithAdvisoryMin(prompts.MinBulletRewrites),
		schema.ObjectListField("top_projects",
			schema.TextField("name"),
			schema.IntField("score", 0, 10),
			schema.TextField("reason"),
		),
		schema.ObjectListField("interview_questions",
			schema.TextField("question"),
			schema.TextField("importance"),
			schema.TextField("reason"),
		).WithAdvisoryMin(prompts.MinInterviewItems),
		schema.TextField("summary"),
	},
}

var jdMatchSchema = schema.Schema{
	Task: string(types.TaskJDMatch),
	Fields: []schema.Field{
		percent("match_percentage"),
		percent("role_fit_score"),
		schema.ListField("matched_keywords"),
		schema.ListField("missing_keywords"),
		schema.ListField("skill_gaps"),
		schema.ListField("recommendations"),
	},
}

var bulletRewriteSchema = schema.Schema{
	Task: string(types.TaskBulletRewrite),
	Fields: []schema.Field{
		schema.TextField("improved"),
		schema.TextField("reason"),
	},
}

var coverLetterSchema = schema.Schema{
	Task: string(types.TaskCoverLetter),
	Fields: []schema.Field{
		schema.TextField("content"),
		schema.TextField("tone"),
		schema.ListField("personalization"),
	},
}

var enhanceSchema = schema.Schema{
	Task: string(types.TaskEnhance),
	Fields: []schema.Field{
		schema.TextField("content"),
		schema.ListField("improvements"),
	},
}

var battleJudgeSchema = schema.Schema{
	Task: string(types.TaskBattleJudge),
	Fields: []schema.Field{
		schema.TextField("winner"),
		schema.TextField("winner_id"),
		schema.TextField("verdict"),
		schema.ListField("better_points"),
		schema.ListField("worse_points"),
	},
}

// learningPathSchema applies to each element of the array
var learningPathSchema = schema.Schema{
	Task: string(types.TaskLearningPath),
	Fields: []schema.Field{
		schema.TextField("skill"),
		schema.TextField("priority"),
		schema.TextField("why_needed"),
		schema.ObjectListField("resources",
			schema.TextField("title"),
			schema.TextField("type"),
		),
		schema.ListField("study_topics"),
		schema.TextField("time_to_learn"),
	},
}

var interviewSchema = schema.Schema{
	Task: string(types.TaskInterviewQuestions),
	Fields: []schema.Field{
		schema.ObjectListField("questions",
			schema.TextField("question"),
			schema.TextField("type"),
			schema.TextField("difficulty"),
			schema.TextField("context"),
		),
	},
}

var skillGraphSchema = schema.Schema{
	Task: string(types.TaskSkillGraph),
	Fields: []schema.Field{
		schema.ObjectListField("nodes",
			schema.TextField("id"),
			schema.TextField("group"),
			schema.IntField("val", 1, 10),
			schema.TextField("desc"),
		),
		schema.ObjectListField("links",
			schema.TextField("source"),
			schema.TextField("target"),
		),
	},
}

func builtinSpecs() []Spec {
	return []Spec{
		{
			ID:       types.TaskCritique,
			Inputs:   []string{"resumeText", "targetDomain"},
			Schema:   critiqueSchema,
			Fallback: func() any { return CritiqueFallback() },
		},
		{
			ID:       types.TaskJDMatch,
			Inputs:   []string{"resumeText", "jobDescription"},
			Schema:   jdMatchSchema,
			Fallback: func() any { return JDMatchFallback() },
		},
		{
			ID:       types.TaskBulletRewrite,
			Inputs:   []string{"bulletText"},
			Schema:   bulletRewriteSchema,
			Fallback: func() any { return BulletRewriteFallback() },
		},
		{
			ID:       types.TaskCoverLetter,
			Inputs:   []string{"resumeText", "jobTitle", "companyName"},
			Schema:   coverLetterSchema,
			Fallback: func() any { return CoverLetterFallback(types.CoverLetterInput{}) },
		},
		{
			ID:       types.TaskEnhance,
			Inputs:   []string{"resumeText"},
			Schema:   enhanceSchema,
			Fallback: func() any { return EnhanceFallback() },
		},
		{
			ID:       types.TaskBattleJudge,
			Inputs:   []string{"resumeA", "resumeB"},
			Schema:   battleJudgeSchema,
			Fallback: func() any { return BattleJudgeFallback() },
		},
		{
			ID:        types.TaskChat,
			Inputs:    []string{"message"},
			PlainText: true,
			Fallback:  func() any { return ChatFallback() },
		},
		{
			ID:       types.TaskLearningPath,
			Inputs:   []string{"missingSkills"},
			Shape:    normalize.ShapeArray,
			Schema:   learningPathSchema,
			Fallback: func() any { return LearningPathFallback() },
		},
		{
			ID:       types.TaskInterviewQuestions,
			Inputs:   []string{"resumeText"},
			Schema:   interviewSchema,
			Fallback: func() any { return InterviewFallback() },
		},
		{
			ID:        types.TaskRoast,
			Inputs:    []string{"resumeText"},
			PlainText: true,
			Fallback:  func() any { return RoastFallback },
		},
		{
			ID:       types.TaskSkillGraph,
			Inputs:   []string{"resumeText"},
			Schema:   skillGraphSchema,
			Fallback: func() any { return SkillGraphFallback() },
		},
	}
}

// NewCatalog builds every task spec and resolves its generation parameters
// against cfg. A nil cfg keeps the built-in defaults.
func NewCatalog(cfg *config.Config) *Catalog {
	c := &Catalog{specs: make(map[types.Task]Spec, len(types.AllTasks))}
	for _, spec := range builtinSpecs() {
		spec.Params = resolveParams(spec.ID, cfg)
		c.specs[spec.ID] = spec
	}
	return c
}

func resolveParams(task types.Task, cfg *config.Config) ai.GenerationParams {
	d := builtinDefaults[task]
	params := ai.GenerationParams{
		Task:        task,
		Temperature: d.temperature,
		MaxTokens:   d.maxTokens,
		TopP:        d.topP,
		JSONMode:    d.jsonMode,
	}
	if cfg == nil {
		return params
	}

	settings := cfg.TaskConfig(task)
	params.Model = settings.Model
	params.Timeout = settings.Timeout
	if settings.Temperature != nil {
		params.Temperature = *settings.Temperature
	}
	if settings.MaxTokens != nil {
		params.MaxTokens = *settings.MaxTokens
	}
	if settings.TopP != nil {
		params.TopP = *settings.TopP
	}
	if settings.JSONMode != nil {
		params.JSONMode = *settings.JSONMode
	}
	return params
}

// Spec returns the definition of task
func (c *Catalog) Spec(task types.Task) (Spec, bool) {
	spec, ok := c.specs[task]
	return spec, ok
}

// Specs returns every spec in catalog order
func (c *Catalog) Specs() []Spec {
	out := make([]Spec, 0, len(c.specs))
	for _, task := range types.AllTasks {
		if spec, ok := c.specs[task]; ok {
			out = append(out, spec)
		}
	}
	return out
}
