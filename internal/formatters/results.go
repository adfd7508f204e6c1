package formatters

import (
	"fmt"
	"strings"
	"time"

	"resumalyzer/internal/types"
)

var renderers = map[string]func(*document, any) error{
	"CritiqueResult":  as(renderCritique),
	"JDMatchResult":   as(renderJDMatch),
	"BulletRewrites":  as(renderBulletRewrites),
	"CoverLetter":     as(renderCoverLetter),
	"EnhancedResume":  as(renderEnhanced),
	"BattleResult":    as(renderBattle),
	"ChatReply":       as(renderChat),
	"LearningPath":    as(renderLearningPath),
	"InterviewScript": as(renderInterview),
	"Text":            as(renderText),
	"SkillGraph":      as(renderSkillGraph),
	"History":         as(renderHistory),
	"AnalysisRecord":  as(renderRecord),
}

// as adapts a typed render function to the registry signature
func as[T any](render func(*document, T)) func(*document, any) error {
	return func(d *document, data any) error {
		v, ok := data.(T)
		if !ok {
			var zero T
			return fmt.Errorf("expected %T, got %T", zero, data)
		}
		render(d, v)
		return nil
	}
}

func renderCritique(d *document, r types.CritiqueResult) {
	d.title("Resume Critique")
	d.field("Overall Score", fmt.Sprintf("%d/100", r.Score))
	d.field("ATS Compatibility", fmt.Sprintf("%d/100", r.ATSCompatibility))
	d.field("Grammar", fmt.Sprintf("%d/100", r.GrammarScore))
	d.field("Readability", fmt.Sprintf("%d/100", r.ReadabilityScore))
	d.field("Experience Match", fmt.Sprintf("%d/100", r.ExperienceMatch))
	d.end()

	if r.Summary != "" {
		d.section("Summary")
		d.paragraph(r.Summary)
	}
	d.list("Strengths", r.Strengths)
	d.list("Weaknesses", r.Weaknesses)
	d.list("Improvements", r.Improvements)
	d.list("Hard Skills", r.HardSkills)
	d.list("Soft Skills", r.SoftSkills)
	d.list("Missing Keywords", r.MissingKeywords)
	d.list("Missing Sections", r.MissingSections)
	d.list("Formatting Issues", r.FormattingIssues)
	d.list("Grammar Issues", r.GrammarIssues)
	d.list("Red Flags", r.ScamFlags)

	if len(r.BulletImprovements) > 0 {
		d.section("Bullet Improvements")
		for i, b := range r.BulletImprovements {
			d.numbered(i+1, b.Original)
			d.detail("Improved", b.Improved)
			d.detail("Reason", b.Reason)
		}
		d.end()
	}
	if len(r.TopProjects) > 0 {
		d.section("Top Projects")
		for i, p := range r.TopProjects {
			d.numbered(i+1, fmt.Sprintf("%s (%d/10)", p.Name, p.Score))
			d.detail("Reason", p.Reason)
		}
		d.end()
	}
	if len(r.InterviewQuestions) > 0 {
		d.section("Interview Questions")
		for i, q := range r.InterviewQuestions {
			d.numbered(i+1, q.Question)
			d.detail("Importance", q.Importance)
			d.detail("Reason", q.Reason)
		}
		d.end()
	}
}

func renderJDMatch(d *document, r types.JDMatchResult) {
	d.title("Job Description Match")
	d.field("Match", fmt.Sprintf("%d%%", r.MatchPercentage))
	d.field("Role Fit", fmt.Sprintf("%d/100", r.RoleFitScore))
	d.end()
	d.list("Matched Keywords", r.MatchedKeywords)
	d.list("Missing Keywords", r.MissingKeywords)
	d.list("Skill Gaps", r.SkillGaps)
	d.list("Recommendations", r.Recommendations)
}

func renderBulletRewrites(d *document, rs []types.BulletRewrite) {
	d.title("Bullet Rewrites")
	for i, r := range rs {
		d.numbered(i+1, r.Improved)
		d.detail("Reason", r.Reason)
	}
	d.end()
}

func renderCoverLetter(d *document, r types.CoverLetter) {
	d.title("Cover Letter")
	d.field("Tone", r.Tone)
	d.end()
	d.paragraph(r.Content)
	d.list("Personalization", r.Personalization)
}

func renderEnhanced(d *document, r types.EnhancedResume) {
	d.title("Enhanced Resume")
	d.paragraph(r.Content)
	d.list("Improvements", r.Improvements)
}

func renderBattle(d *document, r types.BattleResult) {
	d.title("Resume Battle")
	d.field("Winner", r.Battle.Winner)
	d.field("Resume 1 Score", r.ResumeA.Score)
	d.field("Resume 2 Score", r.ResumeB.Score)
	d.field("Score Difference", fmt.Sprintf("%+d", r.Stats.ScoreDiff))
	d.end()

	d.section("Verdict")
	d.paragraph(r.Battle.Verdict)
	d.list("Winner Strengths", r.Battle.BetterPoints)
	d.list("Runner-up Weaknesses", r.Battle.WorsePoints)
	d.list("Skills Added in Resume 2", r.Stats.SkillsAdded)
	d.list("Skills Removed in Resume 2", r.Stats.SkillsRemoved)
}

func renderChat(d *document, r types.ChatReply) {
	d.paragraph(r.Response)
}

func renderLearningPath(d *document, plans []types.SkillPlan) {
	d.title("Learning Path")
	if len(plans) == 0 {
		d.paragraph("No missing skills to plan for.")
		return
	}
	for i, p := range plans {
		d.numbered(i+1, fmt.Sprintf("%s [%s]", p.Skill, p.Priority))
		d.detail("Why", p.WhyNeeded)
		d.detail("Time to learn", p.TimeToLearn)
		if len(p.StudyTopics) > 0 {
			d.detail("Topics", strings.Join(p.StudyTopics, ", "))
		}
		for _, res := range p.Resources {
			d.detail("Resource", fmt.Sprintf("%s (%s)", res.Title, res.Type))
		}
	}
	d.end()
}

func renderInterview(d *document, s types.InterviewScript) {
	d.title("Interview Questions")
	for i, q := range s.Questions {
		d.numbered(i+1, q.Question)
		d.detail("Type", q.Type)
		d.detail("Difficulty", q.Difficulty)
		d.detail("Context", q.Context)
	}
	d.end()
}

func renderText(d *document, s string) {
	d.paragraph(s)
}

func renderSkillGraph(d *document, g types.SkillGraph) {
	d.title("Skill Graph")
	var current, missing []string
	for _, n := range g.Nodes {
		label := fmt.Sprintf("%s (%d)", n.ID, n.Val)
		if n.Desc != "" {
			label += ": " + n.Desc
		}
		if n.Group == "missing" {
			missing = append(missing, label)
		} else {
			current = append(current, label)
		}
	}
	d.list("Current Skills", current)
	d.list("Missing Skills", missing)

	links := make([]string, len(g.Links))
	for i, l := range g.Links {
		links[i] = fmt.Sprintf("%s -> %s", l.Source, l.Target)
	}
	d.list("Prerequisites", links)
}

func renderHistory(d *document, recs []types.AnalysisRecord) {
	d.title("Analysis History")
	if len(recs) == 0 {
		d.paragraph("No analyses found.")
		return
	}
	for i, rec := range recs {
		d.numbered(i+1, rec.ID)
		d.detail("Date", rec.CreatedAt.Format(time.RFC3339))
		d.detail("Domain", rec.TargetDomain)
		d.detail("Score", fmt.Sprintf("%d/100", rec.Results.Score))
	}
	d.end()
}

func renderRecord(d *document, rec *types.AnalysisRecord) {
	d.field("Analysis", rec.ID)
	d.field("Email", rec.UserEmail)
	d.field("Date", rec.CreatedAt.Format(time.RFC3339))
	d.end()
	renderCritique(d, rec.Results)
}
