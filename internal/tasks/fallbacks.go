package tasks

import (
	"fmt"
	"strings"

	"resumalyzer/internal/types"
)

// Fixed fallback sentences for the plain-text tasks
const (
	RoastFallback = "I tried to roast you, but my servers crashed from the mediocrity."
	ChatApology   = "I'm experiencing some technical difficulties. Please try asking your question again."
)

// Every fallback is built fresh so callers may mutate the result.

func CritiqueFallback() types.CritiqueResult {
	return types.CritiqueResult{
		Score:            50,
		ATSCompatibility: 50,
		GrammarScore:     50,
		ReadabilityScore: 50,
		ExperienceMatch:  50,
		Strengths:        []string{"Unable to analyze due to AI service error"},
		Weaknesses:       []string{"Please try again later"},
		Improvements:     []string{"Check internet connection and retry"},
		HardSkills:       []string{},
		SoftSkills:       []string{},
		Keywords:         []string{},
		MissingKeywords:  []string{},
		SectionsDetected: []string{},
		MissingSections:  []string{},
		FormattingIssues: []string{},
		GrammarIssues:    []string{},
		ScamFlags:        []string{},
		BulletImprovements: []types.BulletImprovement{
			{Original: "System Error", Improved: "Please try again", Reason: "AI Service Timeout"},
		},
		TopProjects:        []types.TopProject{},
		InterviewQuestions: []types.CritiqueQuestion{},
		Summary:            "An error occurred while communicating with the AI analysis service. Please try again.",
	}
}

func JDMatchFallback() types.JDMatchResult {
	return types.JDMatchResult{
		MatchPercentage: 65,
		RoleFitScore:    70,
		MatchedKeywords: []string{"experience", "skills", "education"},
		MissingKeywords: []string{"specific technology", "industry certification", "leadership"},
		SkillGaps:       []string{"Need more specific technical skills", "Could improve industry knowledge"},
		Recommendations: []string{
			"Add missing keywords to resume",
			"Quantify achievements with metrics",
			"Highlight relevant experience",
		},
	}
}

func BulletRewriteFallback() types.BulletRewrite {
	return types.BulletRewrite{
		Improved: "Led cross-functional initiatives resulting in measurable business impact and improved operational efficiency",
		Reason:   "Added leadership action verb, mentioned cross-functional collaboration, and highlighted measurable outcomes",
	}
}

// CoverLetterFallback fills the template letter from the request
func CoverLetterFallback(in types.CoverLetterInput) types.CoverLetter {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		name = "Applicant"
	}
	tone := strings.TrimSpace(in.Tone)
	if tone == "" {
		tone = "professional"
	}
	content := fmt.Sprintf("Dear Hiring Manager,\n\nI am writing to express my strong interest in the %s position at %s. "+
		"Based on my background, I believe I am a great fit for the team.\n\nSincerely,\n%s",
		orValue(in.JobTitle, "open"), orValue(in.CompanyName, "your company"), name)
	return types.CoverLetter{
		Content:         content,
		Tone:            tone,
		Personalization: []string{"Relevant experience", "Company alignment"},
	}
}

func EnhanceFallback() types.EnhancedResume {
	return types.EnhancedResume{
		Content:      "Full enhanced resume text...",
		Improvements: []string{"Improvement 1", "Improvement 2", "Improvement 3"},
	}
}

func BattleJudgeFallback() types.BattleJudgment {
	return types.BattleJudgment{
		Winner:       "Tie",
		WinnerID:     "tie",
		Verdict:      "Both resumes are evenly matched; the comparison could not be completed.",
		BetterPoints: []string{},
		WorsePoints:  []string{},
	}
}

func ChatFallback() types.ChatReply {
	return types.ChatReply{Response: ChatApology}
}

func LearningPathFallback() []types.SkillPlan {
	return []types.SkillPlan{}
}

var genericQuestions = []string{
	"What is your greatest strength?",
	"What is your greatest weakness?",
	"Why do you want to work here?",
}

func InterviewFallback() types.InterviewScript {
	questions := make([]types.InterviewQuestion, len(genericQuestions))
	for i, q := range genericQuestions {
		questions[i] = types.InterviewQuestion{
			Question:   q,
			Type:       "Behavioral",
			Difficulty: "Easy",
			Context:    "General question",
		}
	}
	return types.InterviewScript{Questions: questions}
}

func SkillGraphFallback() types.SkillGraph {
	return types.SkillGraph{Nodes: []types.SkillNode{}, Links: []types.SkillLink{}}
}

func orValue(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
