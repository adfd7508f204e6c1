package types

import "time"

// CritiqueInput is the input for a full resume critique
type CritiqueInput struct {
	ResumeText   string `json:"resumeText"`
	TargetDomain string `json:"targetDomain"`
}

// BulletImprovement is one weak bullet rewritten in XYZ format
type BulletImprovement struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
	Reason   string `json:"reason"`
}

// TopProject is a project scored 0-10 on complexity and impact
type TopProject struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// CritiqueQuestion is an interview question derived from a resume claim
type CritiqueQuestion struct {
	Question   string `json:"question"`
	Importance string `json:"importance"`
	Reason     string `json:"reason"`
}

// CritiqueResult is the validated output of the critique task
type CritiqueResult struct {
	Score              int                 `json:"score"`
	ATSCompatibility   int                 `json:"ats_compatibility"`
	GrammarScore       int                 `json:"grammar_score"`
	ReadabilityScore   int                 `json:"readability_score"`
	ExperienceMatch    int                 `json:"experience_match"`
	Strengths          []string            `json:"strengths"`
	Weaknesses         []string            `json:"weaknesses"`
	Improvements       []string            `json:"improvements"`
	HardSkills         []string            `json:"hard_skills"`
	SoftSkills         []string            `json:"soft_skills"`
	Keywords           []string            `json:"keywords"`
	MissingKeywords    []string            `json:"missing_keywords"`
	SectionsDetected   []string            `json:"sections_detected"`
	MissingSections    []string            `json:"missing_sections"`
	FormattingIssues   []string            `json:"formatting_issues"`
	GrammarIssues      []string            `json:"grammar_issues"`
	ScamFlags          []string            `json:"scam_flags"`
	BulletImprovements []BulletImprovement `json:"bullet_improvements"`
	TopProjects        []TopProject        `json:"top_projects"`
	InterviewQuestions []CritiqueQuestion  `json:"interview_questions"`
	Summary            string              `json:"summary"`
}

// JDMatchInput is the input for matching a resume against a job description
type JDMatchInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	TargetDomain   string `json:"targetDomain"`
}

// JDMatchResult is the validated output of the jd-match task
type JDMatchResult struct {
	MatchPercentage int      `json:"match_percentage"`
	RoleFitScore    int      `json:"role_fit_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	SkillGaps       []string `json:"skill_gaps"`
	Recommendations []string `json:"recommendations"`
}

// SkillDiff is the locally computed difference between two skill lists
type SkillDiff struct {
	Added   []string `json:"skills_added"`
	Removed []string `json:"skills_removed"`
}

// BulletInput is a single bullet point to rewrite
type BulletInput struct {
	Text string `json:"bulletText"`
}

// BulletRewrite is the validated output of the bullet-rewrite task
type BulletRewrite struct {
	Improved string `json:"improved"`
	Reason   string `json:"reason"`
}

// CoverLetterInput is the input for cover letter generation
type CoverLetterInput struct {
	ResumeText     string `json:"resumeText"`
	JobTitle       string `json:"jobTitle"`
	UserName       string `json:"userName"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
	Tone           string `json:"tone"`
}

// CoverLetter is the validated output of the cover-letter task
type CoverLetter struct {
	Content         string   `json:"content"`
	Tone            string   `json:"tone"`
	Personalization []string `json:"personalization"`
}

// EnhanceInput is the input for a full resume rewrite
type EnhanceInput struct {
	ResumeText string `json:"resumeText"`
	Tone       string `json:"tone"`
	TargetRole string `json:"targetRole"`
}

// EnhancedResume is the validated output of the enhance task
type EnhancedResume struct {
	Content      string   `json:"content"`
	Improvements []string `json:"improvements"`
}

// BattleInput holds the two resumes to compare
type BattleInput struct {
	ResumeA      string `json:"resumeA"`
	ResumeB      string `json:"resumeB"`
	TargetDomain string `json:"targetDomain"`
}

// BattleJudgment is the model's verdict over two critiqued resumes
type BattleJudgment struct {
	Winner       string   `json:"winner"`
	WinnerID     string   `json:"winner_id"`
	Verdict      string   `json:"verdict"`
	BetterPoints []string `json:"better_points"`
	WorsePoints  []string `json:"worse_points"`
}

// BattleStats are computed locally and never taken from the model
type BattleStats struct {
	ScoreDiff     int      `json:"score_diff"`
	SkillsAdded   []string `json:"skills_added"`
	SkillsRemoved []string `json:"skills_removed"`
}

// BattleResult is the combined output of the battle flow
type BattleResult struct {
	ResumeA CritiqueResult `json:"resume1"`
	ResumeB CritiqueResult `json:"resume2"`
	Battle  BattleJudgment `json:"battle"`
	Stats   BattleStats    `json:"stats"`
}

// ChatMessage is one turn of prior conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput is the input for one assistant turn
type ChatInput struct {
	Message       string        `json:"message"`
	ResumeContext string        `json:"resumeContext"`
	TargetDomain  string        `json:"targetDomain"`
	History       []ChatMessage `json:"conversationHistory"`
}

// ChatReply is the assistant's plain-text answer
type ChatReply struct {
	Response string `json:"response"`
}

// LearningPathInput lists the skills a candidate is missing
type LearningPathInput struct {
	MissingSkills []string `json:"missingSkills"`
	TargetDomain  string   `json:"targetDomain"`
}

// LearningResource is a named study resource, never a URL
type LearningResource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// SkillPlan is the learning plan for one missing skill
type SkillPlan struct {
	Skill       string             `json:"skill"`
	Priority    string             `json:"priority"`
	WhyNeeded   string             `json:"why_needed"`
	Resources   []LearningResource `json:"resources"`
	StudyTopics []string           `json:"study_topics"`
	TimeToLearn string             `json:"time_to_learn"`
}

// InterviewInput is the input for interview question generation
type InterviewInput struct {
	ResumeText   string `json:"resumeText"`
	TargetDomain string `json:"targetDomain"`
}

// InterviewQuestion is one scripted interview question
type InterviewQuestion struct {
	Question   string `json:"question"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Context    string `json:"context"`
}

// InterviewScript is the validated output of the interview-questions task
type InterviewScript struct {
	Questions []InterviewQuestion `json:"questions"`
}

// RoastInput is the resume to roast
type RoastInput struct {
	ResumeText string `json:"resumeText"`
}

// SkillGraphInput is the input for the skill knowledge graph
type SkillGraphInput struct {
	ResumeText string `json:"resumeText"`
	TargetRole string `json:"targetRole"`
}

// SkillNode is a skill the candidate has ("current") or needs ("missing")
type SkillNode struct {
	ID    string `json:"id"`
	Group string `json:"group"`
	Val   int    `json:"val"`
	Desc  string `json:"desc"`
}

// SkillLink is a prerequisite edge between two skills
type SkillLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// SkillGraph is the validated output of the skill-graph task
type SkillGraph struct {
	Nodes []SkillNode `json:"nodes"`
	Links []SkillLink `json:"links"`
}

// AnalysisRecord wraps one critique result with its identifying metadata
type AnalysisRecord struct {
	ID           string         `json:"id"`
	UserEmail    string         `json:"user_email"`
	TargetDomain string         `json:"target_domain"`
	ResumeText   string         `json:"resume_text,omitempty"`
	Results      CritiqueResult `json:"analysis_results"`
	CreatedAt    time.Time      `json:"created_at"`
}
