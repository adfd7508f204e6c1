package types

// Task identifies one generation task
type Task string

const (
	TaskCritique           Task = "critique"
	TaskJDMatch            Task = "jd-match"
	TaskBulletRewrite      Task = "bullet-rewrite"
	TaskCoverLetter        Task = "cover-letter"
	TaskEnhance            Task = "enhance"
	TaskBattleJudge        Task = "battle-judge"
	TaskChat               Task = "chat"
	TaskLearningPath       Task = "learning-path"
	TaskInterviewQuestions Task = "interview-questions"
	TaskRoast              Task = "roast"
	TaskSkillGraph         Task = "skill-graph"
)

// AllTasks lists every task in catalog order
var AllTasks = []Task{
	TaskCritique,
	TaskJDMatch,
	TaskBulletRewrite,
	TaskCoverLetter,
	TaskEnhance,
	TaskBattleJudge,
	TaskChat,
	TaskLearningPath,
	TaskInterviewQuestions,
	TaskRoast,
	TaskSkillGraph,
}

// ConfigKey is the task name as used in configuration keys
func (t Task) ConfigKey() string {
	b := []byte(t)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

// Valid reports whether t is a known task
func (t Task) Valid() bool {
	for _, known := range AllTasks {
		if t == known {
			return true
		}
	}
	return false
}
