package model

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	FreeText       QuestionType = "free_text"
)

// Quiz is the graded assessment attached to a formation.
// swagger:model Quiz
type Quiz struct {
	BaseModel
	FormationID  uint           `gorm:"uniqueIndex;type:bigint unsigned" json:"formationId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	PassingScore int            `gorm:"default:50" json:"passingScore"` // percent
	TimeLimit    int            `gorm:"default:0" json:"timeLimit"`     // minutes, 0 = none
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID      uint         `gorm:"index;type:bigint unsigned" json:"quizId"`
	Type        QuestionType `gorm:"size:50;not null" json:"type"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Points      int          `gorm:"default:1" json:"points"`
	Order       int          `gorm:"default:0" json:"order"`
	Explanation string       `gorm:"type:text" json:"explanation,omitempty"`
	Answers     []QuizAnswer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// EffectivePoints returns the question weight, defaulting to 1 when the
// author left points unset.
func (q *QuizQuestion) EffectivePoints() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// swagger:model QuizAnswer
type QuizAnswer struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
