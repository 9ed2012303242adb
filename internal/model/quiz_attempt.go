package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
)

// QuizAttempt is one learner run through a quiz. The countdown deadline
// is derived from StartedAt plus the quiz time limit; no client clock is
// trusted.
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID      uint       `gorm:"index:idx_quiz_user;type:bigint unsigned" json:"quizId"`
	UserID      uint       `gorm:"index:idx_quiz_user;type:bigint unsigned" json:"userId"`
	Status      string     `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsTimeout   bool       `gorm:"default:false" json:"isTimeout"`
	UserScore   int        `gorm:"default:0" json:"userScore"`  // earned points
	TotalScore  int        `gorm:"default:0" json:"totalScore"` // total points
	Score       int        `gorm:"default:0" json:"score"`      // percent
	Passed      bool       `gorm:"default:false" json:"passed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// IndexSet stores a set of selected answer indexes as a JSON array.
type IndexSet []int

func (s IndexSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(s))
	return string(b), err
}

func (s *IndexSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]int)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]int)(s))
	case nil:
		*s = nil
		return nil
	}
	return errors.New("unsupported type for IndexSet")
}

// Contains reports membership of an answer index.
func (s IndexSet) Contains(idx int) bool {
	for _, v := range s {
		if v == idx {
			return true
		}
	}
	return false
}

// swagger:model QuizAttemptAnswer
type QuizAttemptAnswer struct {
	UUIDBase
	AttemptID       string   `gorm:"index:idx_attempt_question,unique;type:varchar(36)" json:"attemptId"`
	QuestionID      uint     `gorm:"index:idx_attempt_question,unique;type:bigint unsigned" json:"questionId"`
	SelectedIndexes IndexSet `gorm:"type:json" json:"selectedIndexes"`
	TextAnswer      string   `gorm:"type:text" json:"textAnswer"`
	IsCorrect       bool     `gorm:"default:false" json:"isCorrect"`
	Points          int      `gorm:"default:0" json:"points"` // earned on grading
}

func (QuizAttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}
