package service

import (
	"formation_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func question(id uint, qType model.QuestionType, points int, correct ...int) model.QuizQuestion {
	q := model.QuizQuestion{
		BaseModel: model.BaseModel{ID: id},
		Type:      qType,
		Points:    points,
	}
	if qType != model.FreeText {
		correctSet := make(map[int]bool)
		for _, c := range correct {
			correctSet[c] = true
		}
		for i := 0; i < 4; i++ {
			q.Answers = append(q.Answers, model.QuizAnswer{
				Text:      "option",
				IsCorrect: correctSet[i],
			})
		}
	}
	return q
}

func selected(questionID uint, indexes ...int) *model.QuizAttemptAnswer {
	return &model.QuizAttemptAnswer{QuestionID: questionID, SelectedIndexes: indexes}
}

func TestScoreSingleChoice(t *testing.T) {
	q := question(1, model.SingleChoice, 1, 2)

	assert.True(t, scoreQuestion(&q, selected(1, 2)))
	assert.False(t, scoreQuestion(&q, selected(1, 0)))
	assert.False(t, scoreQuestion(&q, selected(1)))
	assert.False(t, scoreQuestion(&q, selected(1, 2, 3)))
	assert.False(t, scoreQuestion(&q, nil))
	assert.False(t, scoreQuestion(&q, selected(1, 7))) // out of range
}

func TestScoreMultipleChoiceSetEquality(t *testing.T) {
	q := question(1, model.MultipleChoice, 2, 0, 2)

	tests := []struct {
		name    string
		indexes []int
		want    bool
	}{
		{"exact set", []int{0, 2}, true},
		{"order does not matter", []int{2, 0}, true},
		{"subset earns nothing", []int{0}, false},
		{"superset earns nothing", []int{0, 2, 3}, false},
		{"disjoint", []int{1, 3}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreQuestion(&q, selected(1, tt.indexes...)))
		})
	}
}

func TestScoreFreeText(t *testing.T) {
	q := question(1, model.FreeText, 1)

	assert.True(t, scoreQuestion(&q, &model.QuizAttemptAnswer{QuestionID: 1, TextAnswer: "une réponse"}))
	assert.False(t, scoreQuestion(&q, &model.QuizAttemptAnswer{QuestionID: 1, TextAnswer: ""}))
	assert.False(t, scoreQuestion(&q, &model.QuizAttemptAnswer{QuestionID: 1, TextAnswer: "   \t  "}))
}

func TestGradeAttempt(t *testing.T) {
	quiz := &model.Quiz{
		PassingScore: 50,
		Questions: []model.QuizQuestion{
			question(1, model.SingleChoice, 2, 1),
			question(2, model.MultipleChoice, 3, 0, 1),
			question(3, model.SingleChoice, 0, 0), // unset points count as 1
		},
	}

	answers := map[uint]*model.QuizAttemptAnswer{
		1: selected(1, 1),
		2: selected(2, 0), // subset, no credit
		3: selected(3, 0),
	}

	result := gradeAttempt(quiz, answers)
	assert.Equal(t, 6, result.TotalScore)
	assert.Equal(t, 3, result.UserScore)
	assert.Equal(t, 50, result.Score)
	assert.True(t, result.IsPassed) // exactly at the threshold passes
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, 3, result.TotalQuestions)
}

func TestGradeAttemptUnansweredAndEmpty(t *testing.T) {
	quiz := &model.Quiz{
		PassingScore: 50,
		Questions: []model.QuizQuestion{
			question(1, model.SingleChoice, 1, 0),
			question(2, model.SingleChoice, 1, 0),
		},
	}

	// One unanswered question simply earns nothing.
	result := gradeAttempt(quiz, map[uint]*model.QuizAttemptAnswer{1: selected(1, 0)})
	assert.Equal(t, 50, result.Score)
	assert.True(t, result.IsPassed)

	// Empty quiz grades to zero without dividing by zero.
	empty := gradeAttempt(&model.Quiz{PassingScore: 50}, nil)
	assert.Equal(t, 0, empty.Score)
	assert.False(t, empty.IsPassed)
}

func TestGradeAttemptFailsBelowThreshold(t *testing.T) {
	quiz := &model.Quiz{
		PassingScore: 70,
		Questions: []model.QuizQuestion{
			question(1, model.SingleChoice, 1, 0),
			question(2, model.SingleChoice, 1, 0),
			question(3, model.SingleChoice, 1, 0),
		},
	}

	answers := map[uint]*model.QuizAttemptAnswer{
		1: selected(1, 0),
		2: selected(2, 0),
		3: selected(3, 1),
	}

	result := gradeAttempt(quiz, answers)
	assert.Equal(t, 67, result.Score)
	assert.False(t, result.IsPassed)
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Now()
	quiz := &model.Quiz{TimeLimit: 10} // minutes
	attempt := &model.QuizAttempt{StartedAt: now.Add(-4 * time.Minute)}

	assert.Equal(t, 360, RemainingSeconds(quiz, attempt, now))

	// Past the deadline: clamped to zero, never negative.
	late := &model.QuizAttempt{StartedAt: now.Add(-15 * time.Minute)}
	assert.Equal(t, 0, RemainingSeconds(quiz, late, now))

	// No time limit at all.
	assert.Equal(t, -1, RemainingSeconds(&model.Quiz{}, attempt, now))
}

func TestAttemptExpiredDoesNotTruncate(t *testing.T) {
	start := time.Now()
	quiz := &model.Quiz{TimeLimit: 1} // minutes
	attempt := &model.QuizAttempt{StartedAt: start}

	// A fraction of a second left: the display countdown floors to
	// zero, but the attempt is still live.
	almostOver := start.Add(time.Minute - 400*time.Millisecond)
	assert.Equal(t, 0, RemainingSeconds(quiz, attempt, almostOver))
	assert.False(t, attemptExpired(quiz, attempt, almostOver))

	over := start.Add(time.Minute + time.Millisecond)
	assert.True(t, attemptExpired(quiz, attempt, over))

	// Untimed quizzes never expire.
	assert.False(t, attemptExpired(&model.Quiz{}, attempt, over))
}

func TestToggleIndex(t *testing.T) {
	assert.Equal(t, model.IndexSet{2}, toggleIndex(nil, 2))
	assert.Equal(t, model.IndexSet{0, 2}, toggleIndex(model.IndexSet{0}, 2))
	assert.Equal(t, model.IndexSet{0}, toggleIndex(model.IndexSet{0, 2}, 2))
	assert.Empty(t, toggleIndex(model.IndexSet{1}, 1))
}
