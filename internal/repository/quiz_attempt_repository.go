package repository

import (
	"formation_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizAttemptRepository) FindByID(id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("id = ?", id).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindLatestByUserAndQuiz returns the learner's most recent attempt on
// a quiz, completed or not.
func (r *QuizAttemptRepository) FindLatestByUserAndQuiz(userID, quizID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) Save(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *QuizAttemptRepository) ListAnswers(attemptID string) ([]model.QuizAttemptAnswer, error) {
	var answers []model.QuizAttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

// SaveAnswer upserts the learner's selection for one question of an
// in-progress attempt.
func (r *QuizAttemptRepository) SaveAnswer(answer *model.QuizAttemptAnswer) error {
	var existing model.QuizAttemptAnswer
	err := r.DB.
		Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
		First(&existing).Error
	if err != nil {
		return r.DB.Create(answer).Error
	}

	existing.SelectedIndexes = answer.SelectedIndexes
	existing.TextAnswer = answer.TextAnswer
	return r.DB.Save(&existing).Error
}

// UpdateWithAnswers persists the graded attempt and its graded answers
// in one transaction.
func (r *QuizAttemptRepository) UpdateWithAnswers(attempt *model.QuizAttempt, answers []model.QuizAttemptAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteWithAnswers removes an attempt and its answers; used by the
// explicit retake action.
func (r *QuizAttemptRepository) DeleteWithAnswers(attemptID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", attemptID).Delete(&model.QuizAttemptAnswer{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", attemptID).Delete(&model.QuizAttempt{}).Error
	})
}

// TimedAttemptRow pairs an in-progress attempt with its quiz's time
// limit so the sweeper can compute the deadline.
type TimedAttemptRow struct {
	model.QuizAttempt
	TimeLimit int
}

// FindTimedInProgress lists in-progress attempts on time-limited
// quizzes; the caller decides which have passed their deadline.
func (r *QuizAttemptRepository) FindTimedInProgress() ([]TimedAttemptRow, error) {
	var rows []TimedAttemptRow
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("quiz_attempts.*, quizzes.time_limit").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.status = ? AND quizzes.time_limit > 0", model.AttemptInProgress).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
