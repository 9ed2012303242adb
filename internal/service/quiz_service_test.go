package service

import (
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuizService(t *testing.T) (*QuizService, *repository.QuizRepository, *repository.QuizAttemptRepository) {
	t.Helper()

	db := newTestDB(t)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	return NewQuizService(quizRepo, attemptRepo), quizRepo, attemptRepo
}

func createTestQuiz(t *testing.T, quizRepo *repository.QuizRepository, timeLimit int) *model.Quiz {
	t.Helper()

	quiz := &model.Quiz{
		FormationID:  1,
		Title:        "Quiz final",
		PassingScore: 50,
		TimeLimit:    timeLimit,
		Questions: []model.QuizQuestion{
			{
				Type:    model.SingleChoice,
				Content: "Question 1",
				Points:  2,
				Order:   0,
				Answers: []model.QuizAnswer{
					{Text: "A", IsCorrect: false, Order: 0},
					{Text: "B", IsCorrect: true, Order: 1},
				},
			},
			{
				Type:    model.MultipleChoice,
				Content: "Question 2",
				Points:  2,
				Order:   1,
				Answers: []model.QuizAnswer{
					{Text: "A", IsCorrect: true, Order: 0},
					{Text: "B", IsCorrect: false, Order: 1},
					{Text: "C", IsCorrect: true, Order: 2},
				},
			},
		},
	}
	require.NoError(t, quizRepo.Create(quiz))

	loaded, err := quizRepo.FindByID(quiz.ID)
	require.NoError(t, err)
	return loaded
}

func TestStartAttemptResumesInProgress(t *testing.T) {
	svc, quizRepo, _ := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 0)

	first, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, first.Status)

	// A reload must not fork a second attempt or reset the clock.
	second, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSaveAnswerSemanticsPerQuestionType(t *testing.T) {
	svc, quizRepo, attemptRepo := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 0)

	attempt, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)

	single := quiz.Questions[0]
	multiple := quiz.Questions[1]

	// Single choice: each save replaces the previous selection.
	idx := 0
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: single.ID, SelectedIndex: &idx}))
	idx = 1
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: single.ID, SelectedIndex: &idx}))

	// Multiple choice: saves toggle membership.
	toggle := 0
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: multiple.ID, ToggleIndex: &toggle}))
	toggle = 2
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: multiple.ID, ToggleIndex: &toggle}))
	toggle = 0
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: multiple.ID, ToggleIndex: &toggle}))

	answers, err := attemptRepo.ListAnswers(attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	byQuestion := make(map[uint]model.QuizAttemptAnswer)
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}
	assert.Equal(t, model.IndexSet{1}, byQuestion[single.ID].SelectedIndexes)
	assert.Equal(t, model.IndexSet{2}, byQuestion[multiple.ID].SelectedIndexes)
}

func TestSubmitGradesOnce(t *testing.T) {
	svc, quizRepo, attemptRepo := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 0)

	attempt, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)

	idx := 1
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[0].ID, SelectedIndex: &idx}))
	toggle := 0
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[1].ID, ToggleIndex: &toggle}))

	result, err := svc.Submit(7, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalScore)
	assert.Equal(t, 2, result.UserScore) // subset on the multiple choice earns nothing
	assert.Equal(t, 50, result.Score)
	assert.True(t, result.IsPassed)

	stored, err := attemptRepo.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, stored.Status)
	assert.False(t, stored.IsTimeout)
	assert.NotNil(t, stored.CompletedAt)

	// Grading is one-shot.
	_, err = svc.Submit(7, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptCompleted)

	_, err = svc.Submit(9, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound) // not the owner
}

func TestTimeoutAutoSubmitsExactlyOnce(t *testing.T) {
	svc, quizRepo, attemptRepo := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 10)

	attempt, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)

	idx := 1
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[0].ID, SelectedIndex: &idx}))

	// Push the start past the deadline.
	attempt.StartedAt = time.Now().Add(-11 * time.Minute)
	require.NoError(t, attemptRepo.Save(attempt))

	view, err := svc.GetAttempt(7, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, view.Status)
	assert.True(t, view.IsTimeout)
	assert.Equal(t, 0, view.RemainingSeconds)
	require.NotNil(t, view.Result)
	assert.Equal(t, 50, view.Result.Score) // selections present at the deadline are graded

	firstCompletedAt := *mustFind(t, attemptRepo, attempt.ID).CompletedAt

	// A second poll must not regrade or move the completion time.
	_, err = svc.GetAttempt(7, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, firstCompletedAt, *mustFind(t, attemptRepo, attempt.ID).CompletedAt)

	// Late answers are refused.
	err = svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[0].ID, SelectedIndex: &idx})
	assert.ErrorIs(t, err, util.ErrAttemptCompleted)
}

func mustFind(t *testing.T, repo *repository.QuizAttemptRepository, id string) *model.QuizAttempt {
	t.Helper()
	attempt, err := repo.FindByID(id)
	require.NoError(t, err)
	return attempt
}

func TestProcessExpiredAttemptsSweep(t *testing.T) {
	svc, quizRepo, attemptRepo := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 5)

	expired, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)
	expired.StartedAt = time.Now().Add(-6 * time.Minute)
	require.NoError(t, attemptRepo.Save(expired))

	fresh, err := svc.StartAttempt(8, quiz.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessExpiredAttempts())

	assert.Equal(t, model.AttemptCompleted, mustFind(t, attemptRepo, expired.ID).Status)
	assert.True(t, mustFind(t, attemptRepo, expired.ID).IsTimeout)
	assert.Equal(t, model.AttemptInProgress, mustFind(t, attemptRepo, fresh.ID).Status)
}

func TestRestartResetsEverything(t *testing.T) {
	svc, quizRepo, attemptRepo := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 0)

	attempt, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)

	// Restarting an attempt still in progress is refused.
	_, err = svc.Restart(7, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptInProgress)

	idx := 1
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[0].ID, SelectedIndex: &idx}))
	_, err = svc.Submit(7, attempt.ID)
	require.NoError(t, err)

	fresh, err := svc.Restart(7, attempt.ID)
	require.NoError(t, err)
	assert.NotEqual(t, attempt.ID, fresh.ID)
	assert.Equal(t, model.AttemptInProgress, fresh.Status)
	assert.Zero(t, fresh.Score)
	assert.False(t, fresh.Passed)

	answers, err := attemptRepo.ListAnswers(fresh.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestGetForLearnerHidesAnswerKey(t *testing.T) {
	svc, quizRepo, _ := newTestQuizService(t)
	createTestQuiz(t, quizRepo, 10)

	quiz, err := svc.GetForLearner(1)
	require.NoError(t, err)
	assert.Equal(t, "Quiz final", quiz.Title)
	assert.Equal(t, 10, quiz.TimeLimit)
	require.Len(t, quiz.Questions, 2)

	// Answer options carry index and text only.
	assert.Equal(t, []StudentAnswer{{Index: 0, Text: "A"}, {Index: 1, Text: "B"}}, quiz.Questions[0].Answers)
}

func TestHasPassed(t *testing.T) {
	svc, quizRepo, _ := newTestQuizService(t)
	quiz := createTestQuiz(t, quizRepo, 0)

	// No quiz on the formation at all: trivially not passed, no error.
	passed, err := svc.HasPassed(7, 99)
	require.NoError(t, err)
	assert.False(t, passed)

	passed, err = svc.HasPassed(7, 1)
	require.NoError(t, err)
	assert.False(t, passed)

	attempt, err := svc.StartAttempt(7, quiz.ID)
	require.NoError(t, err)
	idx := 1
	require.NoError(t, svc.SaveAnswer(7, attempt.ID, SaveAnswerRequest{QuestionID: quiz.Questions[0].ID, SelectedIndex: &idx}))
	_, err = svc.Submit(7, attempt.ID)
	require.NoError(t, err)

	passed, err = svc.HasPassed(7, 1)
	require.NoError(t, err)
	assert.True(t, passed)
}
