package service

import (
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
	"formation_backend/pkg/monitoring"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.QuizAttemptRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.QuizAttemptRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo, AttemptRepo: attemptRepo}
}

// QuizResult is the graded outcome reported to the presentation layer
// and consumed by the formation's quiz-gated completion state.
type QuizResult struct {
	Score          int  `json:"score"` // percent
	IsPassed       bool `json:"isPassed"`
	TotalScore     int  `json:"totalScore"` // total points
	UserScore      int  `json:"userScore"`  // earned points
	CorrectAnswers int  `json:"correctAnswers"`
	TotalQuestions int  `json:"totalQuestions"`
}

// correctIndexSet lists the indexes of a question's correct answers, in
// answer order.
func correctIndexSet(q *model.QuizQuestion) map[int]bool {
	set := make(map[int]bool)
	for i, a := range q.Answers {
		if a.IsCorrect {
			set[i] = true
		}
	}
	return set
}

// scoreQuestion decides whether one answered question earns its points.
func scoreQuestion(q *model.QuizQuestion, ans *model.QuizAttemptAnswer) bool {
	if ans == nil {
		return false
	}

	switch q.Type {
	case model.SingleChoice:
		if len(ans.SelectedIndexes) != 1 {
			return false
		}
		idx := ans.SelectedIndexes[0]
		return idx >= 0 && idx < len(q.Answers) && q.Answers[idx].IsCorrect

	case model.MultipleChoice:
		// Exact set equality: a subset or superset of the correct
		// answers earns nothing, there is no partial credit.
		correct := correctIndexSet(q)
		if len(ans.SelectedIndexes) != len(correct) {
			return false
		}
		for _, idx := range ans.SelectedIndexes {
			if !correct[idx] {
				return false
			}
		}
		return true

	case model.FreeText:
		// TODO(grading): auto-credits any non-empty answer; replace
		// with an admin review queue once manual grading ships.
		return strings.TrimSpace(ans.TextAnswer) != ""
	}

	return false
}

// gradeAttempt scores an answer set against the quiz's answer key.
// Pure; runs exactly once per attempt, at submission.
func gradeAttempt(quiz *model.Quiz, answers map[uint]*model.QuizAttemptAnswer) QuizResult {
	result := QuizResult{TotalQuestions: len(quiz.Questions)}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		points := q.EffectivePoints()
		result.TotalScore += points

		if scoreQuestion(q, answers[q.ID]) {
			result.UserScore += points
			result.CorrectAnswers++
		}
	}

	if result.TotalScore > 0 {
		result.Score = roundPercent(float64(result.UserScore) / float64(result.TotalScore) * 100)
	}
	result.IsPassed = result.Score >= quiz.PassingScore
	return result
}

// RemainingSeconds computes the display countdown from the server-side
// deadline (StartedAt + time limit); never negative. Quizzes without a
// time limit return -1. The timeout decision itself is attemptExpired,
// which does not truncate.
func RemainingSeconds(quiz *model.Quiz, attempt *model.QuizAttempt, now time.Time) int {
	if quiz.TimeLimit <= 0 {
		return -1
	}
	deadline := attempt.StartedAt.Add(time.Duration(quiz.TimeLimit) * time.Minute)
	remaining := int(deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// attemptExpired is the timeout decision. The integer countdown
// truncates toward zero and would expire an attempt with a fraction of
// a second left, so the deadline is compared directly.
func attemptExpired(quiz *model.Quiz, attempt *model.QuizAttempt, now time.Time) bool {
	if quiz.TimeLimit <= 0 {
		return false
	}
	deadline := attempt.StartedAt.Add(time.Duration(quiz.TimeLimit) * time.Minute)
	return now.After(deadline)
}

// StartAttempt opens a run through the quiz. An existing in-progress
// attempt is returned as-is so a reload resumes instead of forking.
func (s *QuizService) StartAttempt(userID, quizID uint) (*model.QuizAttempt, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return nil, util.ErrQuizNotFound
	}

	existing, err := s.AttemptRepo.FindLatestByUserAndQuiz(userID, quizID)
	if err == nil && existing.Status == model.AttemptInProgress {
		return existing, nil
	}

	attempt := &model.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

type SaveAnswerRequest struct {
	QuestionID    uint    `json:"questionId" binding:"required"`
	SelectedIndex *int    `json:"selectedIndex,omitempty"` // single choice: overwrite
	ToggleIndex   *int    `json:"toggleIndex,omitempty"`   // multiple choice: toggle membership
	TextAnswer    *string `json:"textAnswer,omitempty"`    // free text
}

// SaveAnswer records the learner's current selection for one question.
// Selections persist server-side so a timeout submission grades
// whatever was selected at the deadline.
func (s *QuizService) SaveAnswer(userID uint, attemptID string, req SaveAnswerRequest) error {
	attempt, quiz, err := s.loadAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptCompleted
	}
	if attemptExpired(quiz, attempt, time.Now()) {
		// Deadline passed: force the one-shot auto submission, drop
		// the late selection.
		_, err := s.finalize(quiz, attempt, true)
		if err != nil {
			return err
		}
		return util.ErrAttemptCompleted
	}

	var question *model.QuizQuestion
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == req.QuestionID {
			question = &quiz.Questions[i]
			break
		}
	}
	if question == nil {
		return util.ErrQuizNotFound
	}

	answer := &model.QuizAttemptAnswer{
		AttemptID:  attemptID,
		QuestionID: req.QuestionID,
	}

	switch question.Type {
	case model.SingleChoice:
		if req.SelectedIndex == nil {
			return util.ErrQuizNotFound
		}
		answer.SelectedIndexes = model.IndexSet{*req.SelectedIndex}

	case model.MultipleChoice:
		if req.ToggleIndex == nil {
			return util.ErrQuizNotFound
		}
		existing, _ := s.AttemptRepo.ListAnswers(attemptID)
		var current model.IndexSet
		for i := range existing {
			if existing[i].QuestionID == req.QuestionID {
				current = existing[i].SelectedIndexes
				break
			}
		}
		answer.SelectedIndexes = toggleIndex(current, *req.ToggleIndex)

	case model.FreeText:
		if req.TextAnswer == nil {
			return util.ErrQuizNotFound
		}
		answer.TextAnswer = *req.TextAnswer
	}

	return s.AttemptRepo.SaveAnswer(answer)
}

// toggleIndex flips membership of idx in the selection set.
func toggleIndex(current model.IndexSet, idx int) model.IndexSet {
	if current.Contains(idx) {
		next := make(model.IndexSet, 0, len(current)-1)
		for _, v := range current {
			if v != idx {
				next = append(next, v)
			}
		}
		return next
	}
	return append(append(model.IndexSet{}, current...), idx)
}

// Submit grades the attempt against the answer key.
func (s *QuizService) Submit(userID uint, attemptID string) (*QuizResult, error) {
	attempt, quiz, err := s.loadAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptCompleted
	}

	timedOut := attemptExpired(quiz, attempt, time.Now())
	return s.finalize(quiz, attempt, timedOut)
}

// finalize grades and persists exactly once; the status guard in the
// callers keeps a raced deadline and manual submit from double-grading.
func (s *QuizService) finalize(quiz *model.Quiz, attempt *model.QuizAttempt, timedOut bool) (*QuizResult, error) {
	rows, err := s.AttemptRepo.ListAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]*model.QuizAttemptAnswer, len(rows))
	for i := range rows {
		byQuestion[rows[i].QuestionID] = &rows[i]
	}

	result := gradeAttempt(quiz, byQuestion)

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		ans, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		ans.IsCorrect = scoreQuestion(q, ans)
		if ans.IsCorrect {
			ans.Points = q.EffectivePoints()
		}
	}

	now := time.Now()
	attempt.Status = model.AttemptCompleted
	attempt.CompletedAt = &now
	attempt.IsTimeout = timedOut
	attempt.UserScore = result.UserScore
	attempt.TotalScore = result.TotalScore
	attempt.Score = result.Score
	attempt.Passed = result.IsPassed

	if err := s.AttemptRepo.UpdateWithAnswers(attempt, rows); err != nil {
		return nil, err
	}

	outcome := "failed"
	if result.IsPassed {
		outcome = "passed"
	}
	monitoring.QuizSubmissionCounter.WithLabelValues(outcome, strconv.FormatBool(timedOut)).Inc()

	return &result, nil
}

// Restart resets a completed attempt for a retake: answers, timer and
// result all go back to zero. An in-progress attempt cannot be
// restarted.
func (s *QuizService) Restart(userID uint, attemptID string) (*model.QuizAttempt, error) {
	attempt, _, err := s.loadAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptInProgress
	}

	if err := s.AttemptRepo.DeleteWithAnswers(attemptID); err != nil {
		return nil, err
	}
	return s.StartAttempt(userID, attempt.QuizID)
}

// AttemptView is the attempt state the quiz screen polls.
type AttemptView struct {
	ID               string                    `json:"id"`
	QuizID           uint                      `json:"quizId"`
	Status           string                    `json:"status"`
	StartedAt        time.Time                 `json:"startedAt"`
	RemainingSeconds int                       `json:"remainingSeconds"` // -1 when untimed
	IsTimeout        bool                      `json:"isTimeout"`
	Answers          []model.QuizAttemptAnswer `json:"answers"`
	Result           *QuizResult               `json:"result,omitempty"`
}

// GetAttempt returns the attempt with its countdown. An in-progress
// attempt found past its deadline is force-submitted here; the
// deadline is server-derived and fires even if the client tab died.
func (s *QuizService) GetAttempt(userID uint, attemptID string) (*AttemptView, error) {
	attempt, quiz, err := s.loadAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptInProgress && attemptExpired(quiz, attempt, time.Now()) {
		if _, err := s.finalize(quiz, attempt, true); err != nil {
			return nil, err
		}
	}

	answers, err := s.AttemptRepo.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}

	view := &AttemptView{
		ID:        attempt.ID,
		QuizID:    attempt.QuizID,
		Status:    attempt.Status,
		StartedAt: attempt.StartedAt,
		IsTimeout: attempt.IsTimeout,
		Answers:   answers,
	}

	if attempt.Status == model.AttemptCompleted {
		view.RemainingSeconds = 0
		view.Result = &QuizResult{
			Score:          attempt.Score,
			IsPassed:       attempt.Passed,
			TotalScore:     attempt.TotalScore,
			UserScore:      attempt.UserScore,
			CorrectAnswers: countCorrect(answers),
			TotalQuestions: len(quiz.Questions),
		}
	} else {
		view.RemainingSeconds = RemainingSeconds(quiz, attempt, time.Now())
	}

	return view, nil
}

func countCorrect(answers []model.QuizAttemptAnswer) int {
	n := 0
	for i := range answers {
		if answers[i].IsCorrect {
			n++
		}
	}
	return n
}

// HasPassed reports whether the learner has any passed attempt on the
// formation's quiz; this is the quiz-gated completion input of the
// formation view.
func (s *QuizService) HasPassed(userID, formationID uint) (bool, error) {
	quiz, err := s.QuizRepo.FindByFormation(formationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	attempt, err := s.AttemptRepo.FindLatestByUserAndQuiz(userID, quiz.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return attempt.Status == model.AttemptCompleted && attempt.Passed, nil
}

// ProcessExpiredAttempts force-submits every timed attempt past its
// deadline; ran periodically so abandoned tabs still get graded.
func (s *QuizService) ProcessExpiredAttempts() error {
	rows, err := s.AttemptRepo.FindTimedInProgress()
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range rows {
		deadline := rows[i].StartedAt.Add(time.Duration(rows[i].TimeLimit) * time.Minute)
		if now.Before(deadline) {
			continue
		}
		quiz, err := s.QuizRepo.FindByID(rows[i].QuizID)
		if err != nil {
			continue
		}
		attempt := rows[i].QuizAttempt
		if _, err := s.finalize(quiz, &attempt, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *QuizService) loadAttempt(userID uint, attemptID string) (*model.QuizAttempt, *model.Quiz, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, nil, util.ErrAttemptNotFound
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, nil, util.ErrQuizNotFound
	}
	return attempt, quiz, nil
}

// ---- learner + admin quiz views and CRUD ----

// StudentAnswer hides the answer key from the learner payload.
type StudentAnswer struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type StudentQuestion struct {
	ID      uint               `json:"id"`
	Type    model.QuestionType `json:"type"`
	Content string             `json:"content"`
	Points  int                `json:"points"`
	Order   int                `json:"order"`
	Answers []StudentAnswer    `json:"answers,omitempty"`
}

type StudentQuiz struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	PassingScore int               `json:"passingScore"`
	TimeLimit    int               `json:"timeLimit"`
	Questions    []StudentQuestion `json:"questions"`
}

// GetForLearner returns the formation's quiz without isCorrect flags.
func (s *QuizService) GetForLearner(formationID uint) (*StudentQuiz, error) {
	quiz, err := s.QuizRepo.FindByFormation(formationID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	questions := make([]StudentQuestion, len(quiz.Questions))
	for i, q := range quiz.Questions {
		sq := StudentQuestion{
			ID:      q.ID,
			Type:    q.Type,
			Content: q.Content,
			Points:  q.EffectivePoints(),
			Order:   q.Order,
		}
		for j, a := range q.Answers {
			sq.Answers = append(sq.Answers, StudentAnswer{Index: j, Text: a.Text})
		}
		questions[i] = sq
	}

	return &StudentQuiz{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		PassingScore: quiz.PassingScore,
		TimeLimit:    quiz.TimeLimit,
		Questions:    questions,
	}, nil
}

type QuizAnswerRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuizQuestionRequest struct {
	Type        model.QuestionType  `json:"type" binding:"required"`
	Content     string              `json:"content" binding:"required"`
	Points      int                 `json:"points"`
	Order       int                 `json:"order"`
	Explanation string              `json:"explanation"`
	Answers     []QuizAnswerRequest `json:"answers"`
}

type QuizRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	PassingScore *int                   `json:"passingScore"`
	TimeLimit    *int                   `json:"timeLimit"`
	Questions    *[]QuizQuestionRequest `json:"questions"`
}

func buildQuestions(quizID uint, reqs []QuizQuestionRequest) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, len(reqs))
	for i, qr := range reqs {
		q := model.QuizQuestion{
			QuizID:      quizID,
			Type:        qr.Type,
			Content:     qr.Content,
			Points:      qr.Points,
			Order:       qr.Order,
			Explanation: qr.Explanation,
		}
		if q.Order == 0 {
			q.Order = i
		}
		for j, ar := range qr.Answers {
			q.Answers = append(q.Answers, model.QuizAnswer{
				Text:      ar.Text,
				IsCorrect: ar.IsCorrect,
				Order:     j,
			})
		}
		questions[i] = q
	}
	return questions
}

func (s *QuizService) Create(formationID uint, req QuizRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		FormationID:  formationID,
		PassingScore: 50,
	}
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.Questions != nil {
		quiz.Questions = buildQuestions(0, *req.Questions)
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindByID(quiz.ID)
}

func (s *QuizService) Update(quizID uint, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}

	if req.Questions != nil {
		// Replace the question list wholesale; attempts keep their own
		// graded copies so history survives.
		for i := range quiz.Questions {
			if err := s.QuizRepo.DeleteQuestion(quiz.Questions[i].ID); err != nil {
				return nil, err
			}
		}
		for _, q := range buildQuestions(quiz.ID, *req.Questions) {
			question := q
			if err := s.QuizRepo.CreateQuestion(&question); err != nil {
				return nil, err
			}
		}
		quiz.Questions = nil
	}

	if err := s.QuizRepo.Save(quiz); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindByID(quiz.ID)
}

func (s *QuizService) GetAdmin(quizID uint) (*model.Quiz, error) {
	return s.QuizRepo.FindByID(quizID)
}

func (s *QuizService) Delete(quizID uint) error {
	return s.QuizRepo.Delete(quizID)
}
