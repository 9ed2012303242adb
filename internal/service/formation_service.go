package service

import (
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
)

// FormationService covers the catalog: universes, formations, lessons,
// and the learner-facing formation view that stitches progress, gate
// decisions and quiz state together.
type FormationService struct {
	UniverseRepo  *repository.UniverseRepository
	FormationRepo *repository.FormationRepository
	LessonRepo    *repository.LessonRepository
	Progress      *ProgressService
	Quiz          *QuizService
}

func NewFormationService(
	universeRepo *repository.UniverseRepository,
	formationRepo *repository.FormationRepository,
	lessonRepo *repository.LessonRepository,
	progress *ProgressService,
	quiz *QuizService,
) *FormationService {
	return &FormationService{
		UniverseRepo:  universeRepo,
		FormationRepo: formationRepo,
		LessonRepo:    lessonRepo,
		Progress:      progress,
		Quiz:          quiz,
	}
}

// ---- learner view ----

// LessonView is one lesson as the learner sees it: content metadata
// plus the gate decision and the stored progress.
type LessonView struct {
	model.Lesson
	IsAccessible bool                  `json:"isAccessible"`
	UnlockReason string                `json:"unlockReason"`
	ButtonLabel  string                `json:"buttonLabel"`
	Progress     *model.LessonProgress `json:"progress,omitempty"`
}

// FormationView is the learner's formation page payload.
type FormationView struct {
	model.Formation
	LessonViews     []LessonView `json:"lessonViews"`
	CompletedCount  int          `json:"completedCount"`
	OverallProgress int          `json:"overallProgress"` // percent of trackable lessons completed
	AllComplete     bool         `json:"allComplete"`
	QuizPassed      bool         `json:"quizPassed"`
	IsFinished      bool         `json:"isFinished"` // all lessons complete and quiz passed (or absent)
}

// GetFormationForLearner assembles the formation with per-lesson gate
// decisions. The gate and the completion counters run on the same
// progress snapshot, so one request cannot see contradictory state.
func (s *FormationService) GetFormationForLearner(formationID, userID uint) (*FormationView, error) {
	formation, err := s.FormationRepo.FindByID(formationID)
	if err != nil {
		return nil, err
	}

	progress, err := s.Progress.GetFormationProgress(formationID, userID)
	if err != nil {
		return nil, err
	}

	view := &FormationView{
		Formation:   *formation,
		LessonViews: make([]LessonView, len(formation.Lessons)),
	}
	// Lessons are served through LessonViews only; the embedded copy
	// would leak asset URLs past the gate.
	view.Formation.Lessons = nil

	trackable := 0
	for i, lesson := range formation.Lessons {
		status := LessonUnlockStatus(formation.Lessons, i, progress)
		record := progress[lesson.ID]

		lv := LessonView{
			Lesson:       lesson,
			IsAccessible: status.IsAccessible,
			UnlockReason: status.Reason,
			ButtonLabel:  ButtonLabel(record),
			Progress:     record,
		}
		if !status.IsAccessible {
			// A locked lesson's asset URL is withheld; the gate would
			// be decorative if the client could deep-link around it.
			lv.URL = ""
		}
		view.LessonViews[i] = lv

		if lesson.Type.IsTrackable() {
			trackable++
			if record != nil && record.Completed {
				view.CompletedCount++
			}
		}
	}

	if trackable > 0 {
		view.OverallProgress = roundPercent(float64(view.CompletedCount) / float64(trackable) * 100)
	}
	view.AllComplete = view.CompletedCount == trackable

	passed, err := s.Quiz.HasPassed(userID, formationID)
	if err != nil {
		return nil, err
	}
	view.QuizPassed = passed
	view.IsFinished = view.AllComplete && (formation.Quiz == nil || passed)

	return view, nil
}

// CheckLessonAccess enforces the gate server-side before any asset or
// observation endpoint touches the lesson.
func (s *FormationService) CheckLessonAccess(formationID, userID, lessonID uint) (*model.Lesson, error) {
	lessons, err := s.LessonRepo.FindByFormation(formationID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range lessons {
		if lessons[i].ID == lessonID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, util.ErrLessonNotInFormation
	}

	progress, err := s.Progress.GetFormationProgress(formationID, userID)
	if err != nil {
		return nil, err
	}
	if !IsLessonAccessible(lessons, index, progress) {
		return nil, util.ErrLessonLocked
	}
	return &lessons[index], nil
}

// ---- universe CRUD ----

type UniverseRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Order *int    `json:"order"`
}

func (s *FormationService) ListUniverses() ([]model.Universe, error) {
	return s.UniverseRepo.FindAll()
}

func (s *FormationService) GetUniverse(id uint) (*model.Universe, error) {
	return s.UniverseRepo.FindByID(id)
}

func (s *FormationService) CreateUniverse(req UniverseRequest) (*model.Universe, error) {
	universe := &model.Universe{}
	applyUniverseRequest(universe, req)
	if err := s.UniverseRepo.Create(universe); err != nil {
		return nil, err
	}
	return universe, nil
}

func (s *FormationService) UpdateUniverse(id uint, req UniverseRequest) (*model.Universe, error) {
	universe, err := s.UniverseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	applyUniverseRequest(universe, req)
	if err := s.UniverseRepo.Save(universe); err != nil {
		return nil, err
	}
	return universe, nil
}

func (s *FormationService) DeleteUniverse(id uint) error {
	return s.UniverseRepo.Delete(id)
}

func applyUniverseRequest(universe *model.Universe, req UniverseRequest) {
	if req.Name != nil {
		universe.Name = *req.Name
	}
	if req.Color != nil {
		universe.Color = *req.Color
	}
	if req.Order != nil {
		universe.Order = *req.Order
	}
}

// ---- formation CRUD ----

type FormationRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	UniverseID  *uint   `json:"universeId"`
	Thumbnail   *string `json:"thumbnail"`
	IsPublished *bool   `json:"isPublished"`
}

func (s *FormationService) ListFormations(universeID *uint) ([]model.Formation, error) {
	return s.FormationRepo.FindAll(universeID)
}

func (s *FormationService) GetFormation(id uint) (*model.Formation, error) {
	return s.FormationRepo.FindByID(id)
}

func (s *FormationService) CreateFormation(req FormationRequest) (*model.Formation, error) {
	formation := &model.Formation{}
	applyFormationRequest(formation, req)
	if err := s.FormationRepo.Create(formation); err != nil {
		return nil, err
	}
	return formation, nil
}

func (s *FormationService) UpdateFormation(id uint, req FormationRequest) (*model.Formation, error) {
	formation, err := s.FormationRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	applyFormationRequest(formation, req)
	if err := s.FormationRepo.Save(formation); err != nil {
		return nil, err
	}
	return formation, nil
}

func (s *FormationService) DeleteFormation(id uint) error {
	return s.FormationRepo.Delete(id)
}

func applyFormationRequest(formation *model.Formation, req FormationRequest) {
	if req.Title != nil {
		formation.Title = *req.Title
	}
	if req.Description != nil {
		formation.Description = *req.Description
	}
	if req.UniverseID != nil {
		formation.UniverseID = req.UniverseID
	}
	if req.Thumbnail != nil {
		formation.Thumbnail = *req.Thumbnail
	}
	if req.IsPublished != nil {
		formation.IsPublished = *req.IsPublished
	}
}

// ---- lesson CRUD ----

type LessonRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Type        *model.LessonType `json:"type"`
	SectionID   *uint             `json:"sectionId"`
	Order       *int              `json:"order"`
	URL         *string           `json:"url"`
	TotalPages  *int              `json:"totalPages"`
	TotalSlides *int              `json:"totalSlides"`
	Duration    *float64          `json:"duration"`
}

func (s *FormationService) CreateLesson(formationID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.FormationRepo.FindByID(formationID); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{FormationID: formationID, Type: model.LessonOther}
	applyLessonRequest(lesson, req)

	if req.Order == nil {
		// Append at the end of the sequence.
		existing, err := s.LessonRepo.FindByFormation(formationID)
		if err != nil {
			return nil, err
		}
		lesson.Order = len(existing)
	}

	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *FormationService) UpdateLesson(lessonID uint, req LessonRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}
	applyLessonRequest(lesson, req)
	if err := s.LessonRepo.Save(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *FormationService) DeleteLesson(lessonID uint) error {
	return s.LessonRepo.Delete(lessonID)
}

func (s *FormationService) ReorderLessons(formationID uint, lessonIDs []uint) error {
	return s.LessonRepo.Reorder(formationID, lessonIDs)
}

func applyLessonRequest(lesson *model.Lesson, req LessonRequest) {
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.Type != nil {
		lesson.Type = *req.Type
	}
	if req.SectionID != nil {
		lesson.SectionID = req.SectionID
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.URL != nil {
		lesson.URL = *req.URL
	}
	if req.TotalPages != nil {
		lesson.TotalPages = *req.TotalPages
	}
	if req.TotalSlides != nil {
		lesson.TotalSlides = *req.TotalSlides
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}
}
