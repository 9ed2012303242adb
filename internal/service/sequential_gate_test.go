package service

import (
	"formation_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gateLesson(id uint, title string, t model.LessonType) model.Lesson {
	return model.Lesson{
		BaseModel: model.BaseModel{ID: id},
		Title:     title,
		Type:      t,
	}
}

func completedRecord(lessonID uint) *model.LessonProgress {
	return &model.LessonProgress{LessonID: lessonID, Progress: 100, Completed: true}
}

func TestFirstLessonAlwaysAccessible(t *testing.T) {
	lessons := []model.Lesson{gateLesson(1, "Intro", model.LessonVideo)}

	status := LessonUnlockStatus(lessons, 0, nil)
	assert.True(t, status.IsAccessible)
	assert.Equal(t, "Première leçon", status.Reason)
}

func TestGateRequiresAllEarlierLessons(t *testing.T) {
	lessons := []model.Lesson{
		gateLesson(1, "Intro", model.LessonVideo),
		gateLesson(2, "Chapitre 1", model.LessonPDF),
		gateLesson(3, "Chapitre 2", model.LessonSlides),
		gateLesson(4, "Conclusion", model.LessonVideo),
	}

	// Only lesson 1 and 3 done: lesson 4 stays locked even though the
	// immediately preceding lesson is complete.
	progress := map[uint]*model.LessonProgress{
		1: completedRecord(1),
		3: completedRecord(3),
	}

	assert.True(t, IsLessonAccessible(lessons, 1, progress))
	assert.False(t, IsLessonAccessible(lessons, 3, progress))

	status := LessonUnlockStatus(lessons, 3, progress)
	assert.False(t, status.IsAccessible)
	assert.Equal(t, "Terminez d'abord : Chapitre 1", status.Reason)
}

func TestGateReasonListsEveryBlockingLesson(t *testing.T) {
	lessons := []model.Lesson{
		gateLesson(1, "Intro", model.LessonVideo),
		gateLesson(2, "Chapitre 1", model.LessonPDF),
		gateLesson(3, "Conclusion", model.LessonVideo),
	}

	status := LessonUnlockStatus(lessons, 2, map[uint]*model.LessonProgress{})
	assert.False(t, status.IsAccessible)
	assert.Equal(t, "Terminez d'abord : Intro, Chapitre 1", status.Reason)
}

func TestGateFailsClosedOnMissingRecords(t *testing.T) {
	lessons := []model.Lesson{
		gateLesson(1, "Intro", model.LessonVideo),
		gateLesson(2, "Suite", model.LessonVideo),
	}

	// No record at all for lesson 1: treated as never started.
	assert.False(t, IsLessonAccessible(lessons, 1, nil))

	// An incomplete record blocks too.
	progress := map[uint]*model.LessonProgress{
		1: {LessonID: 1, Progress: 99, Completed: false},
	}
	assert.False(t, IsLessonAccessible(lessons, 1, progress))
}

func TestGateSkipsNonTrackableLessons(t *testing.T) {
	lessons := []model.Lesson{
		gateLesson(1, "Annexe", model.LessonOther),
		gateLesson(2, "Chapitre 1", model.LessonVideo),
	}

	// Lesson 1 can never accrue a record; it must not deadlock the gate.
	status := LessonUnlockStatus(lessons, 1, nil)
	assert.True(t, status.IsAccessible)
	assert.Equal(t, "Toutes les leçons précédentes sont terminées", status.Reason)
}

func TestButtonLabel(t *testing.T) {
	assert.Equal(t, "Commencer", ButtonLabel(nil))
	assert.Equal(t, "Commencer", ButtonLabel(&model.LessonProgress{Progress: 0}))
	assert.Equal(t, "Continuer", ButtonLabel(&model.LessonProgress{Progress: 40}))
	assert.Equal(t, "Terminée", ButtonLabel(&model.LessonProgress{Progress: 100, Completed: true}))
}
