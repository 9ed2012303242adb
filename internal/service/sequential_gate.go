package service

import (
	"formation_backend/internal/model"
	"strings"
)

// UnlockStatus is what the learner UI renders next to a locked lesson.
type UnlockStatus struct {
	IsAccessible bool   `json:"isAccessible"`
	Reason       string `json:"reason"`
}

const (
	reasonFirstLesson     = "Première leçon"
	reasonAllPrevComplete = "Toutes les leçons précédentes sont terminées"
	reasonLockedPrefix    = "Terminez d'abord : "
)

// blockingLessons returns the strictly earlier lessons that are not
// completed. A lesson missing from the progress map counts as not
// completed: the absence of a record is indistinguishable from "never
// started", so the gate fails closed. Non-trackable lessons can never
// accrue a record and are skipped, which is why the gate reads the
// lesson type at all.
func blockingLessons(lessons []model.Lesson, index int, progress map[uint]*model.LessonProgress) []model.Lesson {
	var blocking []model.Lesson
	for j := 0; j < index && j < len(lessons); j++ {
		if !lessons[j].Type.IsTrackable() {
			continue
		}
		record, ok := progress[lessons[j].ID]
		if !ok || !record.Completed {
			blocking = append(blocking, lessons[j])
		}
	}
	return blocking
}

// IsLessonAccessible applies the sequential gate: the lesson at index
// is open only once every strictly earlier lesson is completed. This is
// deliberately stricter than "previous lesson complete"; the order is
// a hard curriculum sequence.
func IsLessonAccessible(lessons []model.Lesson, index int, progress map[uint]*model.LessonProgress) bool {
	if index <= 0 {
		return true
	}
	return len(blockingLessons(lessons, index, progress)) == 0
}

// LessonUnlockStatus returns the gate decision together with the
// learner-facing reason. When locked, the reason names every blocking
// lesson, not just the first.
func LessonUnlockStatus(lessons []model.Lesson, index int, progress map[uint]*model.LessonProgress) UnlockStatus {
	if index <= 0 {
		return UnlockStatus{IsAccessible: true, Reason: reasonFirstLesson}
	}

	blocking := blockingLessons(lessons, index, progress)
	if len(blocking) == 0 {
		return UnlockStatus{IsAccessible: true, Reason: reasonAllPrevComplete}
	}

	titles := make([]string, len(blocking))
	for i, lesson := range blocking {
		titles[i] = lesson.Title
	}
	return UnlockStatus{IsAccessible: false, Reason: reasonLockedPrefix + strings.Join(titles, ", ")}
}

// ButtonLabel derives the learner action label from the stored record.
func ButtonLabel(record *model.LessonProgress) string {
	switch {
	case record == nil || record.Progress == 0:
		return "Commencer"
	case record.Completed:
		return "Terminée"
	default:
		return "Continuer"
	}
}
