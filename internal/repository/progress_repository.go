package repository

import (
	"formation_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(formationID, userID, lessonID uint) (*model.LessonProgress, error) {
	var record model.LessonProgress
	err := r.DB.
		Where("formation_id = ? AND user_id = ? AND lesson_id = ?", formationID, userID, lessonID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByFormation returns every record of one learner in one formation,
// keyed by lesson ID. The sequential gate needs the whole formation's
// state at once; a lesson missing from the map has never been started.
func (r *ProgressRepository) FindByFormation(formationID, userID uint) (map[uint]*model.LessonProgress, error) {
	var records []model.LessonProgress
	err := r.DB.
		Where("formation_id = ? AND user_id = ?", formationID, userID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	byLesson := make(map[uint]*model.LessonProgress, len(records))
	for i := range records {
		byLesson[records[i].LessonID] = &records[i]
	}
	return byLesson, nil
}

// Upsert writes a merged record under the unique
// (formation, user, lesson) key, creating it on first observation.
func (r *ProgressRepository) Upsert(record *model.LessonProgress) error {
	tx := r.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing model.LessonProgress
	err := tx.
		Where("formation_id = ? AND user_id = ? AND lesson_id = ?",
			record.FormationID, record.UserID, record.LessonID).
		First(&existing).Error

	if err != nil {
		err = tx.Create(record).Error
	} else {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		err = tx.Save(record).Error
	}

	if err != nil {
		tx.Rollback()
		return err
	}

	tx.Commit()
	return nil
}
