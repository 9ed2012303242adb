package repository

import (
	"formation_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindByFormation returns the formation's lessons in curriculum order.
// The sequential gate depends on this ordering.
func (r *LessonRepository) FindByFormation(formationID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("formation_id = ?", formationID).Order("`order` ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) Save(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

// Reorder rewrites the order column for the given lesson IDs, in the
// order they are listed.
func (r *LessonRepository) Reorder(formationID uint, lessonIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range lessonIDs {
			err := tx.Model(&model.Lesson{}).
				Where("id = ? AND formation_id = ?", id, formationID).
				Update("order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
