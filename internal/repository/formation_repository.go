package repository

import (
	"formation_backend/internal/model"

	"gorm.io/gorm"
)

type FormationRepository struct {
	DB *gorm.DB
}

func NewFormationRepository(db *gorm.DB) *FormationRepository {
	return &FormationRepository{DB: db}
}

func (r *FormationRepository) Create(formation *model.Formation) error {
	return r.DB.Create(formation).Error
}

func (r *FormationRepository) FindByID(id uint) (*model.Formation, error) {
	var formation model.Formation
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sections.`order` ASC") }).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("lessons.`order` ASC") }).
		Preload("Quiz").
		First(&formation, id).Error
	if err != nil {
		return nil, err
	}
	return &formation, nil
}

func (r *FormationRepository) FindAll(universeID *uint) ([]model.Formation, error) {
	var formations []model.Formation
	q := r.DB.Order("id ASC")
	if universeID != nil {
		q = q.Where("universe_id = ?", *universeID)
	}
	err := q.Find(&formations).Error
	return formations, err
}

func (r *FormationRepository) Save(formation *model.Formation) error {
	return r.DB.Save(formation).Error
}

func (r *FormationRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("formation_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("formation_id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("formation_id = ?", id).Delete(&model.LessonProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Formation{}, id).Error
	})
}
