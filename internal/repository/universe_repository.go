package repository

import (
	"formation_backend/internal/model"

	"gorm.io/gorm"
)

type UniverseRepository struct {
	DB *gorm.DB
}

func NewUniverseRepository(db *gorm.DB) *UniverseRepository {
	return &UniverseRepository{DB: db}
}

func (r *UniverseRepository) Create(universe *model.Universe) error {
	return r.DB.Create(universe).Error
}

func (r *UniverseRepository) FindByID(id uint) (*model.Universe, error) {
	var universe model.Universe
	err := r.DB.Preload("Formations").First(&universe, id).Error
	if err != nil {
		return nil, err
	}
	return &universe, nil
}

func (r *UniverseRepository) FindAll() ([]model.Universe, error) {
	var universes []model.Universe
	err := r.DB.Order("`order` ASC").Find(&universes).Error
	return universes, err
}

func (r *UniverseRepository) Save(universe *model.Universe) error {
	return r.DB.Save(universe).Error
}

func (r *UniverseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Universe{}, id).Error
}
