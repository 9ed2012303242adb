package model

// Universe is a folder grouping formations in the admin catalogue.
// swagger:model Universe
type Universe struct {
	BaseModel
	Name       string      `gorm:"size:255;not null" json:"name"`
	Color      string      `gorm:"size:20" json:"color"`
	Order      int         `gorm:"default:0" json:"order"`
	Formations []Formation `gorm:"foreignKey:UniverseID" json:"formations,omitempty"`
}

func (Universe) TableName() string {
	return "universes"
}
