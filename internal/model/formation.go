package model

// swagger:model Formation
type Formation struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	UniverseID  *uint     `gorm:"index;type:bigint unsigned" json:"universeId,omitempty"`
	Thumbnail   string    `gorm:"size:255" json:"thumbnail"`
	IsPublished bool      `gorm:"default:false" json:"isPublished"`
	Sections    []Section `gorm:"foreignKey:FormationID" json:"sections,omitempty"`
	Lessons     []Lesson  `gorm:"foreignKey:FormationID" json:"lessons,omitempty"`
	Quiz        *Quiz     `gorm:"foreignKey:FormationID" json:"quiz,omitempty"`
}

func (Formation) TableName() string {
	return "formations"
}

// Section optionally groups lessons inside a formation.
type Section struct {
	BaseModel
	FormationID uint   `gorm:"index;type:bigint unsigned" json:"formationId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Section) TableName() string {
	return "sections"
}
