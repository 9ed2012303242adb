package model

import "time"

// LessonProgress is the persisted progress record for one learner/lesson
// pair inside a formation. Progress is an integer percent and never
// decreases for a given key; TimeSpent is a media-kind-dependent unit
// (page number, slide index or elapsed seconds) and always tracks the
// most recent observation so resume can seek to it even after a rewind.
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	FormationID uint      `gorm:"index:idx_formation_user_lesson,unique;type:bigint unsigned" json:"formationId"`
	UserID      uint      `gorm:"index:idx_formation_user_lesson,unique;type:bigint unsigned" json:"userId"`
	LessonID    uint      `gorm:"index:idx_formation_user_lesson,unique;type:bigint unsigned" json:"lessonId"`
	TimeSpent   float64   `gorm:"default:0" json:"timeSpent"`
	Progress    int       `gorm:"default:0" json:"progress"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
