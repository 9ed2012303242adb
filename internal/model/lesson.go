package model

type LessonType string

const (
	LessonPDF    LessonType = "pdf"
	LessonSlides LessonType = "slides"
	LessonVideo  LessonType = "video"
	LessonAudio  LessonType = "audio"
	LessonOther  LessonType = "other"
)

// IsTimeBased reports whether progress for this lesson type is measured
// in elapsed playback seconds.
func (t LessonType) IsTimeBased() bool {
	return t == LessonVideo || t == LessonAudio
}

// IsTrackable reports whether the progress engine records anything for
// this lesson type.
func (t LessonType) IsTrackable() bool {
	switch t {
	case LessonPDF, LessonSlides, LessonVideo, LessonAudio:
		return true
	}
	return false
}

// Lesson is one unit of content inside a formation. The media totals
// (TotalPages, TotalSlides, Duration) are only authoritative once the
// asset has been uploaded and probed; viewers may discover them earlier.
// swagger:model Lesson
type Lesson struct {
	BaseModel
	FormationID uint       `gorm:"index;type:bigint unsigned" json:"formationId"`
	SectionID   *uint      `gorm:"index;type:bigint unsigned" json:"sectionId,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        LessonType `gorm:"size:20;not null" json:"type"`
	Order       int        `gorm:"default:0" json:"order"`
	URL         string     `gorm:"size:255" json:"url"`
	TotalPages  int        `gorm:"default:0" json:"totalPages,omitempty"`
	TotalSlides int        `gorm:"default:0" json:"totalSlides,omitempty"`
	Duration    float64    `gorm:"default:0" json:"duration,omitempty"` // seconds
	Size        int64      `gorm:"default:0" json:"size,omitempty"`     // bytes
	Format      string     `gorm:"size:50" json:"format,omitempty"`
	Thumbnail   string     `gorm:"size:255" json:"thumbnail,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
