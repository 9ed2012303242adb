package service

import (
	"formation_backend/internal/model"
	"math"
)

// Measurement is the unit-bearing result of one media observation:
// TimeSpent in the media kind's own unit (page number, slide index,
// elapsed seconds) and Progress as an integer percent in [0, 100].
type Measurement struct {
	TimeSpent float64
	Progress  int
}

// Observation is one raw reading from a media viewer. Each media kind
// has its own variant; Measure returns ok=false when the observation
// is not ready (asset still loading) or invalid (NaN, negative,
// zero total), in which case no record must be produced and the caller
// simply waits for the next observation.
type Observation interface {
	Measure() (Measurement, bool)
	Matches(t model.LessonType) bool
}

// PagedObservation is a 1-based page position in a paged document.
type PagedObservation struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

func (o PagedObservation) Measure() (Measurement, bool) {
	if o.TotalPages < 1 || o.CurrentPage < 1 {
		return Measurement{}, false
	}
	return Measurement{
		TimeSpent: float64(o.CurrentPage),
		Progress:  roundPercent(float64(o.CurrentPage) / float64(o.TotalPages) * 100),
	}, true
}

func (o PagedObservation) Matches(t model.LessonType) bool {
	return t == model.LessonPDF
}

// SlideObservation is a 0-based slide position in a deck. The deck only
// reaches 100% through an explicit end-of-deck observation
// (currentSlide == totalSlides).
type SlideObservation struct {
	CurrentSlide int `json:"currentSlide"`
	TotalSlides  int `json:"totalSlides"`
}

func (o SlideObservation) Measure() (Measurement, bool) {
	if o.TotalSlides < 1 || o.CurrentSlide < 0 {
		return Measurement{}, false
	}
	return Measurement{
		TimeSpent: float64(o.CurrentSlide),
		Progress:  roundPercent(float64(o.CurrentSlide) / float64(o.TotalSlides) * 100),
	}, true
}

func (o SlideObservation) Matches(t model.LessonType) bool {
	return t == model.LessonSlides
}

// TimeObservation is a playback position in seconds. Duration must be
// the authoritative value from the media element; until it is known the
// observation is not ready and nothing is recorded.
type TimeObservation struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

func (o TimeObservation) Measure() (Measurement, bool) {
	if o.Duration <= 0 || o.CurrentTime < 0 {
		return Measurement{}, false
	}
	if math.IsNaN(o.CurrentTime) || math.IsNaN(o.Duration) ||
		math.IsInf(o.CurrentTime, 0) || math.IsInf(o.Duration, 0) {
		return Measurement{}, false
	}
	return Measurement{
		TimeSpent: o.CurrentTime,
		Progress:  roundPercent(o.CurrentTime / o.Duration * 100),
	}, true
}

func (o TimeObservation) Matches(t model.LessonType) bool {
	return t == model.LessonVideo || t == model.LessonAudio
}

// roundPercent rounds to the nearest integer and clamps to [0, 100];
// playback positions can exceed the duration by a frame's worth of
// floating point jitter and must read as 100, never above.
func roundPercent(v float64) int {
	p := int(math.Round(v))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
