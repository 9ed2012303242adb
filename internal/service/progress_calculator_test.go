package service

import (
	"formation_backend/internal/model"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagedObservationMeasure(t *testing.T) {
	tests := []struct {
		name         string
		obs          PagedObservation
		wantOK       bool
		wantProgress int
		wantSpent    float64
	}{
		{"first page", PagedObservation{CurrentPage: 1, TotalPages: 10}, true, 10, 1},
		{"last page", PagedObservation{CurrentPage: 10, TotalPages: 10}, true, 100, 10},
		{"middle rounds", PagedObservation{CurrentPage: 1, TotalPages: 3}, true, 33, 1},
		{"two thirds rounds up", PagedObservation{CurrentPage: 2, TotalPages: 3}, true, 67, 2},
		{"single page doc", PagedObservation{CurrentPage: 1, TotalPages: 1}, true, 100, 1},
		{"zero total not ready", PagedObservation{CurrentPage: 1, TotalPages: 0}, false, 0, 0},
		{"zero page not ready", PagedObservation{CurrentPage: 0, TotalPages: 10}, false, 0, 0},
		{"negative total", PagedObservation{CurrentPage: 1, TotalPages: -4}, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.obs.Measure()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantProgress, m.Progress)
				assert.Equal(t, tt.wantSpent, m.TimeSpent)
			}
		})
	}
}

func TestSlideObservationMeasure(t *testing.T) {
	tests := []struct {
		name         string
		obs          SlideObservation
		wantOK       bool
		wantProgress int
	}{
		{"first slide is zero percent", SlideObservation{CurrentSlide: 0, TotalSlides: 10}, true, 0},
		{"last slide index not yet complete", SlideObservation{CurrentSlide: 9, TotalSlides: 10}, true, 90},
		{"end of deck completes", SlideObservation{CurrentSlide: 10, TotalSlides: 10}, true, 100},
		{"zero total not ready", SlideObservation{CurrentSlide: 2, TotalSlides: 0}, false, 0},
		{"negative slide not ready", SlideObservation{CurrentSlide: -1, TotalSlides: 10}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.obs.Measure()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantProgress, m.Progress)
			}
		})
	}
}

func TestTimeObservationMeasure(t *testing.T) {
	tests := []struct {
		name         string
		obs          TimeObservation
		wantOK       bool
		wantProgress int
	}{
		{"half played", TimeObservation{CurrentTime: 60, Duration: 120}, true, 50},
		{"start", TimeObservation{CurrentTime: 0, Duration: 120}, true, 0},
		{"finished", TimeObservation{CurrentTime: 120, Duration: 120}, true, 100},
		{"past duration clamps", TimeObservation{CurrentTime: 121.4, Duration: 120}, true, 100},
		{"duration unknown", TimeObservation{CurrentTime: 10, Duration: 0}, false, 0},
		{"negative duration", TimeObservation{CurrentTime: 10, Duration: -5}, false, 0},
		{"negative position", TimeObservation{CurrentTime: -1, Duration: 120}, false, 0},
		{"NaN position", TimeObservation{CurrentTime: math.NaN(), Duration: 120}, false, 0},
		{"infinite duration", TimeObservation{CurrentTime: 10, Duration: math.Inf(1)}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.obs.Measure()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantProgress, m.Progress)
			}
		})
	}
}

func TestObservationMatchesLessonType(t *testing.T) {
	assert.True(t, PagedObservation{}.Matches(model.LessonPDF))
	assert.False(t, PagedObservation{}.Matches(model.LessonVideo))

	assert.True(t, SlideObservation{}.Matches(model.LessonSlides))
	assert.False(t, SlideObservation{}.Matches(model.LessonPDF))

	assert.True(t, TimeObservation{}.Matches(model.LessonVideo))
	assert.True(t, TimeObservation{}.Matches(model.LessonAudio))
	assert.False(t, TimeObservation{}.Matches(model.LessonSlides))
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0, roundPercent(-3))
	assert.Equal(t, 0, roundPercent(0.4))
	assert.Equal(t, 1, roundPercent(0.5))
	assert.Equal(t, 33, roundPercent(100.0/3))
	assert.Equal(t, 100, roundPercent(99.7))
	assert.Equal(t, 100, roundPercent(104))
}
