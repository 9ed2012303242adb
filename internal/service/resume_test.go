package service

import (
	"formation_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideResumeThreshold(t *testing.T) {
	tests := []struct {
		name       string
		progress   int
		wantPrompt bool
	}{
		{"zero never prompts", 0, false},
		{"at threshold does not prompt", 5, false},
		{"just above threshold prompts", 6, true},
		{"deep into the media prompts", 80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &model.LessonProgress{TimeSpent: 90, Progress: tt.progress}
			decision := decideResume(model.LessonVideo, stored, false)
			assert.Equal(t, tt.wantPrompt, decision.ShouldPrompt)
		})
	}
}

func TestDecideResumeOnlyForTimeBasedMedia(t *testing.T) {
	stored := &model.LessonProgress{TimeSpent: 12, Progress: 60}

	assert.False(t, decideResume(model.LessonPDF, stored, false).ShouldPrompt)
	assert.False(t, decideResume(model.LessonSlides, stored, false).ShouldPrompt)
	assert.True(t, decideResume(model.LessonAudio, stored, false).ShouldPrompt)
}

func TestDecideResumeIsOneShot(t *testing.T) {
	stored := &model.LessonProgress{TimeSpent: 90, Progress: 50}

	first := decideResume(model.LessonVideo, stored, false)
	assert.True(t, first.ShouldPrompt)

	// Same session, player remounted: the flag is armed, no re-prompt,
	// but the resume position is still served.
	second := decideResume(model.LessonVideo, stored, true)
	assert.False(t, second.ShouldPrompt)
	assert.Equal(t, 90.0, second.ResumePosition)
}

func TestDecideResumeNoRecord(t *testing.T) {
	decision := decideResume(model.LessonVideo, nil, false)
	assert.False(t, decision.ShouldPrompt)
	assert.Zero(t, decision.ResumePosition)
}

func TestEstimateDuration(t *testing.T) {
	// 90 seconds watched at 50% implies a 180 second media.
	assert.Equal(t, 180.0, EstimateDuration(90, 50))
	assert.Equal(t, 120.0, EstimateDuration(120, 100))
	assert.Equal(t, 0.0, EstimateDuration(90, 0))
	assert.Equal(t, 0.0, EstimateDuration(90, -3))
}
