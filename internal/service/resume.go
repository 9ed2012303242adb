package service

import "formation_backend/internal/model"

// resumePromptThreshold is the materiality bar: at or below this
// percent the player silently starts from zero instead of interrupting
// the learner with a prompt. Strictly greater-than: 5% does not
// prompt, 6% does.
const resumePromptThreshold = 5

// ResumeDecision tells the player what to do when a time-based lesson
// is (re)opened.
type ResumeDecision struct {
	ShouldPrompt      bool    `json:"shouldPrompt"`
	ResumePosition    float64 `json:"resumePosition"`    // seconds to seek to on resume
	Progress          int     `json:"progress"`          // stored percent, for the prompt text
	EstimatedDuration float64 `json:"estimatedDuration"` // display-only, until the element reports the real one
}

// decideResume is the pure rule: prompt only for time-based media, only
// above the materiality threshold, and only once per viewing session.
// Restart never touches the stored record; the non-regression merge
// keeps the high-water mark regardless.
func decideResume(lessonType model.LessonType, stored *model.LessonProgress, alreadyPrompted bool) ResumeDecision {
	if !lessonType.IsTimeBased() || stored == nil {
		return ResumeDecision{}
	}

	decision := ResumeDecision{
		ResumePosition:    stored.TimeSpent,
		Progress:          stored.Progress,
		EstimatedDuration: EstimateDuration(stored.TimeSpent, stored.Progress),
	}
	decision.ShouldPrompt = stored.Progress > resumePromptThreshold && !alreadyPrompted
	return decision
}

// EstimateDuration approximates the media's total length from the
// stored record, for display before the element has loaded metadata:
// timeSpent / (progress / 100).
func EstimateDuration(timeSpent float64, progress int) float64 {
	if progress <= 0 {
		return 0
	}
	return timeSpent / (float64(progress) / 100)
}
