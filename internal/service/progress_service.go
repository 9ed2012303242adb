package service

import (
	"context"
	"encoding/json"
	"fmt"
	"formation_backend/internal/config"
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
	"formation_backend/pkg/logger"
	"formation_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	progressKeyPrefix     = "lesson_progress:"
	resumePromptKeyPrefix = "resume_prompted:"
)

type progressKey struct {
	FormationID uint
	UserID      uint
	LessonID    uint
}

// ProgressService owns the progress store. Observations arrive every
// ~2 seconds while a lesson is open, so merged records are kept in an
// in-memory write-back cache (mirrored to redis for cross-instance
// reads) and only flushed to the database on a ticker and on the
// explicit close beacon, never once per observation.
type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	LessonRepo   *repository.LessonRepository
	Redis        *redis.Client

	mu    sync.Mutex
	cache map[progressKey]*model.LessonProgress
	dirty map[progressKey]bool

	flushInterval time.Duration
	resumeFlagTTL time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

func NewProgressService(progressRepo *repository.ProgressRepository, lessonRepo *repository.LessonRepository, rdb *redis.Client, cfg *config.Config) *ProgressService {
	flushInterval := 5 * time.Second
	resumeFlagTTL := 30 * time.Minute
	if cfg != nil {
		if cfg.Progress.FlushIntervalSeconds > 0 {
			flushInterval = time.Duration(cfg.Progress.FlushIntervalSeconds) * time.Second
		}
		if cfg.Progress.ResumeFlagTTLMinutes > 0 {
			resumeFlagTTL = time.Duration(cfg.Progress.ResumeFlagTTLMinutes) * time.Minute
		}
	}

	return &ProgressService{
		ProgressRepo:  progressRepo,
		LessonRepo:    lessonRepo,
		Redis:         rdb,
		cache:         make(map[progressKey]*model.LessonProgress),
		dirty:         make(map[progressKey]bool),
		flushInterval: flushInterval,
		resumeFlagTTL: resumeFlagTTL,
		stop:          make(chan struct{}),
	}
}

// mergeRecord applies the non-regression rule: the stored percent is a
// floor and only ever rises, while TimeSpent and LastUpdated always
// take the latest observation so resume seeks to where the learner
// actually is: a rewind must not look like lost progress, but it must
// reposition playback. Completed is derived, never set independently.
func mergeRecord(existing *model.LessonProgress, key progressKey, m Measurement, now time.Time) *model.LessonProgress {
	merged := &model.LessonProgress{
		FormationID: key.FormationID,
		UserID:      key.UserID,
		LessonID:    key.LessonID,
		TimeSpent:   m.TimeSpent,
		Progress:    m.Progress,
		LastUpdated: now,
	}
	if existing != nil {
		merged.ID = existing.ID
		merged.CreatedAt = existing.CreatedAt
		if existing.Progress > merged.Progress {
			merged.Progress = existing.Progress
		}
	}
	merged.Completed = merged.Progress >= 100
	return merged
}

// Record runs one observation through the calculator and the
// non-regression merge. A not-ready or invalid observation returns
// (nil, nil): nothing is recorded and nothing is surfaced; the caller
// retries on the next tick.
func (s *ProgressService) Record(formationID, userID, lessonID uint, obs Observation) (*model.LessonProgress, error) {
	lessons, err := s.LessonRepo.FindByFormation(formationID)
	if err != nil {
		return nil, err
	}
	index := -1
	for i := range lessons {
		if lessons[i].ID == lessonID {
			index = i
			break
		}
	}
	if index < 0 {
		if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
			return nil, util.ErrLessonNotFound
		}
		return nil, util.ErrLessonNotInFormation
	}
	lesson := &lessons[index]
	if !obs.Matches(lesson.Type) {
		return nil, fmt.Errorf("observation kind does not match lesson type %s", lesson.Type)
	}

	// The gate applies to the write path too: an observation aimed at a
	// locked lesson must not be able to complete it.
	snapshot, err := s.GetFormationProgress(formationID, userID)
	if err != nil {
		return nil, err
	}
	if !IsLessonAccessible(lessons, index, snapshot) {
		return nil, util.ErrLessonLocked
	}

	m, ok := obs.Measure()
	if !ok {
		return nil, nil
	}

	key := progressKey{FormationID: formationID, UserID: userID, LessonID: lessonID}

	s.mu.Lock()
	existing, err := s.loadLocked(key)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	merged := mergeRecord(existing, key, m, time.Now())
	s.cache[key] = merged
	s.dirty[key] = true
	s.mu.Unlock()

	s.mirrorToRedis(key, merged)

	out := *merged
	return &out, nil
}

// loadLocked resolves the current record for a key: cache first (it is
// always at least as fresh as the database), then the database.
// Returns nil when the lesson has never been observed.
func (s *ProgressService) loadLocked(key progressKey) (*model.LessonProgress, error) {
	if record, ok := s.cache[key]; ok {
		return record, nil
	}

	record, err := s.ProgressRepo.Find(key.FormationID, key.UserID, key.LessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	s.cache[key] = record
	return record, nil
}

// Get returns the stored record for one lesson, or nil when the lesson
// has never been observed.
func (s *ProgressService) Get(formationID, userID, lessonID uint) (*model.LessonProgress, error) {
	key := progressKey{FormationID: formationID, UserID: userID, LessonID: lessonID}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.loadLocked(key)
	if err != nil || record == nil {
		return nil, err
	}
	out := *record
	return &out, nil
}

// GetFormationProgress returns every record of one learner in one
// formation keyed by lesson ID, with unflushed cache entries overlaid
// on top of the persisted state.
func (s *ProgressService) GetFormationProgress(formationID, userID uint) (map[uint]*model.LessonProgress, error) {
	records, err := s.ProgressRepo.FindByFormation(formationID, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for key, record := range s.cache {
		if key.FormationID == formationID && key.UserID == userID {
			out := *record
			records[key.LessonID] = &out
		}
	}
	s.mu.Unlock()

	return records, nil
}

// Flush writes every dirty record to the database. Failed keys stay
// dirty and are retried on the next tick.
func (s *ProgressService) Flush(trigger string) {
	s.flushKeys(nil, trigger)
}

// FlushFormation flushes only one learner's records in one formation;
// this is the close/navigation beacon, so the last seconds of a session
// are not lost to the debounce window.
func (s *ProgressService) FlushFormation(formationID, userID uint) {
	match := func(key progressKey) bool {
		return key.FormationID == formationID && key.UserID == userID
	}
	s.flushKeys(match, "close")
}

func (s *ProgressService) flushKeys(match func(progressKey) bool, trigger string) {
	s.mu.Lock()
	pending := make(map[progressKey]*model.LessonProgress)
	for key := range s.dirty {
		if match != nil && !match(key) {
			continue
		}
		record := *s.cache[key]
		pending[key] = &record
		delete(s.dirty, key)
	}
	s.mu.Unlock()

	for key, record := range pending {
		if err := s.ProgressRepo.Upsert(record); err != nil {
			logger.Log.Error("progress flush failed",
				zap.Uint("lessonId", key.LessonID),
				zap.Uint("userId", key.UserID),
				zap.Error(err))
			s.mu.Lock()
			s.dirty[key] = true
			s.mu.Unlock()
			continue
		}
		s.mu.Lock()
		if cached, ok := s.cache[key]; ok && cached.ID == 0 {
			cached.ID = record.ID
		}
		s.mu.Unlock()
		monitoring.ProgressFlushCounter.WithLabelValues(trigger).Inc()
	}
}

// GetResumeDecision decides resume-vs-restart for a time-based lesson.
// The one-shot prompt flag lives in redis with a session TTL: serving a
// positive decision arms the flag, so an internal player remount does
// not re-prompt.
func (s *ProgressService) GetResumeDecision(formationID, userID, lessonID uint) (*ResumeDecision, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	stored, err := s.Get(formationID, userID, lessonID)
	if err != nil {
		return nil, err
	}

	decision := decideResume(lesson.Type, stored, s.resumeAlreadyPrompted(userID, lessonID))
	if decision.ShouldPrompt {
		s.markResumePrompted(userID, lessonID)
	}
	return &decision, nil
}

func (s *ProgressService) resumeAlreadyPrompted(userID, lessonID uint) bool {
	if s.Redis == nil {
		return false
	}
	key := fmt.Sprintf("%s%d:%d", resumePromptKeyPrefix, userID, lessonID)
	n, err := s.Redis.Exists(context.Background(), key).Result()
	return err == nil && n > 0
}

func (s *ProgressService) markResumePrompted(userID, lessonID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d:%d", resumePromptKeyPrefix, userID, lessonID)
	if err := s.Redis.Set(context.Background(), key, 1, s.resumeFlagTTL).Err(); err != nil {
		logger.Log.Warn("resume flag write failed", zap.Error(err))
	}
}

func (s *ProgressService) mirrorToRedis(key progressKey, record *model.LessonProgress) {
	if s.Redis == nil {
		return
	}
	redisKey := fmt.Sprintf("%s%d:%d:%d", progressKeyPrefix, key.FormationID, key.UserID, key.LessonID)
	payload, _ := json.Marshal(record)
	if err := s.Redis.Set(context.Background(), redisKey, payload, 24*time.Hour).Err(); err != nil {
		logger.Log.Warn("progress redis mirror failed", zap.Error(err))
	}
}

// Run starts the debounced flush ticker; call Stop on shutdown for the
// final flush.
func (s *ProgressService) Run() {
	go func() {
		ticker := time.NewTicker(s.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Flush("tick")
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the ticker and flushes everything still dirty.
func (s *ProgressService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.Flush("close")
	})
}
