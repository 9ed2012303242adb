package service

import (
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
	"formation_backend/pkg/database"
	"formation_backend/pkg/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestProgressService(t *testing.T) (*ProgressService, *repository.LessonRepository, *repository.ProgressRepository) {
	t.Helper()

	db := newTestDB(t)
	progressRepo := repository.NewProgressRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	svc := NewProgressService(progressRepo, lessonRepo, nil, nil)
	return svc, lessonRepo, progressRepo
}

func createVideoLesson(t *testing.T, lessonRepo *repository.LessonRepository, formationID uint) *model.Lesson {
	t.Helper()

	lesson := &model.Lesson{
		FormationID: formationID,
		Title:       "Introduction",
		Type:        model.LessonVideo,
		Duration:    120,
	}
	require.NoError(t, lessonRepo.Create(lesson))
	return lesson
}

func TestRecordCreatesAndMerges(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	record, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 60, Duration: 120})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 50, record.Progress)
	assert.Equal(t, 60.0, record.TimeSpent)
	assert.False(t, record.Completed)

	// Progress advances.
	record, err = svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 96, Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, 80, record.Progress)
}

func TestRecordNeverRegresses(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 96, Duration: 120})
	require.NoError(t, err)

	// Rewind to the start: percent holds, position follows the rewind.
	record, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 12, Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, 80, record.Progress)
	assert.Equal(t, 12.0, record.TimeSpent)
	assert.False(t, record.Completed)
}

func TestRecordCompletionIsDerivedAndSticky(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	record, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 120, Duration: 120})
	require.NoError(t, err)
	assert.True(t, record.Completed)

	// A replay from the start must not un-complete the lesson.
	record, err = svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 3, Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, 100, record.Progress)
	assert.True(t, record.Completed)
}

func TestRecordNotReadyObservationRecordsNothing(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	// Duration not yet known: silently dropped.
	record, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 10, Duration: 0})
	require.NoError(t, err)
	assert.Nil(t, record)

	stored, err := svc.Get(1, 7, lesson.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRecordRejectsMismatchedObservationKind(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(1, 7, lesson.ID, PagedObservation{CurrentPage: 1, TotalPages: 10})
	assert.Error(t, err)
}

func TestRecordRejectsLockedLesson(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	first := createVideoLesson(t, lessonRepo, 1)
	second := &model.Lesson{
		FormationID: 1,
		Title:       "Suite",
		Type:        model.LessonVideo,
		Order:       1,
		Duration:    120,
	}
	require.NoError(t, lessonRepo.Create(second))

	// An observation aimed straight at a locked lesson is refused; the
	// write path honors the same gate as the formation view.
	_, err := svc.Record(1, 7, second.ID, TimeObservation{CurrentTime: 120, Duration: 120})
	assert.ErrorIs(t, err, util.ErrLessonLocked)

	stored, err := svc.Get(1, 7, second.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// Completing the first lesson opens the second for writes.
	_, err = svc.Record(1, 7, first.ID, TimeObservation{CurrentTime: 120, Duration: 120})
	require.NoError(t, err)

	record, err := svc.Record(1, 7, second.ID, TimeObservation{CurrentTime: 60, Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, 50, record.Progress)
}

func TestRecordRejectsForeignLesson(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(2, 7, lesson.ID, TimeObservation{CurrentTime: 10, Duration: 120})
	assert.Error(t, err)
}

func TestFlushPersistsDirtyRecords(t *testing.T) {
	svc, lessonRepo, progressRepo := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 60, Duration: 120})
	require.NoError(t, err)

	// Nothing on disk before the flush.
	_, err = progressRepo.Find(1, 7, lesson.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	svc.Flush("tick")

	stored, err := progressRepo.Find(1, 7, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Progress)
	assert.Equal(t, 60.0, stored.TimeSpent)

	// Second flush is a no-op, the dirty set was drained.
	svc.Flush("tick")
	again, err := progressRepo.Find(1, 7, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, again.ID)
}

func TestFlushFormationOnlyTouchesOneLearner(t *testing.T) {
	svc, lessonRepo, progressRepo := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)
	other := createVideoLesson(t, lessonRepo, 2)

	_, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 60, Duration: 120})
	require.NoError(t, err)
	_, err = svc.Record(2, 7, other.ID, TimeObservation{CurrentTime: 30, Duration: 120})
	require.NoError(t, err)

	svc.FlushFormation(1, 7)

	_, err = progressRepo.Find(1, 7, lesson.ID)
	assert.NoError(t, err)
	_, err = progressRepo.Find(2, 7, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetFormationProgressOverlaysCache(t *testing.T) {
	svc, lessonRepo, _ := newTestProgressService(t)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 60, Duration: 120})
	require.NoError(t, err)
	svc.Flush("tick")

	// Fresh observation not yet flushed must still win over the
	// persisted state.
	_, err = svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 90, Duration: 120})
	require.NoError(t, err)

	records, err := svc.GetFormationProgress(1, 7)
	require.NoError(t, err)
	require.Contains(t, records, lesson.ID)
	assert.Equal(t, 75, records[lesson.ID].Progress)
}

func TestRecordSurvivesServiceRestart(t *testing.T) {
	db := newTestDB(t)
	progressRepo := repository.NewProgressRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	svc := NewProgressService(progressRepo, lessonRepo, nil, nil)
	lesson := createVideoLesson(t, lessonRepo, 1)

	_, err := svc.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 96, Duration: 120})
	require.NoError(t, err)
	svc.Flush("close")

	// A new instance over the same database keeps the floor.
	restarted := NewProgressService(progressRepo, lessonRepo, nil, nil)
	record, err := restarted.Record(1, 7, lesson.ID, TimeObservation{CurrentTime: 6, Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, 80, record.Progress)
	assert.Equal(t, 6.0, record.TimeSpent)
}
