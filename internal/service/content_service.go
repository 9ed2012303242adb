package service

import (
	"context"
	"fmt"
	"formation_backend/internal/model"
	"formation_backend/internal/repository"
	"formation_backend/internal/util"
	"formation_backend/pkg/logger"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentService handles lesson asset uploads: MIME sniffing, media
// probing, thumbnail extraction and storage placement. The probed
// duration feeds the time-based progress calculator, so an upload is
// rejected rather than stored with unusable metadata.
type ContentService struct {
	LessonRepo *repository.LessonRepository
	Storage    Storage
}

func NewContentService(lessonRepo *repository.LessonRepository, storage Storage) *ContentService {
	return &ContentService{LessonRepo: lessonRepo, Storage: storage}
}

func allowedTypesForLesson(t model.LessonType) []string {
	switch t {
	case model.LessonPDF:
		return []string{util.MimePDF, util.MimeOctetStream}
	case model.LessonSlides:
		return []string{util.MimePDF, util.MimeImage, util.MimeOctetStream}
	case model.LessonVideo:
		return []string{util.MimeVideo, util.MimeOctetStream}
	case model.LessonAudio:
		return []string{util.MimeAudio, util.MimeOctetStream}
	}
	return []string{util.MimeOctetStream}
}

func validateExtension(t model.LessonType, ext string) error {
	switch t {
	case model.LessonVideo:
		for _, allowed := range util.AllowedVideoExtensions {
			if ext == allowed {
				return nil
			}
		}
		return util.ErrInvalidVideoExt
	case model.LessonAudio:
		for _, allowed := range util.AllowedAudioExtensions {
			if ext == allowed {
				return nil
			}
		}
		return fmt.Errorf("invalid audio extension: %s", ext)
	}
	return nil
}

// UploadMedia stores the asset for a lesson and refreshes the lesson's
// media metadata. Video and audio files are probed with ffprobe; the
// probed duration becomes the lesson's authoritative Duration.
func (s *ContentService) UploadMedia(ctx context.Context, lessonID uint, fileHeader *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := validateExtension(lesson.Type, ext); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, allowedTypesForLesson(lesson.Type))
	if err != nil {
		return nil, err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}

	// Spool to a temp file: ffprobe needs a path and storage needs a
	// second pass over the bytes.
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.ReadFrom(file); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	objectName := fmt.Sprintf("lessons/%d/%s%s", lessonID, util.GenerateRandomString(16), ext)

	if lesson.Type.IsTimeBased() {
		info, err := util.GetMediaInfo(tmpPath)
		if err != nil {
			return nil, fmt.Errorf("media probe: %w", err)
		}
		if info.Duration <= 0 {
			return nil, fmt.Errorf("media has no usable duration")
		}
		lesson.Duration = info.Duration
		lesson.Format = info.Format
		lesson.Size = info.Size

		if util.IsVideo(mimeType) {
			if url, err := s.generateThumbnail(ctx, lessonID, tmpPath); err != nil {
				logger.Log.Warn("thumbnail generation failed",
					zap.Uint("lessonId", lessonID),
					zap.Error(err))
			} else {
				lesson.Thumbnail = url
			}
		}
	} else {
		lesson.Size = fileHeader.Size
		lesson.Format = strings.TrimPrefix(ext, ".")
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return nil, err
	}

	url, err := s.Storage.Save(ctx, objectName, src, stat.Size(), mimeType)
	if err != nil {
		return nil, err
	}
	lesson.URL = url

	if err := s.LessonRepo.Save(lesson); err != nil {
		return nil, err
	}

	logger.Log.Info("lesson media uploaded",
		zap.Uint("lessonId", lessonID),
		zap.String("type", string(lesson.Type)),
		zap.Float64("duration", lesson.Duration),
		zap.Int64("size", lesson.Size))

	return lesson, nil
}

func (s *ContentService) generateThumbnail(ctx context.Context, lessonID uint, videoPath string) (string, error) {
	thumbPath := videoPath + ".jpg"
	defer os.Remove(thumbPath)

	if err := util.GenerateThumbnail(videoPath, thumbPath, "1"); err != nil {
		return "", err
	}

	thumb, err := os.Open(thumbPath)
	if err != nil {
		return "", err
	}
	defer thumb.Close()

	stat, err := thumb.Stat()
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("lessons/%d/thumb-%d.jpg", lessonID, time.Now().Unix())
	return s.Storage.Save(ctx, objectName, thumb, stat.Size(), "image/jpeg")
}

// SetMediaTotals records the page or slide count an admin (or the
// client-side viewer on first load) reports for a non-probeable asset.
func (s *ContentService) SetMediaTotals(lessonID uint, totalPages, totalSlides *int) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	if totalPages != nil && lesson.Type == model.LessonPDF {
		lesson.TotalPages = *totalPages
	}
	if totalSlides != nil && lesson.Type == model.LessonSlides {
		lesson.TotalSlides = *totalSlides
	}

	if err := s.LessonRepo.Save(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
