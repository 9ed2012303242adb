package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrLessonLocked         = errors.New("lesson locked by sequential gate")
	ErrLessonNotInFormation = errors.New("lesson does not belong to formation")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptCompleted     = errors.New("attempt already submitted")
	ErrAttemptInProgress    = errors.New("attempt still in progress")
	ErrInvalidVideoExt      = errors.New("invalid video extension")
)
