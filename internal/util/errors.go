package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrCourseNotFound       = errors.New("course not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrLessonNotInCourse    = errors.New("lesson does not belong to the enrolled course")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizInactive         = errors.New("quiz is not active")
	ErrQuizNoQuestions      = errors.New("quiz has no active questions")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptCompleted     = errors.New("attempt already completed")
	ErrAttemptInProgress    = errors.New("another attempt is already in progress")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrAttemptTimeExpired   = errors.New("time limit expired")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this course")
	ErrNegativeTimeSpent    = errors.New("time spent delta must not be negative")
	ErrUnknownQuestionType  = errors.New("unknown question type")
)

// MissingAnswersError 提交的答案未覆盖全部有效题目时返回，明确列出缺失的题目ID
type MissingAnswersError struct {
	QuestionIDs []uint
}

func (e *MissingAnswersError) Error() string {
	ids := make([]uint, len(e.QuestionIDs))
	copy(ids, e.QuestionIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "missing answers for questions: " + strings.Join(parts, ", ")
}
