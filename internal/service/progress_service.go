package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/clock"
	"coursehub_backend/pkg/monitoring"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService 课时进度与报名进度汇总
type ProgressService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	Clock          clock.Clock
	DB             *gorm.DB
}

func NewProgressService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository, clk clock.Clock, db *gorm.DB) *ProgressService {
	return &ProgressService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		Clock:          clk,
		DB:             db,
	}
}

type RecordProgressRequest struct {
	LessonID     uint `json:"lessonId" binding:"required"`
	Completed    bool `json:"completed"`
	MinutesSpent int  `json:"minutesSpent"`
}

type LessonProgressView struct {
	LessonID       uint       `json:"lessonId"`
	Title          string     `json:"title"`
	Order          int        `json:"order"`
	IsCompleted    bool       `json:"isCompleted"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	TimeSpent      int        `json:"timeSpent"`
	LastAccessDate time.Time  `json:"lastAccessDate"`
}

type ProgressView struct {
	EnrollmentID     uint                   `json:"enrollmentId"`
	CourseID         uint                   `json:"courseId"`
	Progress         float64                `json:"progress"`
	Status           model.EnrollmentStatus `json:"status"`
	CompletedLessons int64                  `json:"completedLessons"`
	TotalLessons     int64                  `json:"totalLessons"`
	CompletionDate   *time.Time             `json:"completionDate,omitempty"`
	Lessons          []LessonProgressView   `json:"lessons,omitempty"`
}

// RecordLessonProgress 记录课时访问/完成并重算报名进度。
// 对报名行加 FOR UPDATE 锁，序列化同一报名下的并发读改写，
// 防止并发完成两个课时时进度被少算。
// 完成标记幂等：重复标记已完成的课时不改动 CompletionDate，但仍推进 LastAccessDate。
// 进度到 100 且状态为 active 时单向转为 completed。
func (s *ProgressService) RecordLessonProgress(enrollmentID uint, req RecordProgressRequest) (*ProgressView, error) {
	if req.MinutesSpent < 0 {
		return nil, util.ErrNegativeTimeSpent
	}

	now := s.Clock.Now()
	var view *ProgressView

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var enrollment model.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrEnrollmentNotFound
			}
			return err
		}

		var lesson model.Lesson
		if err := tx.First(&lesson, req.LessonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrLessonNotFound
			}
			return err
		}
		if lesson.CourseID != enrollment.CourseID {
			return util.ErrLessonNotInCourse
		}

		// 惰性创建 (enrollment, lesson) 进度行
		var row model.LessonProgress
		err := tx.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lesson.ID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.LessonProgress{
				EnrollmentID: enrollment.ID,
				LessonID:     lesson.ID,
			}
		} else if err != nil {
			return err
		}

		if req.Completed && !row.IsCompleted {
			row.IsCompleted = true
			row.CompletionDate = &now
		}
		row.TimeSpent += req.MinutesSpent
		row.LastAccessDate = now

		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		var total, completed int64
		if err := tx.Model(&model.Lesson{}).
			Where("course_id = ? AND is_active = ?", enrollment.CourseID, true).
			Count(&total).Error; err != nil {
			return err
		}
		// 分子与分母同口径：只统计仍然有效的课时，
		// 已停用课时上的历史完成记录不计入进度
		if err := tx.Model(&model.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id AND lessons.course_id = ? AND lessons.is_active = ? AND lessons.deleted_at IS NULL", enrollment.CourseID, true).
			Where("lesson_progress.enrollment_id = ? AND lesson_progress.is_completed = ?", enrollment.ID, true).
			Count(&completed).Error; err != nil {
			return err
		}

		enrollment.Progress = ProgressPercent(completed, total)
		if enrollment.Progress >= 100 && enrollment.Status == model.EnrollmentActive {
			enrollment.Status = model.EnrollmentCompleted
			enrollment.CompletionDate = &now
			monitoring.EnrollmentsCompleted.Inc()
		}

		if err := tx.Save(&enrollment).Error; err != nil {
			return err
		}

		view = &ProgressView{
			EnrollmentID:     enrollment.ID,
			CourseID:         enrollment.CourseID,
			Progress:         enrollment.Progress,
			Status:           enrollment.Status,
			CompletedLessons: completed,
			TotalLessons:     total,
			CompletionDate:   enrollment.CompletionDate,
			Lessons: []LessonProgressView{{
				LessonID:       lesson.ID,
				Title:          lesson.Title,
				Order:          lesson.Order,
				IsCompleted:    row.IsCompleted,
				CompletionDate: row.CompletionDate,
				TimeSpent:      row.TimeSpent,
				LastAccessDate: row.LastAccessDate,
			}},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// GetEnrollmentProgress 报名进度总览，含每个课时的完成情况
func (s *ProgressService) GetEnrollmentProgress(enrollmentID uint) (*ProgressView, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	lessons, err := s.CourseRepo.ListLessons(enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	rows, err := s.EnrollmentRepo.ListLessonProgress(enrollment.ID)
	if err != nil {
		return nil, err
	}

	rowsByLesson := make(map[uint]*model.LessonProgress, len(rows))
	for i := range rows {
		rowsByLesson[rows[i].LessonID] = &rows[i]
	}

	var total, completed int64
	view := &ProgressView{
		EnrollmentID:   enrollment.ID,
		CourseID:       enrollment.CourseID,
		Progress:       enrollment.Progress,
		Status:         enrollment.Status,
		CompletionDate: enrollment.CompletionDate,
	}

	for _, lesson := range lessons {
		if !lesson.IsActive {
			continue
		}
		total++
		lv := LessonProgressView{
			LessonID: lesson.ID,
			Title:    lesson.Title,
			Order:    lesson.Order,
		}
		if row, found := rowsByLesson[lesson.ID]; found {
			lv.IsCompleted = row.IsCompleted
			lv.CompletionDate = row.CompletionDate
			lv.TimeSpent = row.TimeSpent
			lv.LastAccessDate = row.LastAccessDate
			if row.IsCompleted {
				completed++
			}
		}
		view.Lessons = append(view.Lessons, lv)
	}

	view.CompletedLessons = completed
	view.TotalLessons = total
	return view, nil
}
