package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/clock"
	"errors"

	"gorm.io/gorm"
)

// CourseService 课程/课时维护与报名
type CourseService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Clock          clock.Clock
}

func NewCourseService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, clk clock.Clock) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Clock:          clk,
	}
}

type CourseReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublished bool   `json:"isPublished"`
}

type LessonReq struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseReq) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
		IsPublished:  req.IsPublished,
	}
	if err := s.CourseRepo.CreateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) AddLesson(courseID uint, req LessonReq) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindCourseByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Content:  req.Content,
		Order:    req.Order,
		IsActive: true,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) GetCourse(courseID uint) (*model.Course, []model.Lesson, error) {
	course, err := s.CourseRepo.FindCourseByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrCourseNotFound
		}
		return nil, nil, err
	}
	lessons, err := s.CourseRepo.ListLessons(courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, lessons, nil
}

// Enroll 报名课程。(user, course) 唯一，重复报名直接报错
func (s *CourseService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	if _, err := s.CourseRepo.FindCourseByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentActive,
		EnrolledAt: s.Clock.Now(),
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *CourseService) ListEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}
