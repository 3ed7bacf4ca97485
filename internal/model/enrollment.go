package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment 报名记录。Progress 永远由课时完成数推导，不接受客户端直接写入；
// 状态到 completed 的转换是单向的
type Enrollment struct {
	BaseModel
	UserID         uint             `gorm:"uniqueIndex:idx_enrollment_user_course;type:bigint unsigned;not null" json:"userId"`
	CourseID       uint             `gorm:"uniqueIndex:idx_enrollment_user_course;type:bigint unsigned;not null" json:"courseId"`
	Progress       float64          `gorm:"default:0" json:"progress"` // 0-100，两位小数
	Status         EnrollmentStatus `gorm:"size:20;default:'active'" json:"status"`
	EnrolledAt     time.Time        `json:"enrolledAt"`
	CompletionDate *time.Time       `json:"completionDate,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonProgress (enrollment, lesson) 唯一；首次访问课时时惰性创建
type LessonProgress struct {
	BaseModel
	EnrollmentID   uint       `gorm:"uniqueIndex:idx_progress_enrollment_lesson;type:bigint unsigned;not null" json:"enrollmentId"`
	LessonID       uint       `gorm:"uniqueIndex:idx_progress_enrollment_lesson;type:bigint unsigned;not null" json:"lessonId"`
	IsCompleted    bool       `gorm:"default:false" json:"isCompleted"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	TimeSpent      int        `gorm:"default:0" json:"timeSpent"` // Minutes，单调不减
	LastAccessDate time.Time  `json:"lastAccessDate"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
