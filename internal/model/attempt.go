package model

import (
	"encoding/json"
	"time"
)

// QuizAttempt 一次答题记录。CompletedAt 为空表示进行中；
// 同一 (user, quiz) 任意时刻至多存在一条进行中的记录
type QuizAttempt struct {
	UUIDBase
	QuizID      uint       `gorm:"index:idx_attempt_quiz_user;type:bigint unsigned;not null" json:"quizId"`
	UserID      uint       `gorm:"index:idx_attempt_quiz_user;type:bigint unsigned;not null" json:"userId"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Score       int        `gorm:"default:0" json:"score"`
	MaxScore    int        `gorm:"default:0" json:"maxScore"`  // 开考时按有效题目快照
	TimeSpent   int        `gorm:"default:0" json:"timeSpent"` // Minutes
	IsPassed    bool       `gorm:"default:false" json:"isPassed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// InProgress reports whether the attempt has not been submitted yet.
func (a *QuizAttempt) InProgress() bool {
	return a.CompletedAt == nil
}

// Deadline returns the submission deadline, or false when the quiz has no limit.
func (a *QuizAttempt) Deadline(timeLimit *int) (time.Time, bool) {
	if timeLimit == nil {
		return time.Time{}, false
	}
	return a.StartedAt.Add(time.Duration(*timeLimit) * time.Minute), true
}

// QuizAttemptAnswer 持久化每题的作答，完成后的回看由此重建真实选择
type QuizAttemptAnswer struct {
	UUIDBase
	AttemptID    string `gorm:"index;type:varchar(36);not null" json:"attemptId"`
	QuestionID   uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	SelectedIDs  string `gorm:"type:json" json:"selectedIds"` // JSON: []uint
	IsCorrect    bool   `gorm:"default:false" json:"isCorrect"`
	PointsEarned int    `gorm:"default:0" json:"pointsEarned"`
}

func (QuizAttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}

// Selected decodes the stored answer IDs.
func (a *QuizAttemptAnswer) Selected() []uint {
	var ids []uint
	if a.SelectedIDs != "" {
		_ = json.Unmarshal([]byte(a.SelectedIDs), &ids)
	}
	return ids
}

// EncodeSelected stores the answer IDs as JSON.
func (a *QuizAttemptAnswer) EncodeSelected(ids []uint) {
	b, _ := json.Marshal(ids)
	a.SelectedIDs = string(b)
}
