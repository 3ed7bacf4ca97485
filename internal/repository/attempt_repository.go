package repository

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindByID(id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.First(&attempt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByUserAndQuiz(userID, quizID uint, limit, offset int) ([]model.QuizAttempt, int64, error) {
	var total int64
	if err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at desc").Limit(limit).Offset(offset).Find(&attempts).Error
	return attempts, total, err
}

// CompleteWithAnswers 原子地落盘完成态与每题作答。
// 完成是单向一次性的：更新带 completed_at IS NULL 谓词，
// 并发提交时只有第一个生效，落空的一方返回 ErrAttemptCompleted
func (r *AttemptRepository) CompleteWithAnswers(attempt *model.QuizAttempt, answers []model.QuizAttemptAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.QuizAttempt{}).
			Where("id = ? AND completed_at IS NULL", attempt.ID).
			Updates(map[string]interface{}{
				"completed_at": attempt.CompletedAt,
				"score":        attempt.Score,
				"time_spent":   attempt.TimeSpent,
				"is_passed":    attempt.IsPassed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAttemptCompleted
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) AnswersByAttempt(attemptID string) ([]model.QuizAttemptAnswer, error) {
	var answers []model.QuizAttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
