package repository

import (
	"context"
	"coursehub_backend/internal/model"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// QuizRepository 测验目录读写。Quiz 元数据走 Redis 缓存，
// 题目与选项每次从库中读取，保证评分使用最新的正确答案集合
type QuizRepository struct {
	DB       *gorm.DB
	RDB      *redis.Client
	CacheTTL time.Duration
}

func NewQuizRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *QuizRepository {
	return &QuizRepository{DB: db, RDB: rdb, CacheTTL: cacheTTL}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("quiz:%d", id)
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	ctx := context.Background()

	if r.RDB != nil {
		if raw, err := r.RDB.Get(ctx, quizCacheKey(id)).Result(); err == nil {
			var quiz model.Quiz
			if json.Unmarshal([]byte(raw), &quiz) == nil {
				return &quiz, nil
			}
		}
	}

	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if raw, err := json.Marshal(&quiz); err == nil {
			r.RDB.Set(ctx, quizCacheKey(quiz.ID), raw, r.CacheTTL)
		}
	}

	return &quiz, nil
}

// InvalidateCache 教师侧修改测验后调用
func (r *QuizRepository) InvalidateCache(id uint) {
	if r.RDB != nil {
		r.RDB.Del(context.Background(), quizCacheKey(id))
	}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	if err := r.DB.Save(quiz).Error; err != nil {
		return err
	}
	r.InvalidateCache(quiz.ID)
	return nil
}

func (r *QuizRepository) CreateQuestion(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *QuizRepository) UpdateQuestion(question *model.QuizQuestion) error {
	return r.DB.Save(question).Error
}

func (r *QuizRepository) FindQuestionByID(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ActiveQuestions 仅返回有效题目，按 order 排序
func (r *QuizRepository) ActiveQuestions(quizID uint) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.Where("quiz_id = ? AND is_active = ?", quizID, true).
		Order("`order` asc, id asc").Find(&qs).Error
	return qs, err
}

// AnswersForQuestions 批量加载多题的选项，避免每题一次查询
func (r *QuizRepository) AnswersForQuestions(questionIDs []uint) (map[uint][]model.QuizAnswer, error) {
	result := make(map[uint][]model.QuizAnswer, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}

	var answers []model.QuizAnswer
	err := r.DB.Where("question_id IN ?", questionIDs).
		Order("`order` asc, id asc").Find(&answers).Error
	if err != nil {
		return nil, err
	}

	for _, a := range answers {
		result[a.QuestionID] = append(result[a.QuestionID], a)
	}
	return result, nil
}
