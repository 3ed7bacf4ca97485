package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// QuizService 教师侧的测验编排（目录的写入端）
type QuizService struct {
	QuizRepo   *repository.QuizRepository
	CourseRepo *repository.CourseRepository
	DB         *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, courseRepo *repository.CourseRepository, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo:   quizRepo,
		CourseRepo: courseRepo,
		DB:         db,
	}
}

type QuizAnswerReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuizQuestionReq struct {
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Text         string             `json:"text" binding:"required"`
	Points       int                `json:"points"`
	Order        int                `json:"order"`
	Answers      []QuizAnswerReq    `json:"answers"`
}

type QuizReq struct {
	CourseID     uint               `json:"courseId"`
	LessonID     *uint              `json:"lessonId"`
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	TimeLimit    *int               `json:"timeLimit"`
	PassingScore *int               `json:"passingScore"`
	MaxAttempts  *int               `json:"maxAttempts"`
	IsActive     *bool              `json:"isActive"`
	Questions    *[]QuizQuestionReq `json:"questions"`
}

func (s *QuizService) CreateQuiz(req QuizReq) (*model.Quiz, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.TimeLimit != nil && *req.TimeLimit <= 0 {
		return nil, errors.New("timeLimit must be greater than zero")
	}
	if _, err := s.CourseRepo.FindCourseByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	quiz := &model.Quiz{
		CourseID:     req.CourseID,
		LessonID:     req.LessonID,
		Title:        *req.Title,
		TimeLimit:    req.TimeLimit,
		PassingScore: 60,
		MaxAttempts:  1,
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil && *req.MaxAttempts >= 1 {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		if req.Questions == nil {
			return nil
		}
		for idx, qReq := range *req.Questions {
			question := &model.QuizQuestion{
				QuizID:       quiz.ID,
				QuestionType: qReq.QuestionType,
				Text:         qReq.Text,
				Points:       qReq.Points,
				Order:        qReq.Order,
				IsActive:     true,
			}
			if question.Points <= 0 {
				question.Points = 1
			}
			if question.Order == 0 {
				question.Order = idx + 1
			}
			if err := tx.Create(question).Error; err != nil {
				return err
			}
			for aIdx, aReq := range qReq.Answers {
				answer := &model.QuizAnswer{
					QuestionID: question.ID,
					Text:       aReq.Text,
					IsCorrect:  aReq.IsCorrect,
					Order:      aReq.Order,
				}
				if answer.Order == 0 {
					answer.Order = aIdx + 1
				}
				if err := tx.Create(answer).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, req QuizReq) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		if *req.TimeLimit <= 0 {
			return nil, errors.New("timeLimit must be greater than zero")
		}
		quiz.TimeLimit = req.TimeLimit
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil && *req.MaxAttempts >= 1 {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// SetQuestionActive 软启停题目；停用的题目不下发、不计分
func (s *QuizService) SetQuestionActive(quizID, questionID uint, active bool) error {
	question, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if question.QuizID != quizID {
		return errors.New("question not belong to quiz")
	}
	question.IsActive = active
	if err := s.QuizRepo.UpdateQuestion(question); err != nil {
		return err
	}
	s.QuizRepo.InvalidateCache(quizID)
	return nil
}

// GetQuizDetail 教师视角：含题目与选项（带正确标记）
func (s *QuizService) GetQuizDetail(quizID uint) (*model.Quiz, []model.QuizQuestion, map[uint][]model.QuizAnswer, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, util.ErrQuizNotFound
		}
		return nil, nil, nil, err
	}

	questions, err := s.QuizRepo.ActiveQuestions(quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	answers, err := s.QuizRepo.AnswersForQuestions(ids)
	if err != nil {
		return nil, nil, nil, err
	}
	return quiz, questions, answers, nil
}
