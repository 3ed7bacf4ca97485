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

// QuizAttemptService 答题生命周期：开考校验、限时控制、提交评分
type QuizAttemptService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	Clock       clock.Clock
	DB          *gorm.DB
}

func NewQuizAttemptService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, clk clock.Clock, db *gorm.DB) *QuizAttemptService {
	return &QuizAttemptService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		Clock:       clk,
		DB:          db,
	}
}

type AttemptOptionView struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// AttemptQuestionView 下发给答题中学生的题目视图，不携带正确性标记
type AttemptQuestionView struct {
	ID           uint                `json:"id"`
	QuestionType model.QuestionType  `json:"questionType"`
	Text         string              `json:"text"`
	Points       int                 `json:"points"`
	Order        int                 `json:"order"`
	Options      []AttemptOptionView `json:"options"`
}

type AttemptView struct {
	AttemptID string                `json:"attemptId"`
	QuizID    uint                  `json:"quizId"`
	Title     string                `json:"title"`
	TimeLimit *int                  `json:"timeLimit,omitempty"`
	StartedAt time.Time             `json:"startedAt"`
	ExpiresAt *time.Time            `json:"expiresAt,omitempty"`
	MaxScore  int                   `json:"maxScore"`
	Questions []AttemptQuestionView `json:"questions"`
}

type GradedQuestionView struct {
	QuestionID      uint   `json:"questionId"`
	Text            string `json:"text"`
	SelectedIDs     []uint `json:"selectedIds"`
	CorrectIDs      []uint `json:"correctIds"`
	IsCorrect       bool   `json:"isCorrect"`
	PointsEarned    int    `json:"pointsEarned"`
	PointsAvailable int    `json:"pointsAvailable"`
}

type GradedAttemptView struct {
	AttemptID   string               `json:"attemptId"`
	QuizID      uint                 `json:"quizId"`
	Score       int                  `json:"score"`
	MaxScore    int                  `json:"maxScore"`
	Percentage  float64              `json:"percentage"`
	IsPassed    bool                 `json:"isPassed"`
	TimeSpent   int                  `json:"timeSpent"` // Minutes
	StartedAt   time.Time            `json:"startedAt"`
	CompletedAt time.Time            `json:"completedAt"`
	Questions   []GradedQuestionView `json:"questions,omitempty"`
}

// StartAttempt 开考。约束检查与插入在同一事务内，
// 对该 (user, quiz) 的历史记录加行级锁，堵住并发开考的竞态
func (s *QuizAttemptService) StartAttempt(userID, quizID uint) (*AttemptView, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsActive {
		return nil, util.ErrQuizInactive
	}

	now := s.Clock.Now()
	attempt := &model.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		StartedAt: now,
	}

	var questions []model.QuizQuestion
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing []model.QuizAttempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND quiz_id = ?", userID, quizID).
			Find(&existing).Error; err != nil {
			return err
		}

		if quiz.MaxAttempts > 0 && len(existing) >= quiz.MaxAttempts {
			return util.ErrAttemptLimitExceeded
		}

		for i := range existing {
			a := &existing[i]
			if !a.InProgress() {
				continue
			}
			deadline, limited := a.Deadline(quiz.TimeLimit)
			if limited && now.After(deadline) {
				// 超时未交的记录按 0 分自动关闭，避免永久占用名额
				expiredAt := deadline
				a.CompletedAt = &expiredAt
				a.TimeSpent = *quiz.TimeLimit
				a.IsPassed = false
				if err := tx.Save(a).Error; err != nil {
					return err
				}
				continue
			}
			return util.ErrAttemptInProgress
		}

		if err := tx.Where("quiz_id = ? AND is_active = ?", quizID, true).
			Order("`order` asc, id asc").Find(&questions).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return util.ErrQuizNoQuestions
		}

		for _, q := range questions {
			attempt.MaxScore += q.Points
		}

		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()

	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	answersByQuestion, err := s.QuizRepo.AnswersForQuestions(questionIDs)
	if err != nil {
		return nil, err
	}

	return buildAttemptView(quiz, attempt, questions, answersByQuestion), nil
}

// SubmitAttempt 提交并评分。提交时间等于截止时间仍然有效，超过才算超时
func (s *QuizAttemptService) SubmitAttempt(userID uint, attemptID string, answers map[uint][]uint) (*GradedAttemptView, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if !attempt.InProgress() {
		return nil, util.ErrAttemptCompleted
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if deadline, limited := attempt.Deadline(quiz.TimeLimit); limited && now.After(deadline) {
		return nil, util.ErrAttemptTimeExpired
	}

	questions, err := s.QuizRepo.ActiveQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if missing := missingQuestionIDs(questions, answers); len(missing) > 0 {
		return nil, &util.MissingAnswersError{QuestionIDs: missing}
	}

	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	answersByQuestion, err := s.QuizRepo.AnswersForQuestions(questionIDs)
	if err != nil {
		return nil, err
	}

	totalScore := 0
	rows := make([]model.QuizAttemptAnswer, 0, len(questions))
	graded := make([]GradedQuestionView, 0, len(questions))

	for _, q := range questions {
		selected := answers[q.ID]
		result, err := GradeQuestion(&q, answersByQuestion[q.ID], selected)
		if err != nil {
			return nil, err
		}
		totalScore += result.PointsEarned

		row := model.QuizAttemptAnswer{
			AttemptID:    attempt.ID,
			QuestionID:   q.ID,
			IsCorrect:    result.IsCorrect,
			PointsEarned: result.PointsEarned,
		}
		row.EncodeSelected(selected)
		rows = append(rows, row)

		graded = append(graded, GradedQuestionView{
			QuestionID:      q.ID,
			Text:            q.Text,
			SelectedIDs:     selected,
			CorrectIDs:      correctAnswerIDs(answersByQuestion[q.ID]),
			IsCorrect:       result.IsCorrect,
			PointsEarned:    result.PointsEarned,
			PointsAvailable: q.Points,
		})
	}

	attempt.Score = totalScore
	attempt.CompletedAt = &now
	attempt.TimeSpent = roundToMinutes(now.Sub(attempt.StartedAt))
	attempt.IsPassed = IsPassed(totalScore, attempt.MaxScore, quiz.PassingScore)

	if err := s.AttemptRepo.CompleteWithAnswers(attempt, rows); err != nil {
		return nil, err
	}

	monitoring.AttemptsCompleted.WithLabelValues(passedLabel(attempt.IsPassed)).Inc()

	return &GradedAttemptView{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  ScorePercentage(attempt.Score, attempt.MaxScore),
		IsPassed:    attempt.IsPassed,
		TimeSpent:   attempt.TimeSpent,
		StartedAt:   attempt.StartedAt,
		CompletedAt: now,
		Questions:   graded,
	}, nil
}

// GetAttempt 查询单次答题。进行中返回不带答案标记的题目视图；
// 已完成且 includeAnswers 时，从持久化的作答记录重建每题的真实选择
func (s *QuizAttemptService) GetAttempt(requester *util.Claims, attemptID string, includeAnswers bool) (interface{}, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != requester.UserID && requester.Role == model.Student {
		return nil, util.ErrPermissionDenied
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.ActiveQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	answersByQuestion, err := s.QuizRepo.AnswersForQuestions(questionIDs)
	if err != nil {
		return nil, err
	}

	if attempt.InProgress() {
		return buildAttemptView(quiz, attempt, questions, answersByQuestion), nil
	}

	view := &GradedAttemptView{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  ScorePercentage(attempt.Score, attempt.MaxScore),
		IsPassed:    attempt.IsPassed,
		TimeSpent:   attempt.TimeSpent,
		StartedAt:   attempt.StartedAt,
		CompletedAt: *attempt.CompletedAt,
	}

	if !includeAnswers {
		return view, nil
	}

	stored, err := s.AttemptRepo.AnswersByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}
	storedByQuestion := make(map[uint]*model.QuizAttemptAnswer, len(stored))
	for i := range stored {
		storedByQuestion[stored[i].QuestionID] = &stored[i]
	}

	for _, q := range questions {
		gq := GradedQuestionView{
			QuestionID:      q.ID,
			Text:            q.Text,
			CorrectIDs:      correctAnswerIDs(answersByQuestion[q.ID]),
			PointsAvailable: q.Points,
		}
		if row, found := storedByQuestion[q.ID]; found {
			gq.SelectedIDs = row.Selected()
			gq.IsCorrect = row.IsCorrect
			gq.PointsEarned = row.PointsEarned
		}
		view.Questions = append(view.Questions, gq)
	}

	return view, nil
}

// ListAttempts 学生分页查询自己在某测验下的记录，按开始时间倒序
func (s *QuizAttemptService) ListAttempts(userID, quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	if page < 1 {
		page = util.DefaultPage
	}
	if limit < 1 {
		limit = util.DefaultLimit
	}
	if limit > util.MaxLimit {
		limit = util.MaxLimit
	}
	return s.AttemptRepo.ListByUserAndQuiz(userID, quizID, limit, (page-1)*limit)
}

func buildAttemptView(quiz *model.Quiz, attempt *model.QuizAttempt, questions []model.QuizQuestion, answersByQuestion map[uint][]model.QuizAnswer) *AttemptView {
	view := &AttemptView{
		AttemptID: attempt.ID,
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		TimeLimit: quiz.TimeLimit,
		StartedAt: attempt.StartedAt,
		MaxScore:  attempt.MaxScore,
	}
	if deadline, limited := attempt.Deadline(quiz.TimeLimit); limited {
		view.ExpiresAt = &deadline
	}

	view.Questions = make([]AttemptQuestionView, len(questions))
	for i, q := range questions {
		qv := AttemptQuestionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			Points:       q.Points,
			Order:        q.Order,
		}
		for _, o := range answersByQuestion[q.ID] {
			qv.Options = append(qv.Options, AttemptOptionView{
				ID:    o.ID,
				Text:  o.Text,
				Order: o.Order,
			})
		}
		view.Questions[i] = qv
	}
	return view
}

// missingQuestionIDs 提交必须覆盖全部有效题目
func missingQuestionIDs(questions []model.QuizQuestion, answers map[uint][]uint) []uint {
	var missing []uint
	for _, q := range questions {
		if _, answered := answers[q.ID]; !answered {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

func roundToMinutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

func passedLabel(passed bool) string {
	if passed {
		return "true"
	}
	return "false"
}
