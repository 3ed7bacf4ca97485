package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 教师为课程创建测验，可一并提交题目与选项
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizReq true "测验定义"
// @Success 201 {object} util.Response{data=model.Quiz} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/teacher/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Description 部分更新测验元信息（限时、及格线、次数上限、启停）
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path int true "测验ID"
// @Param   body body service.QuizReq true "待更新字段"
// @Success 200 {object} util.Response{data=model.Quiz} "更新后的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/teacher/quizzes/{quizId} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quizId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(uint(quizID), req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, quiz)
}

type SetQuestionActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetQuestionActive godoc
// @Summary 启停题目
// @Description 软启停题目；停用的题目不下发、不计分
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path int true "测验ID"
// @Param   questionId path int true "题目ID"
// @Param   body body SetQuestionActiveRequest true "启停标记"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/teacher/quizzes/{quizId}/questions/{questionId}/active [put]
func (c *QuizController) SetQuestionActive(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quizId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req SetQuestionActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.SetQuestionActive(uint(quizID), uint(questionID), *req.IsActive); err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, nil)
}

// GetQuizDetail godoc
// @Summary 测验详情（教师视角）
// @Description 含题目与选项，带正确标记
// @Tags 测验管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response "测验详情"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/teacher/quizzes/{quizId} [get]
func (c *QuizController) GetQuizDetail(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quizId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, questions, answers, err := c.QuizService.GetQuizDetail(uint(quizID))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	type answerDetail struct {
		ID        uint   `json:"id"`
		Text      string `json:"text"`
		IsCorrect bool   `json:"isCorrect"`
		Order     int    `json:"order"`
	}
	type questionDetail struct {
		ID           uint           `json:"id"`
		QuestionType string         `json:"questionType"`
		Text         string         `json:"text"`
		Points       int            `json:"points"`
		Order        int            `json:"order"`
		Answers      []answerDetail `json:"answers"`
	}

	details := make([]questionDetail, 0, len(questions))
	for _, q := range questions {
		qd := questionDetail{
			ID:           q.ID,
			QuestionType: string(q.QuestionType),
			Text:         q.Text,
			Points:       q.Points,
			Order:        q.Order,
		}
		for _, a := range answers[q.ID] {
			qd.Answers = append(qd.Answers, answerDetail{
				ID:        a.ID,
				Text:      a.Text,
				IsCorrect: a.IsCorrect,
				Order:     a.Order,
			})
		}
		details = append(details, qd)
	}

	util.Success(ctx, gin.H{
		"quiz":      quiz,
		"questions": details,
	})
}
