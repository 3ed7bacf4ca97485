package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizAttemptController struct {
	AttemptService *service.QuizAttemptService
}

func NewQuizAttemptController(attemptService *service.QuizAttemptService) *QuizAttemptController {
	return &QuizAttemptController{AttemptService: attemptService}
}

// StartAttempt godoc
// @Summary 开始答题
// @Description 为当前学生在指定测验下开启一次新的答题，同一测验同一学生最多一条进行中记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path int true "测验ID"
// @Success 201 {object} util.Response{data=service.AttemptView} "创建成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Failure 409 {object} util.Response "已有进行中的答题或次数用尽"
// @Router /api/quizzes/{quizId}/attempts [post]
func (c *QuizAttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.ParseUint(ctx.Param("quizId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	view, err := c.AttemptService.StartAttempt(claims.UserID, uint(quizID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrQuizInactive), errors.Is(err, util.ErrQuizNoQuestions):
			util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, util.ErrAttemptInProgress), errors.Is(err, util.ErrAttemptLimitExceeded):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, view)
}

// SubmitAttemptRequest 每题的作答，key 为题目ID，value 为选中的选项ID列表
type SubmitAttemptRequest struct {
	Answers map[uint][]uint `json:"answers" binding:"required"`
}

// SubmitAttempt godoc
// @Summary 提交答题
// @Description 对进行中的答题评分并落盘。提交时间等于截止时间仍然有效
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path string true "答题ID"
// @Param   body body SubmitAttemptRequest true "作答数据"
// @Success 200 {object} util.Response{data=service.GradedAttemptView} "评分结果"
// @Failure 400 {object} util.Response "缺题或参数错误"
// @Failure 409 {object} util.Response "已提交过"
// @Failure 410 {object} util.Response "超时"
// @Router /api/attempts/{attemptId}/submit [post]
func (c *QuizAttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.AttemptService.SubmitAttempt(claims.UserID, ctx.Param("attemptId"), req.Answers)
	if err != nil {
		var missing *util.MissingAnswersError
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptCompleted):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrAttemptTimeExpired):
			util.Error(ctx, http.StatusGone, err.Error())
		case errors.As(err, &missing):
			util.BadRequest(ctx, missing.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// GetAttempt godoc
// @Summary 查询单次答题
// @Description 进行中返回去除正确标记的题目视图；已完成可带 includeAnswers=true 查看逐题明细
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path string true "答题ID"
// @Param   includeAnswers query bool false "是否包含逐题明细"
// @Success 200 {object} util.Response "答题详情"
// @Failure 403 {object} util.Response "无权查看"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/attempts/{attemptId} [get]
func (c *QuizAttemptController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	includeAnswers := ctx.Query("includeAnswers") == "true"

	view, err := c.AttemptService.GetAttempt(claims, ctx.Param("attemptId"), includeAnswers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// ListAttempts godoc
// @Summary 查询本人答题记录
// @Description 当前学生在指定测验下的答题记录，按开始时间倒序分页
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path int true "测验ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "记录列表"
// @Router /api/quizzes/{quizId}/attempts [get]
func (c *QuizAttemptController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.ParseUint(ctx.Param("quizId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.AttemptService.ListAttempts(claims.UserID, uint(quizID), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  attempts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
