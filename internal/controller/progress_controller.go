package controller

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService   *service.ProgressService
	EnrollmentService *service.CourseService
}

func NewProgressController(progressService *service.ProgressService, enrollmentService *service.CourseService) *ProgressController {
	return &ProgressController{
		ProgressService:   progressService,
		EnrollmentService: enrollmentService,
	}
}

// enrollmentForRequest 解析路径中的报名ID并校验归属：学生只能操作自己的报名
func (c *ProgressController) enrollmentForRequest(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}

	enrollmentID, err := strconv.ParseUint(ctx.Param("enrollmentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid enrollment id")
		return 0, false
	}

	if claims.Role == model.Student {
		enrollments, err := c.EnrollmentService.ListEnrollments(claims.UserID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return 0, false
		}
		owned := false
		for _, e := range enrollments {
			if e.ID == uint(enrollmentID) {
				owned = true
				break
			}
		}
		if !owned {
			util.Forbidden(ctx)
			return 0, false
		}
	}

	return uint(enrollmentID), true
}

// RecordProgress godoc
// @Summary 记录课时进度
// @Description 记录课时访问/完成并重算报名进度，完成标记幂等
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   enrollmentId path int true "报名ID"
// @Param   body body service.RecordProgressRequest true "进度数据"
// @Success 200 {object} util.Response{data=service.ProgressView} "最新进度"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "报名或课时不存在"
// @Router /api/enrollments/{enrollmentId}/progress [post]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	enrollmentID, ok := c.enrollmentForRequest(ctx)
	if !ok {
		return
	}

	var req service.RecordProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.RecordLessonProgress(enrollmentID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNegativeTimeSpent), errors.Is(err, util.ErrLessonNotInCourse):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrEnrollmentNotFound), errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// GetProgress godoc
// @Summary 查询报名进度
// @Description 报名进度总览，含每个有效课时的完成情况
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   enrollmentId path int true "报名ID"
// @Success 200 {object} util.Response{data=service.ProgressView} "进度总览"
// @Failure 404 {object} util.Response "报名不存在"
// @Router /api/enrollments/{enrollmentId}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	enrollmentID, ok := c.enrollmentForRequest(ctx)
	if !ok {
		return
	}

	view, err := c.ProgressService.GetEnrollmentProgress(enrollmentID)
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}
