package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Router /api/teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// AddLesson godoc
// @Summary 添加课时
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   body body service.LessonReq true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/teacher/courses/{courseId}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.AddLesson(uint(courseID), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, lesson)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response "课程与课时"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, lessons, err := c.CourseService.GetCourse(uint(courseID))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"course":  course,
		"lessons": lessons,
	})
}

// Enroll godoc
// @Summary 报名课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "报名成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "已报名"
// @Router /api/courses/{courseId}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := strconv.ParseUint(ctx.Param("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	enrollment, err := c.CourseService.Enroll(claims.UserID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, enrollment)
}

// ListEnrollments godoc
// @Summary 本人报名列表
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "报名列表"
// @Router /api/enrollments [get]
func (c *CourseController) ListEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.CourseService.ListEnrollments(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}
