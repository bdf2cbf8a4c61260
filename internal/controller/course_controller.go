package controller

import (
	"strconv"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/service"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// @Summary List courses
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	courses, total, err := c.CatalogService.ListCourses(page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// @Summary Course detail with skills and tasks
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	course, err := c.CatalogService.GetCourse(courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Create a course
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "course"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.CreateCourse(user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary Update a course
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param body body service.CourseRequest true "course"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.UpdateCourse(user.UserID, user.Role, courseID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Delete a course and everything under it
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteCourse(user.UserID, user.Role, courseID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Course deleted"})
}

// @Summary Add a skill to a course
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param body body service.SkillRequest true "skill"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/skills [post]
func (c *CourseController) CreateSkill(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	var req service.SkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	skill, err := c.CatalogService.CreateSkill(user.UserID, user.Role, courseID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, skill)
}

// @Summary Update a skill
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param skillId path int true "skill ID"
// @Param body body service.SkillRequest true "skill"
// @Success 200 {object} util.Response
// @Router /api/skills/{skillId} [put]
func (c *CourseController) UpdateSkill(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skillID, ok := pathID(ctx, "skillId")
	if !ok {
		return
	}

	var req service.SkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	skill, err := c.CatalogService.UpdateSkill(user.UserID, user.Role, skillID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, skill)
}

// @Summary Delete a skill and its tasks
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param skillId path int true "skill ID"
// @Success 200 {object} util.Response
// @Router /api/skills/{skillId} [delete]
func (c *CourseController) DeleteSkill(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skillID, ok := pathID(ctx, "skillId")
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteSkill(user.UserID, user.Role, skillID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Skill deleted"})
}

// @Summary Add a task to a skill
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param skillId path int true "skill ID"
// @Param body body service.TaskRequest true "task"
// @Success 201 {object} util.Response
// @Router /api/skills/{skillId}/tasks [post]
func (c *CourseController) CreateTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skillID, ok := pathID(ctx, "skillId")
	if !ok {
		return
	}

	var req service.TaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.CatalogService.CreateTask(user.UserID, user.Role, skillID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, task)
}

// @Summary Update a task and its content locations
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "task ID"
// @Param body body service.TaskRequest true "task"
// @Success 200 {object} util.Response
// @Router /api/tasks/{taskId} [put]
func (c *CourseController) UpdateTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	var req service.TaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.CatalogService.UpdateTask(user.UserID, user.Role, taskID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, task)
}

// @Summary Delete a task and purge progress references
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "task ID"
// @Success 200 {object} util.Response
// @Router /api/tasks/{taskId} [delete]
func (c *CourseController) DeleteTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteTask(user.UserID, user.Role, taskID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Task deleted"})
}

// @Summary Courses owned by the calling coach
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/courses/mine [get]
func (c *CourseController) ListMyCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CatalogService.ListCoachCourses(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}

// @Summary Enroll in a course
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.CatalogService.Enroll(user.UserID, courseID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Enrolled"})
}

// @Summary Leave a course
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enroll [delete]
func (c *CourseController) Unenroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.CatalogService.Unenroll(user.UserID, courseID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Unenrolled"})
}

// @Summary Courses the caller is enrolled in
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/courses/enrolled [get]
func (c *CourseController) ListEnrolled(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CatalogService.ListEnrolledCourses(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}
