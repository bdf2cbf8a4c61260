package controller

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/service"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type RateTaskRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

type ReviewTaskRequest struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

// @Summary Progress for a course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	summary, err := c.ProgressService.GetProgress(user.UserID, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary Progress across all courses with activity
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) ListMyProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summaries, err := c.ProgressService.ListMyProgress(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, summaries)
}

// @Summary Mark a task completed
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param taskId path int true "task ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/tasks/{taskId}/complete [post]
func (c *ProgressController) CompleteTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	result, err := c.ProgressService.CompleteTask(user.UserID, courseID, taskID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Submit files for a task
// @Tags progress
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param taskId path int true "task ID"
// @Param files formData file true "submission files"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/tasks/{taskId}/submit [post]
func (c *ProgressController) SubmitTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		util.BadRequest(ctx, "multipart form required")
		return
	}

	headers := form.File["files"]
	files := make([]service.SubmissionFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		defer f.Close()
		files = append(files, service.SubmissionFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	entry, err := c.ProgressService.SubmitTask(ctx.Request.Context(), user.UserID, courseID, taskID, files)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, entry)
}

// @Summary Rate a student's task
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param studentId path int true "student ID"
// @Param taskId path int true "task ID"
// @Param body body RateTaskRequest true "rating"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/students/{studentId}/tasks/{taskId}/rate [post]
func (c *ProgressController) RateTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	var req RateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	summary, err := c.ProgressService.RateTask(user.UserID, user.Role, courseID, studentID, taskID, req.Rating, req.Feedback)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary Review a student's task
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Param studentId path int true "student ID"
// @Param taskId path int true "task ID"
// @Param body body ReviewTaskRequest true "verdict"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/students/{studentId}/tasks/{taskId}/review [post]
func (c *ProgressController) ReviewTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	taskID, ok := pathID(ctx, "taskId")
	if !ok {
		return
	}

	var req ReviewTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressService.ReviewTask(user.UserID, user.Role, courseID, studentID, taskID, req.Approved, req.Feedback); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Review saved"})
}

// @Summary Mark all reviewed feedback as seen
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/feedback/seen [post]
func (c *ProgressController) MarkFeedbackSeen(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	changed, err := c.ProgressService.MarkFeedbackSeen(user.UserID, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"marked": changed})
}

// @Summary Count of unseen feedback entries
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/feedback/unseen [get]
func (c *ProgressController) CountUnseenFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.ProgressService.CountUnseenFeedback(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"unseen": count})
}

// @Summary Every student's progress in a course (coach)
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/progress/all [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	records, err := c.ProgressService.GetCourseProgress(user.UserID, user.Role, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, records)
}
