package app

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/docs"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/middleware"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerCoachRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/password/forgot", c.auth.ForgotPassword)
		public.POST("/password/reset", c.auth.ResetPassword)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)

	// Catalog, read side
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/enrolled", c.course.ListEnrolled)
	rg.GET("/courses/:courseId", c.course.GetCourse)
	rg.POST("/courses/:courseId/enroll", c.course.Enroll)
	rg.DELETE("/courses/:courseId/enroll", c.course.Unenroll)

	// Progress
	rg.GET("/progress", c.progress.ListMyProgress)
	rg.GET("/courses/:courseId/progress", c.progress.GetProgress)
	rg.POST("/courses/:courseId/tasks/:taskId/complete", c.progress.CompleteTask)
	rg.POST("/courses/:courseId/tasks/:taskId/submit", c.progress.SubmitTask)
	rg.POST("/courses/:courseId/feedback/seen", c.progress.MarkFeedbackSeen)
	rg.GET("/feedback/unseen", c.progress.CountUnseenFeedback)

	// Badges
	rg.GET("/badges", c.badge.ListBadges)
	rg.GET("/badges/mine", c.badge.ListMyBadges)

	// Groups
	rg.POST("/groups", c.group.CreateGroup)
	rg.GET("/groups/mine", c.group.ListMyGroups)
	rg.GET("/groups/invitations", c.group.ListMyInvitations)
	rg.POST("/groups/invitations/:invitationId", c.group.Respond)
	rg.GET("/groups/:groupId", c.group.GetGroup)
	rg.DELETE("/groups/:groupId", c.group.DeleteGroup)
	rg.POST("/groups/:groupId/invitations", c.group.Invite)
	rg.POST("/groups/:groupId/join", c.group.Join)
	rg.POST("/groups/:groupId/leave", c.group.Leave)
	rg.DELETE("/groups/:groupId/members/:userId", c.group.RemoveMember)
	rg.PUT("/groups/:groupId/coach", c.group.AssignCoach)
	rg.DELETE("/groups/:groupId/coach", c.group.RemoveCoach)
	rg.POST("/groups/:groupId/videos", c.group.AddVideo)
}

func (a *App) registerCoachRoutes(rg *gin.RouterGroup, c *controllers) {
	coach := rg.Group("")
	coach.Use(middleware.RoleMiddleware(model.Coach))
	{
		// Catalog, write side
		coach.GET("/courses/mine", c.course.ListMyCourses)
		coach.POST("/courses", c.course.CreateCourse)
		coach.PUT("/courses/:courseId", c.course.UpdateCourse)
		coach.DELETE("/courses/:courseId", c.course.DeleteCourse)
		coach.POST("/courses/:courseId/skills", c.course.CreateSkill)
		coach.PUT("/skills/:skillId", c.course.UpdateSkill)
		coach.DELETE("/skills/:skillId", c.course.DeleteSkill)
		coach.POST("/skills/:skillId/tasks", c.course.CreateTask)
		coach.PUT("/tasks/:taskId", c.course.UpdateTask)
		coach.DELETE("/tasks/:taskId", c.course.DeleteTask)

		// Review and rating
		coach.GET("/courses/:courseId/progress/all", c.progress.GetCourseProgress)
		coach.POST("/courses/:courseId/students/:studentId/tasks/:taskId/rate", c.progress.RateTask)
		coach.POST("/courses/:courseId/students/:studentId/tasks/:taskId/review", c.progress.ReviewTask)
	}
}
