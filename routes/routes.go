package routes

import (
	"capbot-api/controllers"
	"capbot-api/middleware"
	"capbot-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "CapBot API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reviewer skill tags (lecturers declare their own)
			skills := protected.Group("/profile/skills")
			{
				skills.GET("", controllers.GetMySkills)
				skills.POST("", middleware.RequireRole(models.RoleLecturer), controllers.AddMySkill)
				skills.DELETE("/:skill_id", middleware.RequireRole(models.RoleLecturer), controllers.RemoveMySkill)
			}

			// Semesters & phases
			semesters := protected.Group("/semesters")
			{
				semesters.GET("", controllers.GetSemesters)
				semesters.GET("/:id", controllers.GetSemester)
				semesters.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateSemester)
				semesters.PUT("/:id", middleware.RequireRole(models.RoleAdmin), controllers.UpdateSemester)
				semesters.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteSemester)
				semesters.POST("/:id/phases", middleware.RequireRole(models.RoleAdmin), controllers.CreatePhase)
			}

			// Topics & versions
			topics := protected.Group("/topics")
			{
				topics.GET("", controllers.GetTopics)
				topics.GET("/:id", controllers.GetTopic)
				topics.POST("", middleware.RequireRole(models.RoleLecturer), controllers.CreateTopic)
				topics.POST("/:id/versions", middleware.RequireRole(models.RoleLecturer), controllers.CreateTopicVersion)
				topics.GET("/:id/reviewer-suggestions",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.GetTopicReviewerSuggestions)
			}
			protected.PUT("/topic-versions/:version_id/approve",
				middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
				controllers.ApproveTopicVersion)
			protected.POST("/reviewer-suggestions/bulk",
				middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
				controllers.BulkTopicReviewerSuggestions)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", middleware.RequireRole(models.RoleStudent, models.RoleLecturer), controllers.CreateSubmission)
				submissions.PUT("/:id/status",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.UpdateSubmissionStatus)

				// Reviewer matching & assignment
				submissions.GET("/:id/reviewer-suggestions",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.GetSubmissionReviewerSuggestions)
				submissions.POST("/:id/assign-reviewers",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.AssignReviewers)
				submissions.GET("/:id/assignments",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.GetSubmissionAssignments)
			}

			// Review assignments
			assignments := protected.Group("/assignments")
			{
				assignments.POST("/auto",
					middleware.RequireRole(models.RoleModerator, models.RoleAdmin),
					controllers.AutoAssignReviewers)
				assignments.GET("/my", middleware.RequireRole(models.RoleLecturer), controllers.GetMyAssignments)
				assignments.POST("/:id/start", middleware.RequireRole(models.RoleLecturer), controllers.StartAssignment)
				assignments.POST("/:id/complete", middleware.RequireRole(models.RoleLecturer), controllers.CompleteAssignment)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}

	}

	// 404 catch-all for unknown paths
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
