package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/controllers"
	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/middleware"
)

// Controllers groups the handlers mounted under /api
type Controllers struct {
	Auth        *controllers.AuthController
	Classes     *controllers.ClassController
	Staff       *controllers.StaffController
	Users       *controllers.UserController
	Enrollments *controllers.EnrollmentController
	Videos      *controllers.VideoController
	Health      *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
) {
	api := router.Group("/api")

	api.GET("/health", ctrl.Health.Health)

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}

	// --- Authenticated Routes Group ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Admin area
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		classes := admin.Group("/classes")
		{
			classes.GET("", ctrl.Classes.ListClasses)
			classes.POST("", ctrl.Classes.CreateClass)
			classes.GET("/:id", ctrl.Classes.GetClass)
			classes.PATCH("/:id", ctrl.Classes.UpdateClass)
			classes.DELETE("/:id", ctrl.Classes.DeleteClass)
		}

		staff := admin.Group("/staff")
		{
			staff.GET("", ctrl.Staff.ListStaff)
			staff.POST("", ctrl.Staff.CreateStaff)
			staff.GET("/:id", ctrl.Staff.GetStaff)
			staff.PATCH("/:id", ctrl.Staff.UpdateStaff)
			staff.DELETE("/:id", ctrl.Staff.DeleteStaff)
			staff.POST("/:id/skills", ctrl.Staff.AddSkill)
			staff.PATCH("/:id/skills/:skillId", ctrl.Staff.ReviewSkill)
			staff.DELETE("/:id/skills/:skillId", ctrl.Staff.DeleteSkill)
		}

		users := admin.Group("/users")
		{
			users.GET("", ctrl.Users.ListUsers)
			users.POST("", ctrl.Users.CreateUser)
			users.GET("/:id", ctrl.Users.GetUser)
			users.PATCH("/:id", ctrl.Users.UpdateUser)
			users.DELETE("/:id", ctrl.Users.DeleteUser)
		}
	}

	// Ownership rules for members are applied in the enrollment service
	enrollments := authenticated.Group("/customer/enrollments")
	{
		enrollments.GET("", ctrl.Enrollments.ListEnrollments)
		enrollments.POST("", ctrl.Enrollments.CreateEnrollment)
		enrollments.GET("/:id", ctrl.Enrollments.GetEnrollment)
		enrollments.PATCH("/:id", ctrl.Enrollments.UpdateEnrollment)
		enrollments.DELETE("/:id", ctrl.Enrollments.DeleteEnrollment)
	}

	videos := authenticated.Group("/videos")
	{
		videos.GET("", ctrl.Videos.ListVideos)
		videos.GET("/:id", ctrl.Videos.GetVideo)

		videosAdmin := videos.Group("")
		videosAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			videosAdmin.POST("", ctrl.Videos.CreateVideo)
			videosAdmin.PATCH("/:id", ctrl.Videos.UpdateVideo)
			videosAdmin.DELETE("/:id", ctrl.Videos.DeleteVideo)
			videosAdmin.POST("/:id/file", ctrl.Videos.UploadVideoFile)
		}
	}
}
