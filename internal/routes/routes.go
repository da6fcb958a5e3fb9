package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"absensi/internal/handlers"
	"absensi/internal/middleware"
	"absensi/internal/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Attendance *handlers.AttendanceHandler
	Leave      *handlers.LeaveHandler
	Settings   *handlers.SettingsHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(r *gin.Engine, jwtKey []byte, h Handlers) *gin.Engine {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// ---- public
	api.GET("/health", h.Health.Health)
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// ---- protected
	protected := api.Group("", middleware.AuthMiddleware(jwtKey))
	admin := middleware.RequireRoles(models.RoleAdmin)

	// ATTENDANCE
	att := protected.Group("/attendance")
	{
		att.POST("/check-in", h.Attendance.CheckIn)
		att.POST("/check-out", h.Attendance.CheckOut)
		att.GET("/today", h.Attendance.Today)
		att.GET("/today/:userId", middleware.SelfOrAdmin("userId"), h.Attendance.Today)
		att.GET("/history/:userId", middleware.SelfOrAdmin("userId"), h.Attendance.History)
		att.GET("/stats/:userId", middleware.SelfOrAdmin("userId"), h.Attendance.Stats)
		att.GET("/all", admin, h.Attendance.All)
		att.GET("/live", admin, h.Attendance.Live)
	}

	// USERS
	users := protected.Group("/users")
	{
		users.GET("/me", h.User.Me)
		users.PUT("/profile", h.User.UpdateProfile)
		users.PUT("/profile/password", h.User.ChangePassword)

		users.GET("", admin, h.User.ListUsers)
		users.POST("", admin, h.User.CreateUser)
		users.GET("/:id", admin, h.User.GetUserByID)
		users.PUT("/:id", admin, h.User.UpdateUser)
		users.DELETE("/:id", admin, h.User.DeleteUser)
		users.PUT("/:id/reset-password", admin, h.User.ResetPassword)
	}

	// LEAVES
	leaves := protected.Group("/leaves")
	{
		leaves.POST("/apply", h.Leave.Apply)
		leaves.GET("/mine", h.Leave.Mine)
		leaves.GET("/user/:userId", middleware.SelfOrAdmin("userId"), h.Leave.ByUser)
		leaves.GET("/stats/:userId", middleware.SelfOrAdmin("userId"), h.Leave.Stats)
		leaves.GET("/all", admin, h.Leave.All)
		leaves.PUT("/:id/status", admin, h.Leave.UpdateStatus)
	}

	// SETTINGS
	settings := protected.Group("/settings")
	{
		settings.GET("", h.Settings.Get)
		settings.GET("/office-location", h.Settings.OfficeLocation)
		settings.GET("/attendance-hours", h.Settings.AttendanceHours)

		settings.PUT("", admin, h.Settings.UpdateGeneral)
		settings.PUT("/office-location", admin, h.Settings.UpdateOfficeLocation)
		settings.PUT("/attendance-hours", admin, h.Settings.UpdateAttendanceHours)
		settings.PUT("/attendance-rules", admin, h.Settings.UpdateAttendanceRules)
		settings.GET("/employee-working-hours", admin, h.Settings.EmployeeWorkingHours)
	}

	return r
}
