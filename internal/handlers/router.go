package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskfan/internal/config"
	"taskfan/internal/middleware"
	"taskfan/internal/monitoring"
	"taskfan/internal/realtime"
	"taskfan/internal/services"
)

type RouterDeps struct {
	DB            *gorm.DB
	Orchestrator  *services.Orchestrator
	Auth          services.AuthService
	Notifications services.NotificationService
	Users         services.UserService
	Hub           *realtime.Hub
	HealthChecker *monitoring.HealthChecker
}

func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.Default())

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(limiter.Middleware())
	}

	authHandler := NewAuthHandler(deps.DB, deps.Auth)
	taskHandler := NewTaskHandler(deps.Orchestrator)
	projectHandler := NewProjectHandler(deps.Orchestrator)
	notificationHandler := NewNotificationHandler(deps.DB, deps.Notifications)
	userHandler := NewUserHandler(deps.DB, deps.Users)

	router.GET("/health", monitoring.HealthHandler(deps.HealthChecker))
	router.GET("/metrics", monitoring.MetricsHandler())

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(cfg.Auth.JWTSecret))
	{
		authed.GET("/tasks", taskHandler.GetTasks)
		authed.GET("/tasks/:id", taskHandler.GetTaskByID)
		authed.POST("/tasks", taskHandler.CreateTask)
		authed.PUT("/tasks/:id", taskHandler.UpdateTask)
		authed.DELETE("/tasks/:id", taskHandler.DeleteTask)

		authed.GET("/projects", projectHandler.GetProjects)
		authed.GET("/projects/:id", projectHandler.GetProjectByID)
		authed.POST("/projects", projectHandler.CreateProject)
		authed.PUT("/projects/:id", projectHandler.UpdateProject)
		authed.DELETE("/projects/:id", projectHandler.DeleteProject)

		authed.GET("/notifications", notificationHandler.GetNotifications)
		authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		authed.DELETE("/notifications/:id", notificationHandler.DeleteNotification)

		authed.GET("/users", userHandler.GetUsers)
		authed.GET("/users/:id", userHandler.GetUserByID)
	}

	router.GET("/ws", HandleWebSocket(deps.Hub))

	return router
}
