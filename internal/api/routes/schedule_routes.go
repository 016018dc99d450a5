package routes

import (
	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/handlers"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ScheduleRoutes handles the setup of scheduling-related routes
type ScheduleRoutes struct {
	handler   *handlers.ScheduleHandler
	jwtSecret string
}

// NewScheduleRoutes creates a new ScheduleRoutes instance
func NewScheduleRoutes(handler *handlers.ScheduleHandler, jwtSecret string) *ScheduleRoutes {
	return &ScheduleRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all scheduling-related routes
func (sr *ScheduleRoutes) RegisterRoutes(router *gin.Engine) {
	scheduleGroup := router.Group("/api/schedule")
	scheduleGroup.Use(middleware.NewAuthMiddleware(sr.jwtSecret))

	// Per-content schedule lifecycle
	contentGroup := scheduleGroup.Group("/content/:id")
	{
		contentGroup.POST("", sr.handler.ScheduleContent)
		contentGroup.PUT("", sr.handler.RescheduleContent)
		contentGroup.PATCH("", sr.handler.UpdateSchedule)
		contentGroup.DELETE("", sr.handler.DeleteSchedule)
		contentGroup.POST("/archive", sr.handler.ArchiveContent)
		contentGroup.GET("/events", sr.handler.GetContentEvents)
	}

	// User-scoped queries
	scheduleGroup.GET("/events", sr.handler.ListEvents)
	scheduleGroup.GET("/contents", sr.handler.ListContents)
	scheduleGroup.POST("/optimal-times", sr.handler.OptimalTimes)
}
