package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/middleware"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/calendar"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/content"
	"github.com/DeMaestro5/Khronos-api-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var log = logger.NewLogger()

// ScheduleHandler handles HTTP requests for content scheduling
type ScheduleHandler struct {
	service  calendar.Service
	contents content.Repository
	audit    *logrus.Logger
}

// NewScheduleHandler creates a new schedule handler instance. The audit
// logger records schedule mutations as structured JSON lines.
func NewScheduleHandler(service calendar.Service, contents content.Repository, audit *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, contents: contents, audit: audit}
}

// ScheduleResponse is the payload returned after a create or reschedule.
type ScheduleResponse struct {
	Master         *calendar.CalendarEvent  `json:"master"`
	Events         []calendar.CalendarEvent `json:"events"`
	FailedChildren int                      `json:"failed_children"`
}

// ScheduleContent creates the calendar event tree for a content item.
func (h *ScheduleHandler) ScheduleContent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ref, ok := h.loadContentRef(c)
	if !ok {
		return
	}

	var req calendar.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ScheduleContent(c.Request.Context(), ref, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.contents.UpdateStatus(c.Request.Context(), ref.ID, content.StatusScheduled); err != nil {
		log.Error("failed to mark content as scheduled", zap.Error(err))
	}

	events := result.Events()
	middleware.RecordScheduledEvents(len(events), result.FailedChildren())
	h.audit.WithFields(logrus.Fields{
		"action":          "schedule",
		"content_id":      ref.ID.String(),
		"user_id":         userID.String(),
		"events_created":  len(events),
		"failed_children": result.FailedChildren(),
	}).Info("content scheduled")

	c.JSON(http.StatusCreated, ScheduleResponse{
		Master:         result.Master,
		Events:         events,
		FailedChildren: result.FailedChildren(),
	})
}

// RescheduleContent replaces the content's event tree with one built from the
// new schedule.
func (h *ScheduleHandler) RescheduleContent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ref, ok := h.loadContentRef(c)
	if !ok {
		return
	}

	var req calendar.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RescheduleContent(c.Request.Context(), ref, req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events := result.Events()
	middleware.RecordScheduledEvents(len(events), result.FailedChildren())
	h.audit.WithFields(logrus.Fields{
		"action":          "reschedule",
		"content_id":      ref.ID.String(),
		"user_id":         userID.String(),
		"events_created":  len(events),
		"failed_children": result.FailedChildren(),
	}).Info("content rescheduled")

	c.JSON(http.StatusOK, ScheduleResponse{
		Master:         result.Master,
		Events:         events,
		FailedChildren: result.FailedChildren(),
	})
}

// UpdateSchedule applies top-level schedule changes to the master event only.
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content ID"})
		return
	}

	var req calendar.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.service.UpdateSchedule(c.Request.Context(), contentID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// DeleteSchedule removes every calendar event for the content item.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content ID"})
		return
	}

	if err := h.service.RemoveEventsForContent(c.Request.Context(), contentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "schedule removed"})
}

// ArchiveContent archives the content item and either cancels or deletes its
// calendar events.
func (h *ScheduleHandler) ArchiveContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content ID"})
		return
	}

	var req struct {
		DeleteEvents bool `json:"delete_events"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	affected, err := h.service.ArchiveContent(c.Request.Context(), contentID, req.DeleteEvents)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.contents.UpdateStatus(c.Request.Context(), contentID, content.StatusArchived); err != nil {
		log.Error("failed to mark content as archived", zap.Error(err))
	}

	h.audit.WithFields(logrus.Fields{
		"action":          "archive",
		"content_id":      contentID.String(),
		"affected_events": affected,
		"deleted":         req.DeleteEvents,
	}).Info("content archived")

	c.JSON(http.StatusOK, gin.H{
		"affected_events": affected,
		"deleted":         req.DeleteEvents,
	})
}

// GetContentEvents lists the full event tree for a content item.
func (h *ScheduleHandler) GetContentEvents(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content ID"})
		return
	}

	events, err := h.service.GetEventsForContent(c.Request.Context(), contentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// ListEvents lists the authenticated user's events, optionally limited to a
// time window.
func (h *ScheduleHandler) ListEvents(c *gin.Context) {
	var params struct {
		StartTime time.Time `form:"start_time"`
		EndTime   time.Time `form:"end_time"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	events, err := h.service.ListUserEvents(c.Request.Context(), userID, params.StartTime, params.EndTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// ListContents lists the authenticated user's content items.
func (h *ScheduleHandler) ListContents(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.contents.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": items, "total": len(items)})
}

// OptimalTimes ranks candidate publishing slots for the authenticated user.
func (h *ScheduleHandler) OptimalTimes(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req calendar.OptimalTimeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.FindOptimalTimes(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// loadContentRef resolves the :id path parameter into a ContentRef, writing
// the error response itself when resolution fails.
func (h *ScheduleHandler) loadContentRef(c *gin.Context) (calendar.ContentRef, bool) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content ID"})
		return calendar.ContentRef{}, false
	}

	item, err := h.contents.FindByID(c.Request.Context(), contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return calendar.ContentRef{}, false
	}

	return calendar.ContentRef{
		ID:        item.ID,
		UserID:    item.UserID,
		Title:     item.Title,
		Type:      item.Type,
		Platforms: item.Platform,
		Tags:      item.Tags,
	}, true
}

// respondServiceError maps domain errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *calendar.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
