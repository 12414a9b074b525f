package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

type TimetableHandler struct {
	BaseHandler
	timetableService services.TimetableService
}

func NewTimetableHandler(timetableService services.TimetableService, logger utils.Logger) *TimetableHandler {
	return &TimetableHandler{
		BaseHandler:      NewBaseHandler(logger),
		timetableService: timetableService,
	}
}

func (h *TimetableHandler) List(c *gin.Context) {
	events, err := h.timetableService.List(c.Request.Context(), c.Query("classCode"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events, "count": len(events)})
}

func (h *TimetableHandler) Create(c *gin.Context) {
	h.LogRequest(c, "create timetable event")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.TimetableEventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	event, err := h.timetableService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

func (h *TimetableHandler) Update(c *gin.Context) {
	h.LogRequest(c, "update timetable event")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.TimetableEventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	event, err := h.timetableService.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func (h *TimetableHandler) Delete(c *gin.Context) {
	h.LogRequest(c, "delete timetable event")

	if err := h.timetableService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Timetable event deleted."})
}
