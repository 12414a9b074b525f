package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

type EmailHandler struct {
	BaseHandler
	mailerService services.MailerService
}

func NewEmailHandler(mailerService services.MailerService, logger utils.Logger) *EmailHandler {
	return &EmailHandler{
		BaseHandler:   NewBaseHandler(logger),
		mailerService: mailerService,
	}
}

// SendBulk queues one message per approved recipient of the class and returns
// the batch record; delivery happens asynchronously.
func (h *EmailHandler) SendBulk(c *gin.Context) {
	h.LogRequest(c, "send bulk email")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.BulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	batch, err := h.mailerService.SendBulk(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Bulk email dispatched.",
		"batch":   batch,
	})
}
