package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// RespondError maps any error onto the envelope. Typed AppErrors carry their
// own status; everything else is a generic 500.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	if appErr, ok := services.AsAppError(err); ok {
		c.JSON(appErr.Status, ErrorResponse{Success: false, Message: appErr.Message})
		return
	}
	h.LogError(c, err, "unhandled error", "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Message: "Internal server error",
	})
}

// RespondBindError maps request decoding failures to 400.
func (h *BaseHandler) RespondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: "Invalid request body: " + err.Error(),
	})
}
