package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

// maxWorkbookSize caps .xlsx uploads at 2 MiB.
const maxWorkbookSize = 2 << 20

type ApprovalHandler struct {
	BaseHandler
	approvalService services.ApprovalService
}

func NewApprovalHandler(approvalService services.ApprovalService, logger utils.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		BaseHandler:     NewBaseHandler(logger),
		approvalService: approvalService,
	}
}

func (h *ApprovalHandler) Add(c *gin.Context) {
	h.LogRequest(c, "add approved email")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.ApprovedEmailCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	approval, err := h.approvalService.Add(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "approvedEmail": approval})
}

func (h *ApprovalHandler) BulkAdd(c *gin.Context) {
	h.LogRequest(c, "bulk add approved emails")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.BulkApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	result, err := h.approvalService.BulkAdd(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// BulkUpload accepts a multipart form with a "file" field holding an .xlsx
// workbook and an optional "classCode" field used for rows without one.
func (h *ApprovalHandler) BulkUpload(c *gin.Context) {
	h.LogRequest(c, "bulk upload approved emails")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondError(c, services.NewValidationError("A workbook file is required."))
		return
	}
	if fileHeader.Size > maxWorkbookSize {
		h.RespondError(c, services.NewValidationError("Workbook file is too large."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondError(c, services.NewValidationError("Could not read workbook file."))
		return
	}
	defer file.Close()

	result, err := h.approvalService.BulkAddFromWorkbook(c.Request.Context(), file, c.PostForm("classCode"), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *ApprovalHandler) List(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	approvals, err := h.approvalService.List(c.Request.Context(), c.Query("classCode"), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "approvedEmails": approvals, "count": len(approvals)})
}

func (h *ApprovalHandler) Delete(c *gin.Context) {
	h.LogRequest(c, "delete approved email")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	if err := h.approvalService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Approved email removed."})
}

// CheckStatus is the public pre-registration probe.
func (h *ApprovalHandler) CheckStatus(c *gin.Context) {
	status, err := h.approvalService.CheckStatus(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": status})
}
