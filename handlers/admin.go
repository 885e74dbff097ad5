package handlers

import (
	"net/http"

	"knead/models"
	"knead/services/approval"
	"knead/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations on masseur
// applications.
type AdminHandler struct {
	Approval approval.ApprovalService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(approvalSvc approval.ApprovalService) *AdminHandler {
	return &AdminHandler{Approval: approvalSvc}
}

// ListApplicationsHandler returns applications by status. Every
// administrative load runs the repair pass first, so a grant that failed
// during an earlier approval converges here.
func (ah *AdminHandler) ListApplicationsHandler(c *gin.Context) {
	status := models.ApplicationStatus(c.DefaultQuery("status", string(models.ApplicationPending)))

	apps, err := ah.Approval.ListApplications(status)
	if err != nil {
		zap.L().Error("Failed to list applications", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list applications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ApproveApplicationHandler approves a masseur application and grants the
// provider capability.
func (ah *AdminHandler) ApproveApplicationHandler(c *gin.Context) {
	masseurID := c.Param("masseurId")
	if err := ah.Approval.Approve(masseurID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application approved"})
}

// RejectApplicationHandler rejects a masseur application and revokes the
// provider capability.
func (ah *AdminHandler) RejectApplicationHandler(c *gin.Context) {
	masseurID := c.Param("masseurId")
	if err := ah.Approval.Reject(masseurID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application rejected"})
}
