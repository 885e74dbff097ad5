package handlers

import (
	"net/http"

	catalogRepo "knead/database/repository/catalog"
	"knead/middleware"
	"knead/models"
	"knead/services/approval"
	"knead/utils"

	"github.com/gin-gonic/gin"
)

// MasseurHandler exposes masseur applications and customer-facing discovery.
type MasseurHandler struct {
	Approval approval.ApprovalService
	Catalog  catalogRepo.CatalogRepository
}

// NewMasseurHandler creates a new MasseurHandler.
func NewMasseurHandler(approvalSvc approval.ApprovalService, catalog catalogRepo.CatalogRepository) *MasseurHandler {
	return &MasseurHandler{Approval: approvalSvc, Catalog: catalog}
}

// ApplyHandler creates a pending application for the signed-in user,
// superseding a rejected one.
func (h *MasseurHandler) ApplyHandler(c *gin.Context) {
	var profile models.MasseurProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	authCtx := middleware.GetAuthContext(c)
	app, err := h.Approval.Apply(authCtx.UserID, profile)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "application failed", err.Error())
		return
	}
	c.JSON(http.StatusCreated, app)
}

// DiscoverHandler lists the masseurs visible to customers. Only approved
// applications appear here.
func (h *MasseurHandler) DiscoverHandler(c *gin.Context) {
	masseurs, err := h.Approval.Discover()
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"masseurs": masseurs})
}

// CatalogHandler lists the massage-type catalog.
func (h *MasseurHandler) CatalogHandler(c *gin.Context) {
	types, err := h.Catalog.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"massageTypes": types})
}
