package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/internal/service"
)

type CollaborationHandler struct {
	collabs *service.CollaborationService
}

func NewCollaborationHandler(collabs *service.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{collabs: collabs}
}

// Contributors lists published contributors in a cultural domain
func (h *CollaborationHandler) Contributors(c *gin.Context) {
	contributors, err := h.collabs.Contributors(c.Request.Context(), c.Query("cultural_domain"))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, contributors)
}

// Request files a collaboration request
func (h *CollaborationHandler) Request(c *gin.Context) {
	var req struct {
		RecipientID    string `json:"recipient_id" binding:"required"`
		CulturalDomain string `json:"cultural_domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "recipient_id and cultural_domain are required")
		return
	}

	collab, err := h.collabs.Request(c.Request.Context(), middleware.GetUserID(c), req.RecipientID, req.CulturalDomain)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusCreated, collab)
}

// ListMine returns the caller's collaboration requests
func (h *CollaborationHandler) ListMine(c *gin.Context) {
	collabs, err := h.collabs.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, collabs)
}

// Respond accepts or rejects a pending request
func (h *CollaborationHandler) Respond(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "action is required")
		return
	}
	if req.Action != "accept" && req.Action != "reject" {
		common.ErrorResponse(c, http.StatusBadRequest, "action must be accept or reject")
		return
	}

	collab, err := h.collabs.Respond(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Action == "accept")
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, collab)
}

// CanChat reports whether the caller shares an accepted collaboration
// with another user
func (h *CollaborationHandler) CanChat(c *gin.Context) {
	allowed, err := h.collabs.CanChat(c.Request.Context(), middleware.GetUserID(c), c.Param("user_id"))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, gin.H{"allowed": allowed})
}
