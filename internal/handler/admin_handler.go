package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/internal/service"
	"github.com/openheritage/heritage-backend/pkg/cache"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

type AdminHandler struct {
	submissions    *service.SubmissionService
	submissionRepo repository.SubmissionRepository
	amendmentRepo  repository.AmendmentRepository
	cache          cache.Service
}

func NewAdminHandler(
	submissions *service.SubmissionService,
	submissionRepo repository.SubmissionRepository,
	amendmentRepo repository.AmendmentRepository,
	cacheSvc cache.Service,
) *AdminHandler {
	return &AdminHandler{
		submissions:    submissions,
		submissionRepo: submissionRepo,
		amendmentRepo:  amendmentRepo,
		cache:          cacheSvc,
	}
}

type adminStats struct {
	Submissions map[string]int64 `json:"submissions"`
	Amendments  map[string]int64 `json:"amendments"`
}

// Stats returns dashboard counters grouped by status
func (h *AdminHandler) Stats(c *gin.Context) {
	cacheKey := cache.PrefixStats + "admin"
	if h.cache != nil && h.cache.IsAvailable() {
		var cached adminStats
		if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
			common.SuccessResponse(c, http.StatusOK, cached)
			return
		}
	}

	subCounts, err := h.submissionRepo.CountByStatus(c.Request.Context())
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	amdCounts, err := h.amendmentRepo.CountByStatus(c.Request.Context())
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	stats := adminStats{Submissions: subCounts, Amendments: amdCounts}

	if h.cache != nil && h.cache.IsAvailable() {
		if err := h.cache.Set(c.Request.Context(), cacheKey, stats, cache.TTLStats); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("stats cache write failed")
		}
	}

	common.SuccessResponse(c, http.StatusOK, stats)
}

// ListSubmissions returns the review queue
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	page, perPage := pagination(c)

	submissions, total, err := h.submissions.ListAll(c.Request.Context(), repository.SubmissionFilter{
		UserID:  c.Query("user_id"),
		Status:  c.Query("status"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, submissions, common.NewMeta(page, perPage, total))
}

// GetSubmission returns one submission for review
func (h *AdminHandler) GetSubmission(c *gin.Context) {
	submission, err := h.submissions.Get(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), true)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, submission)
}

// ReviewSubmission publishes or rejects a pending submission
func (h *AdminHandler) ReviewSubmission(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "action is required")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		common.ErrorResponse(c, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	submission, err := h.submissions.Review(
		c.Request.Context(),
		c.Param("id"),
		middleware.GetUserID(c),
		req.Action == "approve",
		req.Notes,
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, submission)
}

// DeleteSubmission removes a submission, its record and its files
func (h *AdminHandler) DeleteSubmission(c *gin.Context) {
	if err := h.submissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, gin.H{"deleted": true})
}
