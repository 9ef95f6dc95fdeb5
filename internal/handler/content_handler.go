package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/internal/service"
)

type ContentHandler struct {
	contents *service.ContentService
	search   *service.SearchService
}

func NewContentHandler(contents *service.ContentService, search *service.SearchService) *ContentHandler {
	return &ContentHandler{contents: contents, search: search}
}

// List returns published records, public tier only for anonymous use
func (h *ContentHandler) List(c *gin.Context) {
	page, perPage := pagination(c)

	items, total, err := h.contents.List(c.Request.Context(), repository.ContentFilter{
		Country:        c.Query("country"),
		CulturalDomain: c.Query("cultural_domain"),
		AccessTier:     domain.AccessTierPublic,
		Language:       c.Query("language"),
		Query:          c.Query("q"),
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, items, common.NewMeta(page, perPage, total))
}

// Get returns a single published record and counts the view
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	h.contents.RecordView(c.Request.Context(), item.ID)
	common.SuccessResponse(c, http.StatusOK, item)
}

// Download counts a download and returns the file URL
func (h *ContentHandler) Download(c *gin.Context) {
	item, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	h.contents.RecordDownload(c.Request.Context(), item.ID)
	common.SuccessResponse(c, http.StatusOK, gin.H{
		"url":       item.ContentURL,
		"file_type": item.ContentFileType,
	})
}

// Search runs a full-text query over the public index
func (h *ContentHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "q is required")
		return
	}
	if !h.search.IsAvailable() {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "search is not available")
		return
	}

	page, perPage := pagination(c)

	resp, err := h.search.Search(c.Request.Context(), query, map[string]string{
		"country":         c.Query("country"),
		"cultural_domain": c.Query("cultural_domain"),
		"language":        c.Query("language"),
		"access_tier":     domain.AccessTierPublic,
	}, page, perPage)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, resp.Results, common.NewMeta(page, perPage, resp.Total))
}
