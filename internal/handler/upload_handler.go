package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/service"
	"github.com/openheritage/heritage-backend/pkg/storage"
)

// UploadHandler proxies the blob store for clients that stage files
// before filing a submission or amendment
type UploadHandler struct {
	uploader FileUploader
	storage  service.FileStorage
}

func NewUploadHandler(uploader FileUploader, fileStorage service.FileStorage) *UploadHandler {
	return &UploadHandler{uploader: uploader, storage: fileStorage}
}

// Upload stores a single file and returns its URL and deletion handle
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, errUploadsDisabled.Error())
		return
	}

	category := c.PostForm("category")
	prefix, ok := storage.PrefixFor(category)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "category must be one of content, consent, translation, verification")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key := storage.GenerateKey(prefix, header.Filename)

	result, err := h.uploader.Upload(c.Request.Context(), key, file, contentType, header.Size)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, gin.H{
		"url":       result.URL,
		"key":       result.Key,
		"cdn_url":   result.CDNURL,
		"file_type": fileTypeOf(contentType),
		"size":      header.Size,
	})
}

// Delete removes a staged file by its key. Only keys under the known
// upload prefixes are accepted.
func (h *UploadHandler) Delete(c *gin.Context) {
	if h.storage == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, errUploadsDisabled.Error())
		return
	}

	key := c.Query("key")
	if key == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "key is required")
		return
	}
	if !storage.ValidKey(key) {
		common.ErrorResponse(c, http.StatusBadRequest, "unrecognized storage key")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), key); err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, gin.H{"deleted": true})
}
