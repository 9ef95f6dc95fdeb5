package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/internal/service"
	"github.com/openheritage/heritage-backend/pkg/storage"
)

// FileUploader is the slice of object storage handlers need
type FileUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error)
}

var errUploadsDisabled = errors.New("file uploads are not available")

type AmendmentHandler struct {
	amendments *service.AmendmentService
	versions   *service.VersionService
	uploader   FileUploader
}

func NewAmendmentHandler(amendments *service.AmendmentService, versions *service.VersionService, uploader FileUploader) *AmendmentHandler {
	return &AmendmentHandler{
		amendments: amendments,
		versions:   versions,
		uploader:   uploader,
	}
}

// Submit files a new amendment. Multipart form; only fields present in
// the form are treated as edits, so an empty value clears a field
// while an absent one leaves it alone.
func (h *AmendmentHandler) Submit(c *gin.Context) {
	submissionID := c.PostForm("submission_id")
	if submissionID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "submission_id is required")
		return
	}

	edits := parseSnapshotEdits(c)

	uploads, err := h.collectUploads(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amendment, err := h.amendments.Submit(
		c.Request.Context(),
		middleware.GetUserID(c),
		submissionID,
		edits,
		uploads,
		c.PostForm("reason"),
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, amendment)
}

// ListMine returns the caller's amendments
func (h *AmendmentHandler) ListMine(c *gin.Context) {
	page, perPage := pagination(c)

	amendments, total, err := h.amendments.ListMine(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Query("status"),
		page, perPage,
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, amendments, common.NewMeta(page, perPage, total))
}

// Get returns one amendment with a before/after comparison
func (h *AmendmentHandler) Get(c *gin.Context) {
	amendment, err := h.amendments.Get(
		c.Request.Context(),
		c.Param("id"),
		middleware.GetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, gin.H{
		"amendment": amendment,
		"comparison": gin.H{
			"current":  amendment.CurrentSnapshot.Data(),
			"proposed": amendment.ProposedChanges.Data(),
			"changes":  amendment.ChangedFields.Data(),
		},
	})
}

// Cancel withdraws the caller's pending amendment
func (h *AmendmentHandler) Cancel(c *gin.Context) {
	err := h.amendments.Cancel(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, gin.H{"cancelled": true})
}

// History returns the version trail of a lineage
func (h *AmendmentHandler) History(c *gin.Context) {
	entries, err := h.versions.History(
		c.Request.Context(),
		c.Param("id"),
		middleware.GetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, entries)
}

// GetVersion resolves one historical version's full state
func (h *AmendmentHandler) GetVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "version must be an integer")
		return
	}

	detail, err := h.versions.GetVersion(
		c.Request.Context(),
		c.Param("id"),
		version,
		middleware.GetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, detail)
}

// Review approves or rejects a pending amendment (admin)
func (h *AmendmentHandler) Review(c *gin.Context) {
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
	approve := req.Action == "approve"

	amendment, err := h.amendments.Review(
		c.Request.Context(),
		c.Param("id"),
		middleware.GetUserID(c),
		approve,
		req.Notes,
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	middleware.CountAmendmentDecision(approve)
	common.SuccessResponse(c, http.StatusOK, amendment)
}

// ListAll returns amendments across users for the review queue (admin)
func (h *AmendmentHandler) ListAll(c *gin.Context) {
	page, perPage := pagination(c)

	amendments, total, err := h.amendments.ListAll(c.Request.Context(), repository.AmendmentFilter{
		SubmissionID: c.Query("submission_id"),
		Status:       c.Query("status"),
		Page:         page,
		PerPage:      perPage,
	})
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, amendments, common.NewMeta(page, perPage, total))
}

func (h *AmendmentHandler) collectUploads(c *gin.Context) (service.ChangeSetUploads, error) {
	var uploads service.ChangeSetUploads

	slots := []struct {
		form     string
		category string
		dest     **service.FileUpload
	}{
		{"content_file", "content", &uploads.Content},
		{"consent_file", "consent", &uploads.ConsentFile},
		{"translation_file", "translation", &uploads.Translation},
		{"verification_doc", "verification", &uploads.VerificationDoc},
	}

	for _, slot := range slots {
		header, err := c.FormFile(slot.form)
		if err != nil {
			continue // slot not provided
		}
		if h.uploader == nil {
			return uploads, errUploadsDisabled
		}
		prefix, _ := storage.PrefixFor(slot.category)
		upload, err := h.storeFile(c, header, prefix)
		if err != nil {
			return uploads, err
		}
		*slot.dest = upload
	}

	return uploads, nil
}

func (h *AmendmentHandler) storeFile(c *gin.Context, header *multipart.FileHeader, prefix string) (*service.FileUpload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key := storage.GenerateKey(prefix, header.Filename)

	result, err := h.uploader.Upload(c.Request.Context(), key, file, contentType, header.Size)
	if err != nil {
		return nil, err
	}

	return &service.FileUpload{
		URL:      result.URL,
		Key:      result.Key,
		FileType: fileTypeOf(contentType),
	}, nil
}

func fileTypeOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	default:
		return "document"
	}
}

// parseSnapshotEdits reads sparse edits from the multipart form. Field
// presence, not value, decides whether something counts as an edit.
func parseSnapshotEdits(c *gin.Context) service.SnapshotEdits {
	str := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			return &v
		}
		return nil
	}
	list := func(name string) *[]string {
		v, ok := c.GetPostForm(name)
		if !ok {
			return nil
		}
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return &out
		}
		if v == "" {
			out = []string{}
			return &out
		}
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return &out
	}

	return service.SnapshotEdits{
		Country:              str("country"),
		StateRegion:          str("state_region"),
		Tribe:                str("tribe"),
		Village:              str("village"),
		CulturalDomain:       str("cultural_domain"),
		Title:                str("title"),
		Description:          str("description"),
		Keywords:             list("keywords"),
		Language:             str("language"),
		DateOfRecording:      str("date_of_recording"),
		CulturalSignificance: str("cultural_significance"),
		AccessTier:           str("access_tier"),
		ContentWarnings:      list("content_warnings"),
		WarningOtherText:     str("warning_other_text"),
		BackgroundInfo:       str("background_info"),
		ConsentFileType:      str("consent_file_type"),
		ConsentType:          str("consent_type"),
		ConsentNames:         str("consent_names"),
		ConsentDate:          str("consent_date"),
		PermissionType:       list("permission_type"),
		Duration:             str("duration"),
		DigitalSignature:     str("digital_signature"),
	}
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
