package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/middleware"
	"github.com/openheritage/heritage-backend/internal/service"
	"github.com/openheritage/heritage-backend/pkg/storage"
)

type SubmissionHandler struct {
	submissions *service.SubmissionService
	uploader    FileUploader
}

func NewSubmissionHandler(submissions *service.SubmissionService, uploader FileUploader) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, uploader: uploader}
}

// Create files a new submission. Multipart form with the full intake
// payload plus the content, consent, translation and verification
// files.
func (h *SubmissionHandler) Create(c *gin.Context) {
	snapshot := snapshotFromForm(c)

	uploads, err := h.collectUploads(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	applyUploadsToSnapshot(&snapshot, uploads)

	ethicsAgreed := c.PostForm("ethics_agreed") == "true"

	submission, err := h.submissions.Create(c.Request.Context(), middleware.GetUserID(c), snapshot, ethicsAgreed)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, submission)
}

// Resubmit updates a rejected submission and requeues it for review
func (h *SubmissionHandler) Resubmit(c *gin.Context) {
	edits := parseSnapshotEdits(c)

	uploads, err := h.collectUploads(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.submissions.Resubmit(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), edits, uploads)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, submission)
}

// ListMine returns the caller's submissions
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	page, perPage := pagination(c)

	submissions, total, err := h.submissions.ListMine(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Query("status"),
		page, perPage,
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, http.StatusOK, submissions, common.NewMeta(page, perPage, total))
}

// Get returns one submission
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.submissions.Get(
		c.Request.Context(),
		c.Param("id"),
		middleware.GetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		common.ErrorFrom(c, err)
		return
	}
	common.SuccessResponse(c, http.StatusOK, submission)
}

func (h *SubmissionHandler) collectUploads(c *gin.Context) (service.ChangeSetUploads, error) {
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
			continue
		}
		if h.uploader == nil {
			return uploads, errUploadsDisabled
		}

		file, err := header.Open()
		if err != nil {
			return uploads, err
		}

		contentType := header.Header.Get("Content-Type")
		prefix, _ := storage.PrefixFor(slot.category)
		key := storage.GenerateKey(prefix, header.Filename)

		result, err := h.uploader.Upload(c.Request.Context(), key, file, contentType, header.Size)
		file.Close()
		if err != nil {
			return uploads, err
		}

		*slot.dest = &service.FileUpload{
			URL:      result.URL,
			Key:      result.Key,
			FileType: fileTypeOf(contentType),
		}
	}

	return uploads, nil
}

func snapshotFromForm(c *gin.Context) domain.ContentSnapshot {
	edits := parseSnapshotEdits(c)

	var snapshot domain.ContentSnapshot
	deref := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	derefSlice := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = *src
		}
	}

	deref(&snapshot.Country, edits.Country)
	deref(&snapshot.StateRegion, edits.StateRegion)
	deref(&snapshot.Tribe, edits.Tribe)
	deref(&snapshot.Village, edits.Village)
	deref(&snapshot.CulturalDomain, edits.CulturalDomain)
	deref(&snapshot.Title, edits.Title)
	deref(&snapshot.Description, edits.Description)
	derefSlice(&snapshot.Keywords, edits.Keywords)
	deref(&snapshot.Language, edits.Language)
	deref(&snapshot.DateOfRecording, edits.DateOfRecording)
	deref(&snapshot.CulturalSignificance, edits.CulturalSignificance)
	deref(&snapshot.AccessTier, edits.AccessTier)
	derefSlice(&snapshot.ContentWarnings, edits.ContentWarnings)
	deref(&snapshot.WarningOtherText, edits.WarningOtherText)
	deref(&snapshot.BackgroundInfo, edits.BackgroundInfo)
	deref(&snapshot.Consent.FileType, edits.ConsentFileType)
	deref(&snapshot.Consent.ConsentType, edits.ConsentType)
	deref(&snapshot.Consent.ConsentNames, edits.ConsentNames)
	deref(&snapshot.Consent.ConsentDate, edits.ConsentDate)
	derefSlice(&snapshot.Consent.PermissionType, edits.PermissionType)
	deref(&snapshot.Consent.Duration, edits.Duration)
	deref(&snapshot.Consent.DigitalSignature, edits.DigitalSignature)

	return snapshot
}

func applyUploadsToSnapshot(s *domain.ContentSnapshot, u service.ChangeSetUploads) {
	if u.Content != nil {
		s.ContentURL = u.Content.URL
		s.ContentKey = u.Content.Key
		s.ContentFileType = u.Content.FileType
	}
	if u.ConsentFile != nil {
		s.Consent.FileURL = u.ConsentFile.URL
		s.Consent.FileKey = u.ConsentFile.Key
		if s.Consent.FileType == "" {
			s.Consent.FileType = u.ConsentFile.FileType
		}
	}
	if u.Translation != nil {
		s.TranslationFileURL = u.Translation.URL
		s.TranslationFileKey = u.Translation.Key
	}
	if u.VerificationDoc != nil {
		s.VerificationDocURL = u.VerificationDoc.URL
		s.VerificationDocKey = u.VerificationDoc.Key
	}
}
