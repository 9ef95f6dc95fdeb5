package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/pkg/cache"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// FileStorage is the subset of object storage the services need
type FileStorage interface {
	Delete(ctx context.Context, key string) error
}

// Mailer sends notification email
type Mailer interface {
	IsConfigured() bool
	Send(to, subject, htmlBody, textBody string) error
}

// Indexer pushes published records into the search index
type Indexer interface {
	IndexContent(ctx context.Context, item *domain.ContentItem) error
	RemoveContent(ctx context.Context, id string) error
}

// AmendmentService implements the amendment lifecycle: submit,
// review, cancel. Object deletions are best effort; failures land in
// the purge queue for the background sweeper.
type AmendmentService struct {
	amendments  repository.AmendmentRepository
	contents    repository.ContentRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	purge       repository.PurgeRepository
	cache       cache.Service
	storage     FileStorage
	mailer      Mailer
	indexer     Indexer
}

func NewAmendmentService(
	amendments repository.AmendmentRepository,
	contents repository.ContentRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	purge repository.PurgeRepository,
	cacheSvc cache.Service,
	storage FileStorage,
	mailer Mailer,
	indexer Indexer,
) *AmendmentService {
	return &AmendmentService{
		amendments:  amendments,
		contents:    contents,
		submissions: submissions,
		users:       users,
		purge:       purge,
		cache:       cacheSvc,
		storage:     storage,
		mailer:      mailer,
		indexer:     indexer,
	}
}

// Submit builds a change set against the lineage's current state and
// files it as a pending amendment. Uploads must already be in storage;
// if the amendment cannot be created they are cleaned up here.
func (s *AmendmentService) Submit(ctx context.Context, userID, submissionID string, edits SnapshotEdits, uploads ChangeSetUploads, reason string) (*domain.AmendmentRequest, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		s.cleanupUploads(ctx, uploads)
		return nil, err
	}
	if submission.UserID != userID {
		// Others' records are invisible, not merely off limits.
		s.cleanupUploads(ctx, uploads)
		return nil, &common.NotFoundError{Resource: "submission", ID: submissionID}
	}
	if submission.Status == domain.SubmissionStatusRejected {
		s.cleanupUploads(ctx, uploads)
		return nil, &common.ValidationError{Field: "submission_id", Reason: "rejected submissions cannot be amended"}
	}

	var baseline domain.ContentSnapshot
	var contentID string
	var previousVersion int

	if submission.IsPublished() {
		content, err := s.contents.FindBySubmissionID(ctx, submissionID)
		if err != nil {
			s.cleanupUploads(ctx, uploads)
			return nil, err
		}
		baseline = content.Snapshot()
		contentID = content.ID
		previousVersion = content.CurrentVersion
	} else {
		baseline = submission.Content.Data()
		previousVersion = submission.RevisionCount
	}

	proposed, changes, err := BuildChangeSet(baseline, edits, uploads)
	if err != nil {
		s.cleanupUploads(ctx, uploads)
		return nil, err
	}

	amendment := &domain.AmendmentRequest{
		ID:                    uuid.NewString(),
		SubmissionID:          submissionID,
		ContentID:             contentID,
		UserID:                userID,
		VersionNumber:         previousVersion + 1,
		PreviousVersionNumber: previousVersion,
		Status:                domain.AmendmentStatusPending,
		ProposedChanges:       datatypes.NewJSONType(proposed),
		CurrentSnapshot:       datatypes.NewJSONType(baseline),
		ChangedFields:         datatypes.NewJSONType(changes),
		Reason:                reason,
	}

	if err := s.amendments.CreatePending(ctx, amendment); err != nil {
		s.cleanupUploads(ctx, uploads)
		return nil, err
	}

	s.invalidateVersionCache(ctx, submissionID)

	return amendment, nil
}

// Review approves or rejects a pending amendment. Approval overwrites
// the lineage's current state with the proposed snapshot and advances
// the version counters; rejection leaves the record untouched and
// discards the amendment's uploaded files.
func (s *AmendmentService) Review(ctx context.Context, amendmentID, reviewerID string, approve bool, notes string) (*domain.AmendmentRequest, error) {
	amendment, err := s.amendments.FindByID(ctx, amendmentID)
	if err != nil {
		return nil, err
	}
	if !amendment.IsPending() {
		return nil, common.ErrAlreadyProcessed
	}

	now := time.Now()
	amendment.ReviewedBy = reviewerID
	amendment.ReviewedAt = &now
	amendment.ReviewNotes = notes

	if approve {
		err = s.approve(ctx, amendment)
	} else {
		err = s.reject(ctx, amendment)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateVersionCache(ctx, amendment.SubmissionID)
	s.notifyDecision(amendment, approve)

	return amendment, nil
}

func (s *AmendmentService) approve(ctx context.Context, amendment *domain.AmendmentRequest) error {
	submission, err := s.submissions.FindByID(ctx, amendment.SubmissionID)
	if err != nil {
		return err
	}

	baseline := amendment.CurrentSnapshot.Data()
	proposed := amendment.ProposedChanges.Data()
	replaced, _ := FileKeyDiff(baseline, proposed)

	amendment.Status = domain.AmendmentStatusApproved

	if submission.IsPublished() {
		content, err := s.contents.FindBySubmissionID(ctx, amendment.SubmissionID)
		if err != nil {
			return err
		}

		// The lineage may have been published directly after this
		// amendment was filed, so its number can be stale. Renumber
		// against the live record; the version must always advance.
		if amendment.PreviousVersionNumber != content.CurrentVersion {
			amendment.PreviousVersionNumber = content.CurrentVersion
			amendment.VersionNumber = content.CurrentVersion + 1
		}

		content.ApplySnapshot(proposed)
		content.CurrentVersion = amendment.VersionNumber
		content.TotalAmendments++
		content.LastAmendmentAt = amendment.ReviewedAt

		if err := s.amendments.ApproveAmendment(ctx, amendment, content, nil); err != nil {
			return err
		}

		s.deleteObjects(ctx, replaced, "amendment_approve")
		s.invalidateContentCache(ctx, content.ID)
		s.reindex(ctx, content)
		return nil
	}

	// First-ever approval: the amendment publishes the submission,
	// creating the live record at version 1.
	content := &domain.ContentItem{
		ID:              uuid.NewString(),
		SubmissionID:    submission.ID,
		OwnerID:         submission.UserID,
		CurrentVersion:  1,
		TotalAmendments: 0,
		ApprovedBy:      amendment.ReviewedBy,
		ApprovedAt:      amendment.ReviewedAt,
	}
	content.ApplySnapshot(proposed)

	submission.ReviewedBy = amendment.ReviewedBy
	submission.ReviewedAt = amendment.ReviewedAt
	submission.ReviewNotes = amendment.ReviewNotes
	submission.RevisionCount = amendment.VersionNumber

	if err := s.amendments.ApproveAmendment(ctx, amendment, content, submission); err != nil {
		return err
	}
	submission.Status = domain.SubmissionStatusPublished

	s.deleteObjects(ctx, replaced, "amendment_approve")
	s.invalidateContentCache(ctx, content.ID)
	s.reindex(ctx, content)
	return nil
}

func (s *AmendmentService) reject(ctx context.Context, amendment *domain.AmendmentRequest) error {
	amendment.Status = domain.AmendmentStatusRejected

	if err := s.amendments.RejectAmendment(ctx, amendment); err != nil {
		return err
	}

	// The record keeps its files; only the amendment's fresh uploads go.
	_, added := FileKeyDiff(amendment.CurrentSnapshot.Data(), amendment.ProposedChanges.Data())
	s.deleteObjects(ctx, added, "amendment_reject")
	return nil
}

// Cancel withdraws the caller's own pending amendment and discards its
// uploaded files.
func (s *AmendmentService) Cancel(ctx context.Context, amendmentID, userID string) error {
	amendment, err := s.amendments.FindByID(ctx, amendmentID)
	if err != nil {
		return err
	}
	if amendment.UserID != userID {
		return &common.NotFoundError{Resource: "amendment", ID: amendmentID}
	}

	if err := s.amendments.CancelPending(ctx, amendmentID, userID); err != nil {
		return err
	}

	_, added := FileKeyDiff(amendment.CurrentSnapshot.Data(), amendment.ProposedChanges.Data())
	s.deleteObjects(ctx, added, "amendment_cancel")
	s.invalidateVersionCache(ctx, amendment.SubmissionID)
	return nil
}

// Get returns an amendment, restricted to its author unless the
// caller is an admin.
func (s *AmendmentService) Get(ctx context.Context, id, userID string, isAdmin bool) (*domain.AmendmentRequest, error) {
	amendment, err := s.amendments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && amendment.UserID != userID {
		return nil, &common.NotFoundError{Resource: "amendment", ID: id}
	}
	return amendment, nil
}

// ListMine returns the caller's amendments
func (s *AmendmentService) ListMine(ctx context.Context, userID, status string, page, perPage int) ([]domain.AmendmentRequest, int64, error) {
	return s.amendments.List(ctx, repository.AmendmentFilter{
		UserID:  userID,
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
}

// ListAll returns amendments across all users, for review queues
func (s *AmendmentService) ListAll(ctx context.Context, filter repository.AmendmentFilter) ([]domain.AmendmentRequest, int64, error) {
	return s.amendments.List(ctx, filter)
}

func (s *AmendmentService) cleanupUploads(ctx context.Context, uploads ChangeSetUploads) {
	var keys []string
	for _, u := range []*FileUpload{uploads.Content, uploads.ConsentFile, uploads.Translation, uploads.VerificationDoc} {
		if u != nil && u.Key != "" {
			keys = append(keys, u.Key)
		}
	}
	s.deleteObjects(ctx, keys, "amendment_submit_failed")
}

func (s *AmendmentService) deleteObjects(ctx context.Context, keys []string, source string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			pkglogger.GetLogger().Warn().
				Err(err).
				Str("key", key).
				Str("source", source).
				Msg("object delete failed, queueing for retry")
			if s.purge != nil {
				if qerr := s.purge.Enqueue(ctx, &domain.FilePurgeItem{
					StorageKey: key,
					Source:     source,
					LastError:  err.Error(),
				}); qerr != nil {
					pkglogger.GetLogger().Error().
						Err(qerr).
						Str("key", key).
						Msg("failed to enqueue purge item")
				}
			}
		}
	}
}

func (s *AmendmentService) invalidateVersionCache(ctx context.Context, submissionID string) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.Delete(ctx, cache.PrefixVersions+submissionID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("version cache invalidation failed")
	}
}

func (s *AmendmentService) invalidateContentCache(ctx context.Context, contentID string) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.Delete(ctx, cache.PrefixContent+contentID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("content cache invalidation failed")
	}
	if err := s.cache.DeletePattern(ctx, cache.PrefixContents+"*"); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("content list cache invalidation failed")
	}
}

func (s *AmendmentService) reindex(ctx context.Context, content *domain.ContentItem) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexContent(ctx, content); err != nil {
		pkglogger.GetLogger().Warn().
			Err(err).
			Str("content_id", content.ID).
			Msg("search reindex failed")
	}
}

func (s *AmendmentService) notifyDecision(amendment *domain.AmendmentRequest, approved bool) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.FindByID(ctx, amendment.UserID)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("notification lookup failed")
			return
		}

		decision := "rejected"
		if approved {
			decision = "approved"
		}

		subject := fmt.Sprintf("Your amendment has been %s", decision)
		text := fmt.Sprintf("Hello %s,\n\nYour amendment (version %d) has been %s.\n",
			user.Name, amendment.VersionNumber, decision)
		if amendment.ReviewNotes != "" {
			text += "\nReviewer notes: " + amendment.ReviewNotes + "\n"
		}
		html := fmt.Sprintf("<p>Hello %s,</p><p>Your amendment (version %d) has been <strong>%s</strong>.</p>",
			user.Name, amendment.VersionNumber, decision)
		if amendment.ReviewNotes != "" {
			html += "<p>Reviewer notes: " + amendment.ReviewNotes + "</p>"
		}

		if err := s.mailer.Send(user.Email, subject, html, text); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("notification email failed")
		}
	}()
}
