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

// SubmissionService handles intake: new submissions, resubmission of
// rejected ones, and the publish/reject review decision.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	contents    repository.ContentRepository
	users       repository.UserRepository
	purge       repository.PurgeRepository
	cache       cache.Service
	storage     FileStorage
	mailer      Mailer
	indexer     Indexer
}

func NewSubmissionService(
	submissions repository.SubmissionRepository,
	contents repository.ContentRepository,
	users repository.UserRepository,
	purge repository.PurgeRepository,
	cacheSvc cache.Service,
	storage FileStorage,
	mailer Mailer,
	indexer Indexer,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		contents:    contents,
		users:       users,
		purge:       purge,
		cache:       cacheSvc,
		storage:     storage,
		mailer:      mailer,
		indexer:     indexer,
	}
}

// Create files a new submission for review
func (s *SubmissionService) Create(ctx context.Context, userID string, snapshot domain.ContentSnapshot, ethicsAgreed bool) (*domain.Submission, error) {
	if snapshot.Title == "" {
		return nil, &common.ValidationError{Field: "title", Reason: "required"}
	}
	if !ethicsAgreed {
		return nil, &common.ValidationError{Field: "ethics_agreed", Reason: "ethics agreement is required"}
	}
	if snapshot.AccessTier == "" {
		snapshot.AccessTier = domain.AccessTierPublic
	}

	submission := &domain.Submission{
		ID:           uuid.NewString(),
		UserID:       userID,
		Status:       domain.SubmissionStatusPending,
		Content:      datatypes.NewJSONType(snapshot),
		EthicsAgreed: ethicsAgreed,
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// Resubmit updates a rejected submission and puts it back in the
// review queue.
func (s *SubmissionService) Resubmit(ctx context.Context, id, userID string, edits SnapshotEdits, uploads ChangeSetUploads) (*domain.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.UserID != userID {
		return nil, &common.NotFoundError{Resource: "submission", ID: id}
	}
	if submission.Status != domain.SubmissionStatusRejected {
		return nil, &common.ValidationError{Field: "status", Reason: "only rejected submissions can be resubmitted"}
	}

	merged, _, err := BuildChangeSet(submission.Content.Data(), edits, uploads)
	if err != nil {
		return nil, err
	}

	submission.Content = datatypes.NewJSONType(merged)
	submission.Status = domain.SubmissionStatusPending
	submission.RevisionCount++
	submission.ReviewedBy = ""
	submission.ReviewedAt = nil
	submission.ReviewNotes = ""

	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// Get returns a submission, restricted to its owner unless the caller
// is an admin.
func (s *SubmissionService) Get(ctx context.Context, id, userID string, isAdmin bool) (*domain.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && submission.UserID != userID {
		return nil, &common.NotFoundError{Resource: "submission", ID: id}
	}
	return submission, nil
}

// ListMine returns the caller's submissions
func (s *SubmissionService) ListMine(ctx context.Context, userID, status string, page, perPage int) ([]domain.Submission, int64, error) {
	return s.submissions.List(ctx, repository.SubmissionFilter{
		UserID:  userID,
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
}

// ListAll returns submissions across users, for the review queue
func (s *SubmissionService) ListAll(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, int64, error) {
	return s.submissions.List(ctx, filter)
}

// Review publishes or rejects a pending submission. Publication
// creates the live record at version 1.
func (s *SubmissionService) Review(ctx context.Context, id, reviewerID string, approve bool, notes string) (*domain.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status != domain.SubmissionStatusPending {
		return nil, common.ErrAlreadyProcessed
	}

	now := time.Now()
	submission.ReviewedBy = reviewerID
	submission.ReviewedAt = &now
	submission.ReviewNotes = notes

	if approve {
		content := &domain.ContentItem{
			ID:              uuid.NewString(),
			SubmissionID:    submission.ID,
			OwnerID:         submission.UserID,
			CurrentVersion:  1,
			TotalAmendments: 0,
			ApprovedBy:      reviewerID,
			ApprovedAt:      &now,
		}
		content.ApplySnapshot(submission.Content.Data())

		if err := s.submissions.Publish(ctx, submission, content); err != nil {
			return nil, err
		}
		submission.Status = domain.SubmissionStatusPublished

		s.invalidateListCache(ctx)
		if s.indexer != nil {
			if err := s.indexer.IndexContent(ctx, content); err != nil {
				pkglogger.GetLogger().Warn().Err(err).Str("content_id", content.ID).Msg("search index failed")
			}
		}
	} else {
		if err := s.submissions.Reject(ctx, submission); err != nil {
			return nil, err
		}
		submission.Status = domain.SubmissionStatusRejected
	}

	s.notifyDecision(submission, approve)
	return submission, nil
}

// Delete removes a submission, its live record if any, and all stored
// files. Admin only; file deletion is best effort via the purge queue.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return err
	}

	snapshot := submission.Content.Data()
	var keys []string

	if submission.IsPublished() {
		content, err := s.contents.FindBySubmissionID(ctx, id)
		if err == nil {
			snapshot = content.Snapshot()
			if derr := s.contents.Delete(ctx, content.ID); derr != nil {
				return derr
			}
			if s.indexer != nil {
				if ierr := s.indexer.RemoveContent(ctx, content.ID); ierr != nil {
					pkglogger.GetLogger().Warn().Err(ierr).Msg("search remove failed")
				}
			}
			s.invalidateListCache(ctx)
		}
	}

	for _, key := range []string{snapshot.ContentKey, snapshot.Consent.FileKey, snapshot.TranslationFileKey, snapshot.VerificationDocKey} {
		if key != "" {
			keys = append(keys, key)
		}
	}

	if err := s.submissions.Delete(ctx, id); err != nil {
		return err
	}

	s.deleteObjects(ctx, keys)
	return nil
}

func (s *SubmissionService) deleteObjects(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("object delete failed, queueing for retry")
			if s.purge != nil {
				if qerr := s.purge.Enqueue(ctx, &domain.FilePurgeItem{
					StorageKey: key,
					Source:     "submission_delete",
					LastError:  err.Error(),
				}); qerr != nil {
					pkglogger.GetLogger().Error().Err(qerr).Str("key", key).Msg("failed to enqueue purge item")
				}
			}
		}
	}
}

func (s *SubmissionService) invalidateListCache(ctx context.Context) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.PrefixContents+"*"); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("content list cache invalidation failed")
	}
}

func (s *SubmissionService) notifyDecision(submission *domain.Submission, approved bool) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.FindByID(ctx, submission.UserID)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("notification lookup failed")
			return
		}

		decision := "rejected"
		if approved {
			decision = "published"
		}

		title := submission.Content.Data().Title
		subject := fmt.Sprintf("Your submission has been %s", decision)
		text := fmt.Sprintf("Hello %s,\n\nYour submission %q has been %s.\n", user.Name, title, decision)
		if submission.ReviewNotes != "" {
			text += "\nReviewer notes: " + submission.ReviewNotes + "\n"
		}
		html := fmt.Sprintf("<p>Hello %s,</p><p>Your submission <strong>%s</strong> has been <strong>%s</strong>.</p>",
			user.Name, title, decision)
		if submission.ReviewNotes != "" {
			html += "<p>Reviewer notes: " + submission.ReviewNotes + "</p>"
		}

		if err := s.mailer.Send(user.Email, subject, html, text); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("notification email failed")
		}
	}()
}
