package service

import (
	"context"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/pkg/cache"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// VersionDetail is a resolved historical version of a lineage
type VersionDetail struct {
	Version     int                    `json:"version"`
	Status      string                 `json:"status"`
	IsCurrent   bool                   `json:"is_current"`
	IsOriginal  bool                   `json:"is_original"`
	Snapshot    domain.ContentSnapshot `json:"snapshot"`
	Changes     []domain.FieldChange   `json:"changes,omitempty"`
	AmendmentID string                 `json:"amendment_id,omitempty"`
}

// VersionService reconstructs a lineage's history from its amendment
// trail. The first publication is always version 1; each approved
// amendment adds one. Pending and rejected amendments appear in the
// history but never resolve as the current state.
type VersionService struct {
	amendments  repository.AmendmentRepository
	contents    repository.ContentRepository
	submissions repository.SubmissionRepository
	cache       cache.Service
}

func NewVersionService(
	amendments repository.AmendmentRepository,
	contents repository.ContentRepository,
	submissions repository.SubmissionRepository,
	cacheSvc cache.Service,
) *VersionService {
	return &VersionService{
		amendments:  amendments,
		contents:    contents,
		submissions: submissions,
		cache:       cacheSvc,
	}
}

// History returns the lineage's version entries, newest first, ending
// with the synthetic original-publication entry.
func (s *VersionService) History(ctx context.Context, submissionID, userID string, isAdmin bool) ([]domain.VersionEntry, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && submission.UserID != userID {
		return nil, &common.NotFoundError{Resource: "submission", ID: submissionID}
	}

	cacheKey := cache.PrefixVersions + submissionID
	if s.cache != nil && s.cache.IsAvailable() {
		var cached []domain.VersionEntry
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	amendments, err := s.amendments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	currentVersion := 1
	if submission.IsPublished() {
		content, err := s.contents.FindBySubmissionID(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		currentVersion = content.CurrentVersion
	} else {
		currentVersion = submission.RevisionCount
		if currentVersion < 1 {
			currentVersion = 1
		}
	}

	entries := make([]domain.VersionEntry, 0, len(amendments)+1)
	for _, a := range amendments {
		entries = append(entries, domain.VersionEntry{
			Version:     a.VersionNumber,
			AmendmentID: a.ID,
			Status:      a.Status,
			IsCurrent:   a.Status == domain.AmendmentStatusApproved && a.VersionNumber == currentVersion,
			SubmittedBy: a.UserID,
			ReviewedBy:  a.ReviewedBy,
			ReviewedAt:  a.ReviewedAt,
			Changes:     a.ChangedFields.Data(),
			CreatedAt:   a.CreatedAt,
		})
	}

	entries = append(entries, domain.VersionEntry{
		Version:     1,
		Status:      submission.Status,
		IsCurrent:   currentVersion == 1,
		IsOriginal:  true,
		SubmittedBy: submission.UserID,
		ReviewedBy:  submission.ReviewedBy,
		ReviewedAt:  submission.ReviewedAt,
		CreatedAt:   submission.CreatedAt,
	})

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.Set(ctx, cacheKey, entries, cache.TTLVersionHistory); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("version history cache write failed")
		}
	}

	return entries, nil
}

// GetVersion resolves a specific version's full state. Version 1 is
// the original intake state kept on the submission; the current
// version reads from the live record; any other version resolves from
// its amendment's proposed snapshot.
func (s *VersionService) GetVersion(ctx context.Context, submissionID string, version int, userID string, isAdmin bool) (*VersionDetail, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && submission.UserID != userID {
		return nil, &common.NotFoundError{Resource: "submission", ID: submissionID}
	}
	if version < 1 {
		return nil, &common.ValidationError{Field: "version", Reason: "must be a positive integer"}
	}

	var content *domain.ContentItem
	if submission.IsPublished() {
		content, err = s.contents.FindBySubmissionID(ctx, submissionID)
		if err != nil {
			return nil, err
		}
	}

	if content != nil && version == content.CurrentVersion {
		return &VersionDetail{
			Version:    version,
			Status:     domain.AmendmentStatusApproved,
			IsCurrent:  true,
			IsOriginal: version == 1,
			Snapshot:   content.Snapshot(),
		}, nil
	}

	if version == 1 {
		return &VersionDetail{
			Version:    1,
			Status:     submission.Status,
			IsOriginal: true,
			Snapshot:   submission.Content.Data(),
		}, nil
	}

	amendments, err := s.amendments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	// Rejected attempts can share a version number with the approved
	// one; the approved amendment wins the resolution.
	var match *domain.AmendmentRequest
	for i := range amendments {
		a := &amendments[i]
		if a.VersionNumber != version {
			continue
		}
		if a.Status == domain.AmendmentStatusApproved {
			match = a
			break
		}
		if match == nil {
			match = a
		}
	}
	if match != nil {
		return &VersionDetail{
			Version:     version,
			Status:      match.Status,
			Snapshot:    match.ProposedChanges.Data(),
			Changes:     match.ChangedFields.Data(),
			AmendmentID: match.ID,
		}, nil
	}

	return nil, &common.NotFoundError{Resource: "version", ID: submissionID}
}
