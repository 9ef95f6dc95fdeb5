package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

// AmendmentFilter narrows amendment listings
type AmendmentFilter struct {
	UserID       string
	SubmissionID string
	Status       string
	Page         int
	PerPage      int
}

type AmendmentRepository interface {
	// CreatePending inserts a new pending amendment, failing with
	// common.ErrPendingExists if the lineage already has one.
	CreatePending(ctx context.Context, amendment *domain.AmendmentRequest) error

	FindByID(ctx context.Context, id string) (*domain.AmendmentRequest, error)
	FindPendingBySubmission(ctx context.Context, submissionID string) (*domain.AmendmentRequest, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]domain.AmendmentRequest, error)
	List(ctx context.Context, filter AmendmentFilter) ([]domain.AmendmentRequest, int64, error)

	// ApproveAmendment commits an approval in one transaction: the
	// amendment's status flips from pending, its version columns are
	// persisted (they may have been renumbered), and the live record
	// is written with the approved state. When submission is non-nil the
	// lineage had no live record yet, so content is inserted fresh and
	// the submission flips from pending to published. A non-pending
	// amendment fails with common.ErrAlreadyProcessed and nothing is
	// written.
	ApproveAmendment(ctx context.Context, amendment *domain.AmendmentRequest, content *domain.ContentItem, submission *domain.Submission) error

	// RejectAmendment flips a pending amendment to rejected without
	// touching any record state.
	RejectAmendment(ctx context.Context, amendment *domain.AmendmentRequest) error

	// CancelPending deletes the caller's own pending amendment.
	CancelPending(ctx context.Context, id, userID string) error

	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type amendmentRepository struct {
	db *gorm.DB
}

func NewAmendmentRepository(db *gorm.DB) AmendmentRepository {
	return &amendmentRepository{db: db}
}

func (r *amendmentRepository) CreatePending(ctx context.Context, amendment *domain.AmendmentRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.AmendmentRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ? AND status = ?", amendment.SubmissionID, domain.AmendmentStatusPending).
			First(&existing).Error
		if err == nil {
			return &common.ConflictError{
				Reason:        "a pending amendment already exists for this record",
				ConflictingID: existing.ID,
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(amendment).Error
	})
}

func (r *amendmentRepository) FindByID(ctx context.Context, id string) (*domain.AmendmentRequest, error) {
	var amendment domain.AmendmentRequest
	err := r.db.WithContext(ctx).First(&amendment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "amendment", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &amendment, nil
}

func (r *amendmentRepository) FindPendingBySubmission(ctx context.Context, submissionID string) (*domain.AmendmentRequest, error) {
	var amendment domain.AmendmentRequest
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND status = ?", submissionID, domain.AmendmentStatusPending).
		First(&amendment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "pending amendment", ID: submissionID}
	}
	if err != nil {
		return nil, err
	}
	return &amendment, nil
}

func (r *amendmentRepository) ListBySubmission(ctx context.Context, submissionID string) ([]domain.AmendmentRequest, error) {
	var amendments []domain.AmendmentRequest
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("version_number DESC").
		Find(&amendments).Error
	if err != nil {
		return nil, err
	}
	return amendments, nil
}

func (r *amendmentRepository) List(ctx context.Context, filter AmendmentFilter) ([]domain.AmendmentRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.AmendmentRequest{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.SubmissionID != "" {
		query = query.Where("submission_id = ?", filter.SubmissionID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var amendments []domain.AmendmentRequest
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&amendments).Error
	if err != nil {
		return nil, 0, err
	}

	return amendments, total, nil
}

func (r *amendmentRepository) ApproveAmendment(ctx context.Context, amendment *domain.AmendmentRequest, content *domain.ContentItem, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.AmendmentRequest{}).
			Where("id = ? AND status = ?", amendment.ID, domain.AmendmentStatusPending).
			Updates(map[string]interface{}{
				"status":                  domain.AmendmentStatusApproved,
				"version_number":          amendment.VersionNumber,
				"previous_version_number": amendment.PreviousVersionNumber,
				"reviewed_by":             amendment.ReviewedBy,
				"reviewed_at":             amendment.ReviewedAt,
				"review_notes":            amendment.ReviewNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrAlreadyProcessed
		}

		if submission != nil {
			// Publish path: the lineage had no live record yet, so the
			// approval creates one and the submission leaves pending.
			if err := tx.Create(content).Error; err != nil {
				return err
			}
			res := tx.Model(&domain.Submission{}).
				Where("id = ? AND status = ?", submission.ID, domain.SubmissionStatusPending).
				Updates(map[string]interface{}{
					"status":         domain.SubmissionStatusPublished,
					"reviewed_by":    submission.ReviewedBy,
					"reviewed_at":    submission.ReviewedAt,
					"review_notes":   submission.ReviewNotes,
					"revision_count": submission.RevisionCount,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return common.ErrAlreadyProcessed
			}
			return nil
		}

		return tx.Save(content).Error
	})
}

func (r *amendmentRepository) RejectAmendment(ctx context.Context, amendment *domain.AmendmentRequest) error {
	res := r.db.WithContext(ctx).Model(&domain.AmendmentRequest{}).
		Where("id = ? AND status = ?", amendment.ID, domain.AmendmentStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.AmendmentStatusRejected,
			"reviewed_by":  amendment.ReviewedBy,
			"reviewed_at":  amendment.ReviewedAt,
			"review_notes": amendment.ReviewNotes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrAlreadyProcessed
	}
	return nil
}

func (r *amendmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.AmendmentRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (r *amendmentRepository) CancelPending(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, domain.AmendmentStatusPending).
		Delete(&domain.AmendmentRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrAlreadyProcessed
	}
	return nil
}
