package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

// SubmissionFilter narrows submission listings
type SubmissionFilter struct {
	UserID  string
	Status  string
	Page    int
	PerPage int
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	FindByID(ctx context.Context, id string) (*domain.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, int64, error)
	Update(ctx context.Context, submission *domain.Submission) error

	// Publish flips a pending submission to published and creates its
	// live record in the same transaction. A submission that is no
	// longer pending fails with common.ErrAlreadyProcessed.
	Publish(ctx context.Context, submission *domain.Submission, content *domain.ContentItem) error

	// Reject flips a pending submission to rejected.
	Reject(ctx context.Context, submission *domain.Submission) error

	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	var submission domain.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "submission", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Submission{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
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

	var submissions []domain.Submission
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) Publish(ctx context.Context, submission *domain.Submission, content *domain.ContentItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Submission{}).
			Where("id = ? AND status = ?", submission.ID, domain.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":       domain.SubmissionStatusPublished,
				"reviewed_by":  submission.ReviewedBy,
				"reviewed_at":  submission.ReviewedAt,
				"review_notes": submission.ReviewNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrAlreadyProcessed
		}

		return tx.Create(content).Error
	})
}

func (r *submissionRepository) Reject(ctx context.Context, submission *domain.Submission) error {
	res := r.db.WithContext(ctx).Model(&domain.Submission{}).
		Where("id = ? AND status = ?", submission.ID, domain.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.SubmissionStatusRejected,
			"reviewed_by":  submission.ReviewedBy,
			"reviewed_at":  submission.ReviewedAt,
			"review_notes": submission.ReviewNotes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrAlreadyProcessed
	}
	return nil
}

func (r *submissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Submission{}, "id = ?", id).Error
}

func (r *submissionRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Submission{}).
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
