package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

// ContentFilter narrows published record listings
type ContentFilter struct {
	Country        string
	CulturalDomain string
	AccessTier     string
	Language       string
	OwnerID        string
	Query          string
	Page           int
	PerPage        int
}

type ContentRepository interface {
	Create(ctx context.Context, item *domain.ContentItem) error
	FindByID(ctx context.Context, id string) (*domain.ContentItem, error)
	FindBySubmissionID(ctx context.Context, submissionID string) (*domain.ContentItem, error)
	List(ctx context.Context, filter ContentFilter) ([]domain.ContentItem, int64, error)
	Update(ctx context.Context, item *domain.ContentItem) error
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, item *domain.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *contentRepository) FindByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "content", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) FindBySubmissionID(ctx context.Context, submissionID string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.WithContext(ctx).First(&item, "submission_id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "content", ID: submissionID}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) List(ctx context.Context, filter ContentFilter) ([]domain.ContentItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.ContentItem{})

	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.CulturalDomain != "" {
		query = query.Where("cultural_domain = ?", filter.CulturalDomain)
	}
	if filter.AccessTier != "" {
		query = query.Where("access_tier = ?", filter.AccessTier)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
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

	var items []domain.ContentItem
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *contentRepository) Update(ctx context.Context, item *domain.ContentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *contentRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.ContentItem{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *contentRepository) IncrementDownloads(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.ContentItem{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.ContentItem{}, "id = ?", id).Error
}
