package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openheritage/heritage-backend/internal/domain"
)

type PurgeRepository interface {
	Enqueue(ctx context.Context, item *domain.FilePurgeItem) error
	ListDue(ctx context.Context, maxAttempts, limit int) ([]domain.FilePurgeItem, error)
	Delete(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, lastError string) error
}

type purgeRepository struct {
	db *gorm.DB
}

func NewPurgeRepository(db *gorm.DB) PurgeRepository {
	return &purgeRepository{db: db}
}

func (r *purgeRepository) Enqueue(ctx context.Context, item *domain.FilePurgeItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *purgeRepository) ListDue(ctx context.Context, maxAttempts, limit int) ([]domain.FilePurgeItem, error) {
	var items []domain.FilePurgeItem
	err := r.db.WithContext(ctx).
		Where("attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *purgeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.FilePurgeItem{}, id).Error
}

func (r *purgeRepository) MarkFailed(ctx context.Context, id uint, lastError string) error {
	if len(lastError) > 500 {
		lastError = lastError[:500]
	}
	return r.db.WithContext(ctx).Model(&domain.FilePurgeItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}
