package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

type CollaborationRepository interface {
	// Upsert creates the pair's request or refreshes its cultural
	// domain when one already exists; an existing status is kept.
	// collab is reloaded with the stored row either way.
	Upsert(ctx context.Context, collab *domain.Collaboration) error

	FindByID(ctx context.Context, id string) (*domain.Collaboration, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Collaboration, error)

	// Respond flips a pending request to accepted or rejected; only
	// the recipient may respond.
	Respond(ctx context.Context, id, recipientID, status string) error

	// HasAccepted reports whether an accepted collaboration exists
	// between the two users in either direction.
	HasAccepted(ctx context.Context, userID, otherID string) (bool, error)

	// ListContributors returns users with published content in the
	// given cultural domain, with their published record counts.
	ListContributors(ctx context.Context, culturalDomain string, limit int) ([]domain.Contributor, error)
}

type collaborationRepository struct {
	db *gorm.DB
}

func NewCollaborationRepository(db *gorm.DB) CollaborationRepository {
	return &collaborationRepository{db: db}
}

func (r *collaborationRepository) Upsert(ctx context.Context, collab *domain.Collaboration) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requester_id"}, {Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cultural_domain", "updated_at"}),
		}).
		Create(collab).Error
	if err != nil {
		return err
	}

	// When the pair row already existed the insert was turned into an
	// update, so the generated id and pending status above never
	// landed; read back what the database actually holds.
	return r.db.WithContext(ctx).
		First(collab, "requester_id = ? AND recipient_id = ?", collab.RequesterID, collab.RecipientID).
		Error
}

func (r *collaborationRepository) FindByID(ctx context.Context, id string) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).First(&collab, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &common.NotFoundError{Resource: "collaboration", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *collaborationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&collabs).Error
	if err != nil {
		return nil, err
	}
	return collabs, nil
}

func (r *collaborationRepository) Respond(ctx context.Context, id, recipientID, status string) error {
	res := r.db.WithContext(ctx).Model(&domain.Collaboration{}).
		Where("id = ? AND recipient_id = ? AND status = ?", id, recipientID, domain.CollaborationStatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrAlreadyProcessed
	}
	return nil
}

func (r *collaborationRepository) HasAccepted(ctx context.Context, userID, otherID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Collaboration{}).
		Where("status = ?", domain.CollaborationStatusAccepted).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *collaborationRepository) ListContributors(ctx context.Context, culturalDomain string, limit int) ([]domain.Contributor, error) {
	if limit < 1 || limit > 100 {
		limit = 100
	}

	var contributors []domain.Contributor
	err := r.db.WithContext(ctx).
		Table("content_items").
		Select("content_items.owner_id AS id, users.name AS name, content_items.cultural_domain AS cultural_domain, count(*) AS published_count").
		Joins("JOIN users ON users.id = content_items.owner_id").
		Where("content_items.cultural_domain = ?", culturalDomain).
		Group("content_items.owner_id, users.name, content_items.cultural_domain").
		Limit(limit).
		Scan(&contributors).Error
	if err != nil {
		return nil, err
	}
	return contributors, nil
}
