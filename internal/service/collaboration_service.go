package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
)

// CollaborationService connects contributors working in the same
// cultural domain: discovery of published contributors, working
// requests between user pairs, and the accepted-pair check gating
// direct contact.
type CollaborationService struct {
	collabs repository.CollaborationRepository
	users   repository.UserRepository
}

func NewCollaborationService(collabs repository.CollaborationRepository, users repository.UserRepository) *CollaborationService {
	return &CollaborationService{collabs: collabs, users: users}
}

// Contributors lists users with published content in a cultural domain
func (s *CollaborationService) Contributors(ctx context.Context, culturalDomain string) ([]domain.Contributor, error) {
	if culturalDomain == "" {
		return nil, &common.ValidationError{Field: "cultural_domain", Reason: "required"}
	}
	return s.collabs.ListContributors(ctx, culturalDomain, 100)
}

// Request files a collaboration request toward another contributor.
// Repeating a request for the same pair refreshes the domain without
// resetting an already-given answer.
func (s *CollaborationService) Request(ctx context.Context, requesterID, recipientID, culturalDomain string) (*domain.Collaboration, error) {
	if recipientID == "" {
		return nil, &common.ValidationError{Field: "recipient_id", Reason: "required"}
	}
	if culturalDomain == "" {
		return nil, &common.ValidationError{Field: "cultural_domain", Reason: "required"}
	}
	if recipientID == requesterID {
		return nil, &common.ValidationError{Field: "recipient_id", Reason: "cannot collaborate with yourself"}
	}
	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		return nil, err
	}

	collab := &domain.Collaboration{
		ID:             uuid.NewString(),
		RequesterID:    requesterID,
		RecipientID:    recipientID,
		CulturalDomain: culturalDomain,
		Status:         domain.CollaborationStatusPending,
	}
	if err := s.collabs.Upsert(ctx, collab); err != nil {
		return nil, err
	}
	return collab, nil
}

// ListMine returns the caller's incoming and outgoing requests with
// both parties' names resolved.
func (s *CollaborationService) ListMine(ctx context.Context, userID string) ([]domain.Collaboration, error) {
	collabs, err := s.collabs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	lookup := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := "Unknown"
		if user, err := s.users.FindByID(ctx, id); err == nil {
			name = user.Name
		}
		names[id] = name
		return name
	}

	for i := range collabs {
		collabs[i].RequesterName = lookup(collabs[i].RequesterID)
		collabs[i].RecipientName = lookup(collabs[i].RecipientID)
	}
	return collabs, nil
}

// Respond accepts or rejects a pending request; only the recipient may
// answer, and only once.
func (s *CollaborationService) Respond(ctx context.Context, id, userID string, accept bool) (*domain.Collaboration, error) {
	collab, err := s.collabs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collab.RecipientID != userID {
		return nil, &common.NotFoundError{Resource: "collaboration", ID: id}
	}

	status := domain.CollaborationStatusRejected
	if accept {
		status = domain.CollaborationStatusAccepted
	}
	if err := s.collabs.Respond(ctx, id, userID, status); err != nil {
		return nil, err
	}
	collab.Status = status
	return collab, nil
}

// CanChat reports whether two users share an accepted collaboration
func (s *CollaborationService) CanChat(ctx context.Context, userID, otherID string) (bool, error) {
	return s.collabs.HasAccepted(ctx, userID, otherID)
}
