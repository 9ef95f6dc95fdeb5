package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

func TestRequestCreatesPendingCollaboration(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	users.On("FindByID", mock.Anything, "user-2").Return(&domain.User{ID: "user-2", Name: "Mary"}, nil)
	collabs.On("Upsert", mock.Anything, mock.MatchedBy(func(c *domain.Collaboration) bool {
		return c.RequesterID == "user-1" && c.RecipientID == "user-2" &&
			c.Status == domain.CollaborationStatusPending
	})).Return(nil)

	collab, err := svc.Request(context.Background(), "user-1", "user-2", "oral_traditions")
	require.NoError(t, err)
	assert.Equal(t, "oral_traditions", collab.CulturalDomain)
	collabs.AssertExpectations(t)
}

func TestRequestReturnsStoredPairState(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	users.On("FindByID", mock.Anything, "user-2").Return(&domain.User{ID: "user-2", Name: "Mary"}, nil)

	// The pair already has an accepted row; the upsert loads it back.
	collabs.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Collaboration")).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*domain.Collaboration)
			c.ID = "collab-9"
			c.Status = domain.CollaborationStatusAccepted
		}).
		Return(nil)

	collab, err := svc.Request(context.Background(), "user-1", "user-2", "performing_arts")
	require.NoError(t, err)
	assert.Equal(t, "collab-9", collab.ID)
	assert.Equal(t, domain.CollaborationStatusAccepted, collab.Status)
}

func TestRequestToSelfFails(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	_, err := svc.Request(context.Background(), "user-1", "user-1", "oral_traditions")

	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recipient_id", ve.Field)
	collabs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRequestUnknownRecipientFails(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	users.On("FindByID", mock.Anything, "ghost").
		Return(nil, &common.NotFoundError{Resource: "user", ID: "ghost"})

	_, err := svc.Request(context.Background(), "user-1", "ghost", "oral_traditions")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRespondOnlyRecipientCanAnswer(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	collabs.On("FindByID", mock.Anything, "collab-1").Return(&domain.Collaboration{
		ID:          "collab-1",
		RequesterID: "user-1",
		RecipientID: "user-2",
		Status:      domain.CollaborationStatusPending,
	}, nil)

	_, err := svc.Respond(context.Background(), "collab-1", "user-1", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
	collabs.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondAcceptFlipsStatus(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	collabs.On("FindByID", mock.Anything, "collab-1").Return(&domain.Collaboration{
		ID:          "collab-1",
		RequesterID: "user-1",
		RecipientID: "user-2",
		Status:      domain.CollaborationStatusPending,
	}, nil)
	collabs.On("Respond", mock.Anything, "collab-1", "user-2", domain.CollaborationStatusAccepted).Return(nil)

	collab, err := svc.Respond(context.Background(), "collab-1", "user-2", true)
	require.NoError(t, err)
	assert.Equal(t, domain.CollaborationStatusAccepted, collab.Status)
}

func TestListMineResolvesNames(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	collabs.On("ListForUser", mock.Anything, "user-1").Return([]domain.Collaboration{
		{ID: "collab-1", RequesterID: "user-1", RecipientID: "user-2"},
	}, nil)
	users.On("FindByID", mock.Anything, "user-1").Return(&domain.User{ID: "user-1", Name: "Asha"}, nil)
	users.On("FindByID", mock.Anything, "user-2").Return(nil, &common.NotFoundError{Resource: "user", ID: "user-2"})

	result, err := svc.ListMine(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Asha", result[0].RequesterName)
	assert.Equal(t, "Unknown", result[0].RecipientName)
}

func TestContributorsRequiresDomain(t *testing.T) {
	collabs := new(mockCollaborationRepo)
	users := new(mockUserRepo)
	svc := NewCollaborationService(collabs, users)

	_, err := svc.Contributors(context.Background(), "")

	var ve *common.ValidationError
	assert.ErrorAs(t, err, &ve)
}
