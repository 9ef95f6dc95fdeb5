package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
)

type mockAmendmentRepo struct {
	mock.Mock
}

func (m *mockAmendmentRepo) CreatePending(ctx context.Context, amendment *domain.AmendmentRequest) error {
	args := m.Called(ctx, amendment)
	return args.Error(0)
}

func (m *mockAmendmentRepo) FindByID(ctx context.Context, id string) (*domain.AmendmentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AmendmentRequest), args.Error(1)
}

func (m *mockAmendmentRepo) FindPendingBySubmission(ctx context.Context, submissionID string) (*domain.AmendmentRequest, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AmendmentRequest), args.Error(1)
}

func (m *mockAmendmentRepo) ListBySubmission(ctx context.Context, submissionID string) ([]domain.AmendmentRequest, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AmendmentRequest), args.Error(1)
}

func (m *mockAmendmentRepo) List(ctx context.Context, filter repository.AmendmentFilter) ([]domain.AmendmentRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AmendmentRequest), args.Get(1).(int64), args.Error(2)
}

func (m *mockAmendmentRepo) ApproveAmendment(ctx context.Context, amendment *domain.AmendmentRequest, content *domain.ContentItem, submission *domain.Submission) error {
	args := m.Called(ctx, amendment, content, submission)
	return args.Error(0)
}

func (m *mockAmendmentRepo) RejectAmendment(ctx context.Context, amendment *domain.AmendmentRequest) error {
	args := m.Called(ctx, amendment)
	return args.Error(0)
}

func (m *mockAmendmentRepo) CancelPending(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockAmendmentRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type mockContentRepo struct {
	mock.Mock
}

func (m *mockContentRepo) Create(ctx context.Context, item *domain.ContentItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockContentRepo) FindByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentItem), args.Error(1)
}

func (m *mockContentRepo) FindBySubmissionID(ctx context.Context, submissionID string) (*domain.ContentItem, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentItem), args.Error(1)
}

func (m *mockContentRepo) List(ctx context.Context, filter repository.ContentFilter) ([]domain.ContentItem, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ContentItem), args.Get(1).(int64), args.Error(2)
}

func (m *mockContentRepo) Update(ctx context.Context, item *domain.ContentItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockContentRepo) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockContentRepo) IncrementDownloads(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockContentRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *mockSubmissionRepo) Update(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *mockSubmissionRepo) Publish(ctx context.Context, submission *domain.Submission, content *domain.ContentItem) error {
	args := m.Called(ctx, submission, content)
	return args.Error(0)
}

func (m *mockSubmissionRepo) Reject(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSubmissionRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockPurgeRepo struct {
	mock.Mock
}

func (m *mockPurgeRepo) Enqueue(ctx context.Context, item *domain.FilePurgeItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockPurgeRepo) ListDue(ctx context.Context, maxAttempts, limit int) ([]domain.FilePurgeItem, error) {
	args := m.Called(ctx, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FilePurgeItem), args.Error(1)
}

func (m *mockPurgeRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPurgeRepo) MarkFailed(ctx context.Context, id uint, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockCollaborationRepo struct {
	mock.Mock
}

func (m *mockCollaborationRepo) Upsert(ctx context.Context, collab *domain.Collaboration) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *mockCollaborationRepo) FindByID(ctx context.Context, id string) (*domain.Collaboration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collaboration), args.Error(1)
}

func (m *mockCollaborationRepo) ListForUser(ctx context.Context, userID string) ([]domain.Collaboration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collaboration), args.Error(1)
}

func (m *mockCollaborationRepo) Respond(ctx context.Context, id, recipientID, status string) error {
	args := m.Called(ctx, id, recipientID, status)
	return args.Error(0)
}

func (m *mockCollaborationRepo) HasAccepted(ctx context.Context, userID, otherID string) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCollaborationRepo) ListContributors(ctx context.Context, culturalDomain string, limit int) ([]domain.Contributor, error) {
	args := m.Called(ctx, culturalDomain, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contributor), args.Error(1)
}
