package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/pkg/cache"
)

type versionFixture struct {
	amendments  *mockAmendmentRepo
	contents    *mockContentRepo
	submissions *mockSubmissionRepo
	svc         *VersionService
}

func newVersionFixture() *versionFixture {
	f := &versionFixture{
		amendments:  new(mockAmendmentRepo),
		contents:    new(mockContentRepo),
		submissions: new(mockSubmissionRepo),
	}
	f.svc = NewVersionService(f.amendments, f.contents, f.submissions, cache.NewService(nil))
	return f
}

func publishedSubmissionWithContent() *domain.Submission {
	sub := publishedSubmission()
	sub.Content = datatypes.NewJSONType(baselineSnapshot())
	return sub
}

func TestHistoryIncludesOriginalPublication(t *testing.T) {
	f := newVersionFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.amendments.On("ListBySubmission", mock.Anything, "sub-1").Return([]domain.AmendmentRequest{}, nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)

	entries, err := f.svc.History(context.Background(), "sub-1", "user-1", false)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Version)
	assert.True(t, entries[0].IsOriginal)
	assert.True(t, entries[0].IsCurrent)
}

func TestHistoryMarksCurrentVersion(t *testing.T) {
	f := newVersionFixture()

	approved := *pendingAmendment()
	approved.Status = domain.AmendmentStatusApproved

	rejected := *pendingAmendment()
	rejected.ID = "amd-2"
	rejected.VersionNumber = 3
	rejected.Status = domain.AmendmentStatusRejected

	content := publishedContent()
	content.CurrentVersion = 2
	content.TotalAmendments = 1

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.amendments.On("ListBySubmission", mock.Anything, "sub-1").Return([]domain.AmendmentRequest{rejected, approved}, nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(content, nil)

	entries, err := f.svc.History(context.Background(), "sub-1", "user-1", false)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].Version)
	assert.False(t, entries[0].IsCurrent)
	assert.Equal(t, 2, entries[1].Version)
	assert.True(t, entries[1].IsCurrent)
	assert.Equal(t, 1, entries[2].Version)
	assert.True(t, entries[2].IsOriginal)
	assert.False(t, entries[2].IsCurrent)
}

func TestHistoryHiddenFromOtherUsers(t *testing.T) {
	f := newVersionFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)

	_, err := f.svc.History(context.Background(), "sub-1", "someone-else", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetVersionResolvesCurrentFromLiveRecord(t *testing.T) {
	f := newVersionFixture()

	content := publishedContent()
	content.CurrentVersion = 2

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(content, nil)

	detail, err := f.svc.GetVersion(context.Background(), "sub-1", 2, "user-1", false)
	require.NoError(t, err)

	assert.True(t, detail.IsCurrent)
	assert.Equal(t, content.Title, detail.Snapshot.Title)
	f.amendments.AssertNotCalled(t, "ListBySubmission", mock.Anything, mock.Anything)
}

func TestGetVersionOneIsOriginalIntakeState(t *testing.T) {
	f := newVersionFixture()

	content := publishedContent()
	content.CurrentVersion = 2
	content.Title = "Harvest Song of the Tiv"

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(content, nil)

	detail, err := f.svc.GetVersion(context.Background(), "sub-1", 1, "user-1", false)
	require.NoError(t, err)

	assert.True(t, detail.IsOriginal)
	assert.False(t, detail.IsCurrent)
	assert.Equal(t, "Harvest Song", detail.Snapshot.Title)
}

func TestGetVersionResolvesHistoricalAmendment(t *testing.T) {
	f := newVersionFixture()

	approved := *pendingAmendment()
	approved.Status = domain.AmendmentStatusApproved

	content := publishedContent()
	content.CurrentVersion = 3

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(content, nil)
	f.amendments.On("ListBySubmission", mock.Anything, "sub-1").Return([]domain.AmendmentRequest{approved}, nil)

	detail, err := f.svc.GetVersion(context.Background(), "sub-1", 2, "user-1", false)
	require.NoError(t, err)

	assert.Equal(t, "amd-1", detail.AmendmentID)
	assert.Equal(t, "Harvest Song of the Tiv", detail.Snapshot.Title)
	assert.Equal(t, domain.AmendmentStatusApproved, detail.Status)
}

func TestGetVersionPrefersApprovedOverRejected(t *testing.T) {
	f := newVersionFixture()

	rejected := *pendingAmendment()
	rejected.ID = "amd-rej"
	rejected.Status = domain.AmendmentStatusRejected

	approved := *pendingAmendment()
	approved.Status = domain.AmendmentStatusApproved

	content := publishedContent()
	content.CurrentVersion = 3

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(content, nil)
	f.amendments.On("ListBySubmission", mock.Anything, "sub-1").Return([]domain.AmendmentRequest{rejected, approved}, nil)

	detail, err := f.svc.GetVersion(context.Background(), "sub-1", 2, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, "amd-1", detail.AmendmentID)
}

func TestGetVersionUnknownVersion(t *testing.T) {
	f := newVersionFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmissionWithContent(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)
	f.amendments.On("ListBySubmission", mock.Anything, "sub-1").Return([]domain.AmendmentRequest{}, nil)

	_, err := f.svc.GetVersion(context.Background(), "sub-1", 9, "user-1", false)

	var nfe *common.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}
