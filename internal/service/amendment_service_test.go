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

type amendmentFixture struct {
	amendments  *mockAmendmentRepo
	contents    *mockContentRepo
	submissions *mockSubmissionRepo
	users       *mockUserRepo
	purge       *mockPurgeRepo
	storage     *mockStorage
	svc         *AmendmentService
}

func newAmendmentFixture() *amendmentFixture {
	f := &amendmentFixture{
		amendments:  new(mockAmendmentRepo),
		contents:    new(mockContentRepo),
		submissions: new(mockSubmissionRepo),
		users:       new(mockUserRepo),
		purge:       new(mockPurgeRepo),
		storage:     new(mockStorage),
	}
	f.svc = NewAmendmentService(
		f.amendments, f.contents, f.submissions, f.users, f.purge,
		cache.NewService(nil), f.storage, nil, nil,
	)
	return f
}

func publishedSubmission() *domain.Submission {
	return &domain.Submission{
		ID:     "sub-1",
		UserID: "user-1",
		Status: domain.SubmissionStatusPublished,
	}
}

func publishedContent() *domain.ContentItem {
	item := &domain.ContentItem{
		ID:              "content-1",
		SubmissionID:    "sub-1",
		OwnerID:         "user-1",
		CurrentVersion:  1,
		TotalAmendments: 0,
	}
	item.ApplySnapshot(baselineSnapshot())
	return item
}

func TestSubmitCreatesPendingAmendment(t *testing.T) {
	f := newAmendmentFixture()
	ctx := context.Background()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)
	f.amendments.On("CreatePending", mock.Anything, mock.AnythingOfType("*domain.AmendmentRequest")).Return(nil)

	amendment, err := f.svc.Submit(ctx, "user-1", "sub-1", SnapshotEdits{
		Title: strPtr("Harvest Song of the Tiv"),
	}, ChangeSetUploads{}, "fixing the title")
	require.NoError(t, err)

	assert.Equal(t, domain.AmendmentStatusPending, amendment.Status)
	assert.Equal(t, 2, amendment.VersionNumber)
	assert.Equal(t, 1, amendment.PreviousVersionNumber)
	assert.Equal(t, "content-1", amendment.ContentID)
	assert.Equal(t, "fixing the title", amendment.Reason)
	assert.Equal(t, "Harvest Song of the Tiv", amendment.ProposedChanges.Data().Title)
	assert.Equal(t, "Harvest Song", amendment.CurrentSnapshot.Data().Title)
	require.Len(t, amendment.ChangedFields.Data(), 1)
	f.amendments.AssertExpectations(t)
}

func TestSubmitForeignSubmissionNotFound(t *testing.T) {
	f := newAmendmentFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)

	_, err := f.svc.Submit(context.Background(), "someone-else", "sub-1", SnapshotEdits{
		Title: strPtr("x"),
	}, ChangeSetUploads{}, "")
	assert.ErrorIs(t, err, common.ErrNotFound)
	f.amendments.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestSubmitNoChangesFails(t *testing.T) {
	f := newAmendmentFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)

	_, err := f.svc.Submit(context.Background(), "user-1", "sub-1", SnapshotEdits{}, ChangeSetUploads{}, "")
	assert.ErrorIs(t, err, common.ErrNoChanges)
	f.amendments.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestSubmitConflictCleansUpUploads(t *testing.T) {
	f := newAmendmentFixture()

	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)
	f.amendments.On("CreatePending", mock.Anything, mock.Anything).
		Return(&common.ConflictError{Reason: "a pending amendment already exists for this record", ConflictingID: "amd-0"})
	f.storage.On("Delete", mock.Anything, "content/2025/b.mp3").Return(nil)

	_, err := f.svc.Submit(context.Background(), "user-1", "sub-1", SnapshotEdits{}, ChangeSetUploads{
		Content: &FileUpload{URL: "https://cdn.example.com/content/b.mp3", Key: "content/2025/b.mp3"},
	}, "")

	var ce *common.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "amd-0", ce.ConflictingID)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "content/2025/b.mp3")
}

func pendingAmendment() *domain.AmendmentRequest {
	baseline := baselineSnapshot()
	proposed := baseline
	proposed.Title = "Harvest Song of the Tiv"
	proposed.ContentURL = "https://cdn.example.com/content/b.mp3"
	proposed.ContentKey = "content/2025/b.mp3"

	return &domain.AmendmentRequest{
		ID:                    "amd-1",
		SubmissionID:          "sub-1",
		ContentID:             "content-1",
		UserID:                "user-1",
		VersionNumber:         2,
		PreviousVersionNumber: 1,
		Status:                domain.AmendmentStatusPending,
		ProposedChanges:       datatypes.NewJSONType(proposed),
		CurrentSnapshot:       datatypes.NewJSONType(baseline),
		ChangedFields: datatypes.NewJSONType([]domain.FieldChange{
			{FieldName: "title", OldValue: "Harvest Song", NewValue: "Harvest Song of the Tiv", ChangeType: domain.ChangeTypeText},
			{FieldName: "content_file", OldValue: "https://cdn.example.com/content/a.mp3", NewValue: "https://cdn.example.com/content/b.mp3", ChangeType: domain.ChangeTypeFile},
		}),
	}
}

func TestReviewApproveAppliesSnapshotAndBumpsVersion(t *testing.T) {
	f := newAmendmentFixture()

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(pendingAmendment(), nil)
	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)

	var committed *domain.ContentItem
	f.amendments.On("ApproveAmendment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			committed = args.Get(2).(*domain.ContentItem)
			assert.Nil(t, args.Get(3))
		}).
		Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/a.mp3").Return(nil)

	amendment, err := f.svc.Review(context.Background(), "amd-1", "admin-1", true, "looks good")
	require.NoError(t, err)

	assert.Equal(t, domain.AmendmentStatusApproved, amendment.Status)
	assert.Equal(t, "admin-1", amendment.ReviewedBy)
	require.NotNil(t, amendment.ReviewedAt)

	require.NotNil(t, committed)
	assert.Equal(t, "Harvest Song of the Tiv", committed.Title)
	assert.Equal(t, "content/2025/b.mp3", committed.ContentKey)
	assert.Equal(t, 2, committed.CurrentVersion)
	assert.Equal(t, 1, committed.TotalAmendments)
	require.NotNil(t, committed.LastAmendmentAt)

	// The replaced file goes, the new one stays
	f.storage.AssertCalled(t, "Delete", mock.Anything, "content/2025/a.mp3")
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, "content/2025/b.mp3")
}

func TestReviewApproveRenumbersAfterDirectPublish(t *testing.T) {
	f := newAmendmentFixture()

	// Filed while the submission was still pending, so it carries the
	// pre-publication numbering. The submission was then published
	// directly, creating the live record at version 1.
	amendment := pendingAmendment()
	amendment.ContentID = ""
	amendment.VersionNumber = 1
	amendment.PreviousVersionNumber = 0

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(amendment, nil)
	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(publishedSubmission(), nil)
	f.contents.On("FindBySubmissionID", mock.Anything, "sub-1").Return(publishedContent(), nil)

	var committed *domain.ContentItem
	f.amendments.On("ApproveAmendment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			committed = args.Get(2).(*domain.ContentItem)
			assert.Nil(t, args.Get(3))
		}).
		Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/a.mp3").Return(nil)

	reviewed, err := f.svc.Review(context.Background(), "amd-1", "admin-1", true, "")
	require.NoError(t, err)

	// The version must still advance past the direct publication;
	// two published states may never share a number.
	assert.Equal(t, 2, reviewed.VersionNumber)
	assert.Equal(t, 1, reviewed.PreviousVersionNumber)
	require.NotNil(t, committed)
	assert.Equal(t, 2, committed.CurrentVersion)
	assert.Equal(t, 1, committed.TotalAmendments)
	assert.Equal(t, "Harvest Song of the Tiv", committed.Title)
}

func TestReviewRejectLeavesRecordUntouched(t *testing.T) {
	f := newAmendmentFixture()

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(pendingAmendment(), nil)
	f.amendments.On("RejectAmendment", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/b.mp3").Return(nil)

	amendment, err := f.svc.Review(context.Background(), "amd-1", "admin-1", false, "needs work")
	require.NoError(t, err)

	assert.Equal(t, domain.AmendmentStatusRejected, amendment.Status)

	// No record mutation on reject; only the fresh upload is discarded
	f.contents.AssertNotCalled(t, "FindBySubmissionID", mock.Anything, mock.Anything)
	f.amendments.AssertNotCalled(t, "ApproveAmendment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "content/2025/b.mp3")
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, "content/2025/a.mp3")
}

func TestReviewAlreadyProcessed(t *testing.T) {
	f := newAmendmentFixture()

	processed := pendingAmendment()
	processed.Status = domain.AmendmentStatusApproved
	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(processed, nil)

	_, err := f.svc.Review(context.Background(), "amd-1", "admin-1", true, "")
	assert.ErrorIs(t, err, common.ErrAlreadyProcessed)
}

func TestReviewApprovePublishesUnreviewedSubmission(t *testing.T) {
	f := newAmendmentFixture()

	amendment := pendingAmendment()
	amendment.ContentID = ""
	amendment.VersionNumber = 1
	amendment.PreviousVersionNumber = 0

	pending := &domain.Submission{
		ID:      "sub-1",
		UserID:  "user-1",
		Status:  domain.SubmissionStatusPending,
		Content: datatypes.NewJSONType(baselineSnapshot()),
	}

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(amendment, nil)
	f.submissions.On("FindByID", mock.Anything, "sub-1").Return(pending, nil)

	var createdContent *domain.ContentItem
	var committed *domain.Submission
	f.amendments.On("ApproveAmendment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			createdContent = args.Get(2).(*domain.ContentItem)
			committed = args.Get(3).(*domain.Submission)
		}).
		Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/a.mp3").Return(nil)

	_, err := f.svc.Review(context.Background(), "amd-1", "admin-1", true, "")
	require.NoError(t, err)

	// Approval of the first amendment publishes the lineage: a fresh
	// live record at version 1 built from the proposed snapshot.
	require.NotNil(t, createdContent)
	assert.NotEmpty(t, createdContent.ID)
	assert.Equal(t, "sub-1", createdContent.SubmissionID)
	assert.Equal(t, "user-1", createdContent.OwnerID)
	assert.Equal(t, 1, createdContent.CurrentVersion)
	assert.Equal(t, 0, createdContent.TotalAmendments)
	assert.Equal(t, "Harvest Song of the Tiv", createdContent.Title)

	require.NotNil(t, committed)
	assert.Equal(t, "admin-1", committed.ReviewedBy)
	assert.Equal(t, domain.SubmissionStatusPublished, committed.Status)
	f.contents.AssertNotCalled(t, "FindBySubmissionID", mock.Anything, mock.Anything)
}

func TestCancelDiscardsUploads(t *testing.T) {
	f := newAmendmentFixture()

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(pendingAmendment(), nil)
	f.amendments.On("CancelPending", mock.Anything, "amd-1", "user-1").Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/b.mp3").Return(nil)

	err := f.svc.Cancel(context.Background(), "amd-1", "user-1")
	require.NoError(t, err)

	f.storage.AssertCalled(t, "Delete", mock.Anything, "content/2025/b.mp3")
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, "content/2025/a.mp3")
}

func TestCancelForeignAmendmentNotFound(t *testing.T) {
	f := newAmendmentFixture()

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(pendingAmendment(), nil)

	err := f.svc.Cancel(context.Background(), "amd-1", "someone-else")
	assert.ErrorIs(t, err, common.ErrNotFound)
	f.amendments.AssertNotCalled(t, "CancelPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteFailureLandsInPurgeQueue(t *testing.T) {
	f := newAmendmentFixture()

	f.amendments.On("FindByID", mock.Anything, "amd-1").Return(pendingAmendment(), nil)
	f.amendments.On("CancelPending", mock.Anything, "amd-1", "user-1").Return(nil)
	f.storage.On("Delete", mock.Anything, "content/2025/b.mp3").Return(assert.AnError)
	f.purge.On("Enqueue", mock.Anything, mock.MatchedBy(func(item *domain.FilePurgeItem) bool {
		return item.StorageKey == "content/2025/b.mp3"
	})).Return(nil)

	err := f.svc.Cancel(context.Background(), "amd-1", "user-1")
	require.NoError(t, err)
	f.purge.AssertExpectations(t)
}
