package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/openheritage/heritage-backend/internal/domain"
)

func TestSweepDeletesAndDrainsQueue(t *testing.T) {
	purge := new(mockPurgeRepo)
	store := new(mockStorage)
	svc := NewCleanupService(purge, store, "0 */10 * * * *", 5)

	items := []domain.FilePurgeItem{
		{ID: 1, StorageKey: "content/2025/a.mp3", Attempts: 1},
		{ID: 2, StorageKey: "consent/2025/c.pdf", Attempts: 0},
	}
	purge.On("ListDue", mock.Anything, 5, 100).Return(items, nil)
	store.On("Delete", mock.Anything, "content/2025/a.mp3").Return(nil)
	store.On("Delete", mock.Anything, "consent/2025/c.pdf").Return(nil)
	purge.On("Delete", mock.Anything, uint(1)).Return(nil)
	purge.On("Delete", mock.Anything, uint(2)).Return(nil)

	svc.Sweep(context.Background())

	purge.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSweepKeepsFailingItems(t *testing.T) {
	purge := new(mockPurgeRepo)
	store := new(mockStorage)
	svc := NewCleanupService(purge, store, "0 */10 * * * *", 5)

	items := []domain.FilePurgeItem{
		{ID: 7, StorageKey: "content/2025/x.mp3", Attempts: 2},
	}
	purge.On("ListDue", mock.Anything, 5, 100).Return(items, nil)
	store.On("Delete", mock.Anything, "content/2025/x.mp3").Return(assert.AnError)
	purge.On("MarkFailed", mock.Anything, uint(7), assert.AnError.Error()).Return(nil)

	svc.Sweep(context.Background())

	purge.AssertNotCalled(t, "Delete", mock.Anything, uint(7))
	purge.AssertExpectations(t)
}
