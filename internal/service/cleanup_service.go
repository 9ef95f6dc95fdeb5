package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openheritage/heritage-backend/internal/repository"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// CleanupService drains the file purge queue on a schedule. Items that
// keep failing stay in the queue until they hit the attempt cap and
// are then left for manual inspection.
type CleanupService struct {
	purge       repository.PurgeRepository
	storage     FileStorage
	cron        *cron.Cron
	schedule    string
	maxAttempts int
}

func NewCleanupService(purge repository.PurgeRepository, storage FileStorage, schedule string, maxAttempts int) *CleanupService {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &CleanupService{
		purge:       purge,
		storage:     storage,
		cron:        cron.New(cron.WithSeconds()),
		schedule:    schedule,
		maxAttempts: maxAttempts,
	}
}

// Start registers the sweep job and starts the scheduler
func (s *CleanupService) Start() error {
	if s.storage == nil {
		pkglogger.Info("cleanup sweeper disabled: no storage configured")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	pkglogger.Info("cleanup sweeper started (schedule %s)", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep retries every due purge item once
func (s *CleanupService) Sweep(ctx context.Context) {
	items, err := s.purge.ListDue(ctx, s.maxAttempts, 100)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("purge queue read failed")
		return
	}
	if len(items) == 0 {
		return
	}

	deleted := 0
	for _, item := range items {
		if err := s.storage.Delete(ctx, item.StorageKey); err != nil {
			if merr := s.purge.MarkFailed(ctx, item.ID, err.Error()); merr != nil {
				pkglogger.GetLogger().Error().Err(merr).Uint("item_id", item.ID).Msg("purge item update failed")
			}
			continue
		}
		if err := s.purge.Delete(ctx, item.ID); err != nil {
			pkglogger.GetLogger().Error().Err(err).Uint("item_id", item.ID).Msg("purge item remove failed")
			continue
		}
		deleted++
	}

	pkglogger.GetLogger().Info().
		Int("due", len(items)).
		Int("deleted", deleted).
		Msg("purge sweep complete")
}
