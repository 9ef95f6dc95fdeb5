package service

import (
	"context"
	"fmt"

	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/internal/repository"
	"github.com/openheritage/heritage-backend/pkg/cache"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// ContentService serves published records with redis-backed caching
type ContentService struct {
	contents repository.ContentRepository
	cache    cache.Service
}

func NewContentService(contents repository.ContentRepository, cacheSvc cache.Service) *ContentService {
	return &ContentService{contents: contents, cache: cacheSvc}
}

// ContentListResult bundles a page of records with its total
type ContentListResult struct {
	Items []domain.ContentItem `json:"items"`
	Total int64                `json:"total"`
}

// List returns published records matching the filter
func (s *ContentService) List(ctx context.Context, filter repository.ContentFilter) ([]domain.ContentItem, int64, error) {
	cacheKey := listCacheKey(filter)
	if s.cache != nil && s.cache.IsAvailable() {
		var cached ContentListResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached.Items, cached.Total, nil
		}
	}

	items, total, err := s.contents.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.Set(ctx, cacheKey, ContentListResult{Items: items, Total: total}, cache.TTLContentList); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("content list cache write failed")
		}
	}

	return items, total, nil
}

// Get returns a single published record
func (s *ContentService) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	cacheKey := cache.PrefixContent + id
	if s.cache != nil && s.cache.IsAvailable() {
		var cached domain.ContentItem
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	item, err := s.contents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.Set(ctx, cacheKey, item, cache.TTLContentItem); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("content cache write failed")
		}
	}

	return item, nil
}

// RecordView bumps the view counter, best effort
func (s *ContentService) RecordView(ctx context.Context, id string) {
	if err := s.contents.IncrementViews(ctx, id); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("content_id", id).Msg("view increment failed")
	}
}

// RecordDownload bumps the download counter, best effort
func (s *ContentService) RecordDownload(ctx context.Context, id string) {
	if err := s.contents.IncrementDownloads(ctx, id); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("content_id", id).Msg("download increment failed")
	}
}

func listCacheKey(f repository.ContentFilter) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%s:%d:%d",
		cache.PrefixContents,
		f.Country, f.CulturalDomain, f.AccessTier, f.Language, f.OwnerID, f.Query,
		f.Page, f.PerPage)
}
