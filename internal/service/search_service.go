package service

import (
	"context"

	"github.com/openheritage/heritage-backend/internal/domain"
	"github.com/openheritage/heritage-backend/pkg/elasticsearch"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// SearchService indexes published records and serves full-text search.
// When Elasticsearch is not configured every method is a no-op or
// returns an empty result, so callers need no nil checks beyond
// IsAvailable.
type SearchService struct {
	es    *elasticsearch.Client
	index string
}

func NewSearchService(es *elasticsearch.Client, index string) *SearchService {
	return &SearchService{es: es, index: index}
}

// IsAvailable reports whether search is backed by a live cluster
func (s *SearchService) IsAvailable() bool {
	return s.es != nil
}

// EnsureIndex creates the content index if it does not exist
func (s *SearchService) EnsureIndex(ctx context.Context) error {
	if s.es == nil {
		return nil
	}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":                 map[string]interface{}{"type": "text"},
				"description":           map[string]interface{}{"type": "text"},
				"cultural_significance": map[string]interface{}{"type": "text"},
				"background_info":       map[string]interface{}{"type": "text"},
				"keywords":              map[string]interface{}{"type": "keyword"},
				"country":               map[string]interface{}{"type": "keyword"},
				"cultural_domain":       map[string]interface{}{"type": "keyword"},
				"language":              map[string]interface{}{"type": "keyword"},
				"access_tier":           map[string]interface{}{"type": "keyword"},
				"created_at":            map[string]interface{}{"type": "date"},
			},
		},
	}
	return s.es.CreateIndex(ctx, s.index, mapping)
}

// IndexContent writes a record's searchable fields to the index
func (s *SearchService) IndexContent(ctx context.Context, item *domain.ContentItem) error {
	if s.es == nil {
		return nil
	}
	doc := map[string]interface{}{
		"title":                 item.Title,
		"description":           item.Description,
		"cultural_significance": item.CulturalSignificance,
		"background_info":       item.BackgroundInfo,
		"keywords":              []string(item.Keywords),
		"country":               item.Country,
		"cultural_domain":       item.CulturalDomain,
		"language":              item.Language,
		"access_tier":           item.AccessTier,
		"created_at":            item.CreatedAt,
	}
	return s.es.IndexDocument(ctx, s.index, item.ID, doc)
}

// RemoveContent drops a record from the index
func (s *SearchService) RemoveContent(ctx context.Context, id string) error {
	if s.es == nil {
		return nil
	}
	return s.es.DeleteDocument(ctx, s.index, id)
}

// Search runs a multi-field full-text query, restricted to public
// records unless an access tier filter is given.
func (s *SearchService) Search(ctx context.Context, query string, filters map[string]string, page, perPage int) (*elasticsearch.SearchResponse, error) {
	if s.es == nil {
		return &elasticsearch.SearchResponse{}, nil
	}

	must := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "keywords^2", "description", "cultural_significance", "background_info"},
			},
		},
	}
	var filter []interface{}
	for field, value := range filters {
		if value == "" {
			continue
		}
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	resp, err := s.es.Search(ctx, s.index, esQuery, (page-1)*perPage, perPage)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("search query failed")
		return nil, err
	}
	return resp, nil
}
