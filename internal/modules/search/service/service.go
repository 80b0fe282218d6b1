package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const contentIndex = "content"

// ContentFilter narrows a search to indexed facets.
type ContentFilter struct {
	Category   string
	Difficulty string
	MediaType  string
}

type SearchService interface {
	IndexContent(ctx context.Context, content *entity.Content, uploader string) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	// SearchContent returns matching content ids in relevance order.
	SearchContent(ctx context.Context, query string, filter ContentFilter, limit, offset int) ([]uuid.UUID, int64, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"category", "difficulty", "media_type", "is_revealed", "is_active", "status"}
	if _, err := s.client.Index(contentIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Log.Warn("failed to update content filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at", "total_votes"}
	if _, err := s.client.Index(contentIndex).UpdateSortableAttributes(&sortable); err != nil {
		logger.Log.Warn("failed to update content sortable attributes", zap.Error(err))
	}

	searchable := []string{"title", "tags", "description", "uploader"}
	if _, err := s.client.Index(contentIndex).UpdateSearchableAttributes(&searchable); err != nil {
		logger.Log.Warn("failed to update content searchable attributes", zap.Error(err))
	}
}

type contentDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	MediaType   string   `json:"media_type"`
	Uploader    string   `json:"uploader"`
	TotalVotes  int      `json:"total_votes"`
	IsRevealed  bool     `json:"is_revealed"`
	IsActive    bool     `json:"is_active"`
	Status      string   `json:"status"`
	CreatedAt   int64    `json:"created_at"`
}

func (s *meiliSearchService) IndexContent(ctx context.Context, content *entity.Content, uploader string) error {
	doc := contentDoc{
		ID:          content.ID.String(),
		Title:       content.Title,
		Description: sanitize.PlainText(content.Description),
		Tags:        []string(content.Tags),
		Category:    content.Category,
		Difficulty:  content.Difficulty,
		MediaType:   content.MediaType,
		Uploader:    uploader,
		TotalVotes:  content.TotalVotes,
		IsRevealed:  content.IsRevealed,
		IsActive:    content.IsActive,
		Status:      content.Status,
		CreatedAt:   content.CreatedAt.Unix(),
	}

	task, err := s.client.Index(contentIndex).AddDocuments([]contentDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index content %s: %w", doc.ID, err)
	}
	logger.Log.Debug("indexed content", zap.String("content_id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteContent(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(contentIndex).DeleteDocument(id.String())
	return err
}

type rawSearchResult struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
	EstimatedTotalHits int64 `json:"estimatedTotalHits"`
}

func (s *meiliSearchService) SearchContent(ctx context.Context, query string, filter ContentFilter, limit, offset int) ([]uuid.UUID, int64, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Offset:               int64(offset),
		AttributesToRetrieve: []string{"id"},
		Filter:               buildFilter(filter),
	}

	raw, err := s.client.Index(contentIndex).SearchRaw(query, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search content: %w", err)
	}

	var result rawSearchResult
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, 0, fmt.Errorf("decode search result: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, result.EstimatedTotalHits, nil
}

// buildFilter always restricts hits to active, approved content so the
// reported total matches what callers may show.
func buildFilter(f ContentFilter) string {
	parts := []string{"is_active = true", fmt.Sprintf("status = %q", entity.StatusApproved)}
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("category = %q", f.Category))
	}
	if f.Difficulty != "" {
		parts = append(parts, fmt.Sprintf("difficulty = %q", f.Difficulty))
	}
	if f.MediaType != "" {
		parts = append(parts, fmt.Sprintf("media_type = %q", f.MediaType))
	}
	return strings.Join(parts, " AND ")
}

func strPtr(s string) *string {
	return &s
}
