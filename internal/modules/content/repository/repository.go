package repository

import (
	"context"
	"strings"
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SortNewest  = "newest"
	SortPopular = "popular"
)

// ContentFilter narrows FindAll. Zero values mean "any".
type ContentFilter struct {
	Search     string
	Category   string
	Difficulty string
	MediaType  string
	Status     string
	Recycled   *bool
	Revealed   *bool
	UploaderID *uuid.UUID
	Sort       string
	Limit      int
	Offset     int
}

type ContentRepository interface {
	Create(ctx context.Context, content *entity.Content) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Content, error)
	// FindByIDs keeps the order of ids and skips ids that do not exist.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Content, error)
	FindAll(ctx context.Context, filter ContentFilter) ([]*entity.Content, int64, error)
	Update(ctx context.Context, content *entity.Content) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// VoteChoices returns userID's vote on each of contentIDs that has one.
	VoteChoices(ctx context.Context, userID uuid.UUID, contentIDs []uuid.UUID) (map[uuid.UUID]entity.VoteChoice, error)
	Reveal(ctx context.Context, id uuid.UUID, reward int, at time.Time) (*RevealResult, error)
	// MarkRecycled resurfaces revealed content last revealed or recycled before cutoff.
	MarkRecycled(ctx context.Context, cutoff, at time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	AddViews(ctx context.Context, id uuid.UUID, n int64) error
	CountRevealed(ctx context.Context) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *entity.Content) error {
	return r.db.WithContext(ctx).Omit("Uploader").Create(content).Error
}

func (r *contentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Content, error) {
	var content entity.Content
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("id = ?", id).
		First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Content, error) {
	if len(ids) == 0 {
		return []*entity.Content{}, nil
	}

	var contents []*entity.Content
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("id IN ?", ids).
		Find(&contents).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.Content, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
	}

	ordered := make([]*entity.Content, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *contentRepository) FindAll(ctx context.Context, filter ContentFilter) ([]*entity.Content, int64, error) {
	var contents []*entity.Content
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Content{}).Where("is_active = ?", true)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.MediaType != "" {
		query = query.Where("media_type = ?", filter.MediaType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Recycled != nil {
		query = query.Where("is_recycled = ?", *filter.Recycled)
	}
	if filter.Revealed != nil {
		query = query.Where("is_revealed = ?", *filter.Revealed)
	}
	if filter.UploaderID != nil {
		query = query.Where("uploader_id = ?", *filter.UploaderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case SortPopular:
		query = query.Order("total_votes DESC").Order("created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := query.Preload("Uploader").Find(&contents).Error; err != nil {
		return nil, 0, err
	}
	return contents, total, nil
}

func (r *contentRepository) Update(ctx context.Context, content *entity.Content) error {
	return r.db.WithContext(ctx).Omit("Uploader").Save(content).Error
}

func (r *contentRepository) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	return r.db.WithContext(ctx).Model(&entity.Content{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}

func (r *contentRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.Content{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentRepository) VoteChoices(ctx context.Context, userID uuid.UUID, contentIDs []uuid.UUID) (map[uuid.UUID]entity.VoteChoice, error) {
	choices := make(map[uuid.UUID]entity.VoteChoice, len(contentIDs))
	if len(contentIDs) == 0 {
		return choices, nil
	}

	var rows []struct {
		ContentID uuid.UUID
		Choice    entity.VoteChoice
	}
	if err := r.db.WithContext(ctx).Model(&entity.Vote{}).
		Select("content_id, choice").
		Where("user_id = ? AND content_id IN ?", userID, contentIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		choices[row.ContentID] = row.Choice
	}
	return choices, nil
}

func (r *contentRepository) MarkRecycled(ctx context.Context, cutoff, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Content{}).
		Where("is_active = ? AND is_revealed = ?", true, true).
		Where("(recycle_at IS NULL AND revealed_at < ?) OR recycle_at < ?", cutoff, cutoff).
		Updates(map[string]any{
			"is_recycled":   true,
			"recycle_at":    at,
			"recycle_count": gorm.Expr("recycle_count + ?", 1),
		})
	return res.RowsAffected, res.Error
}

func (r *contentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&entity.Content{}).
		Select("status, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{
		entity.StatusPending:  0,
		entity.StatusApproved: 0,
		entity.StatusRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *contentRepository) CountRevealed(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Content{}).
		Where("is_active = ? AND is_revealed = ?", true, true).
		Count(&total).Error
	return total, err
}
