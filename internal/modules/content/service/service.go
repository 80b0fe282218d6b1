package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/realorai/internal/entity"
	badgeService "anoa.com/realorai/internal/modules/badge/service"
	categoryService "anoa.com/realorai/internal/modules/category/service"
	"anoa.com/realorai/internal/modules/content/dto"
	"anoa.com/realorai/internal/modules/content/repository"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	searchService "anoa.com/realorai/internal/modules/search/service"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/ratelimiter"
	"anoa.com/realorai/pkg/sanitize"
	"anoa.com/realorai/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	actionUpload = "upload"
	mediaFolder  = "content"
	orphanBatch  = 100
)

// Settings are the content knobs taken from config.
type Settings struct {
	AutoApprove    bool
	MaxTags        int
	MaxTagLen      int
	MaxUploadBytes int64
	UploadCooldown time.Duration
	RecycleAfter   time.Duration
	OrphanAge      time.Duration
}

type ContentService interface {
	Create(ctx context.Context, uploaderID uuid.UUID, input dto.CreateContentInput, file commonDto.UploadFile) (*dto.ContentResponse, error)
	GetAll(ctx context.Context, query dto.ContentListQuery, viewer *dto.Viewer) (*dto.ContentListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, viewer *dto.Viewer) (*dto.ContentResponse, error)
	GetMine(ctx context.Context, uploaderID uuid.UUID, query commonDto.PaginationQuery) (*dto.ContentListResponse, error)
	Update(ctx context.Context, id uuid.UUID, viewer *dto.Viewer, input dto.UpdateContentInput) (*dto.ContentResponse, error)
	Delete(ctx context.Context, id uuid.UUID, viewer *dto.Viewer) error
	Search(ctx context.Context, query dto.SearchQuery, viewer *dto.Viewer) (*dto.ContentListResponse, error)
	GetTally(ctx context.Context, id uuid.UUID) (*dto.TallyResponse, error)

	ListPending(ctx context.Context, query commonDto.PaginationQuery) (*dto.ContentListResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.ContentResponse, error)
	// Reindex pushes the current state of the content to search, if enabled.
	Reindex(ctx context.Context, id uuid.UUID)

	RecycleStale(ctx context.Context) (int64, error)
	CleanupOrphanMedia(ctx context.Context) (int, error)
}

type contentService struct {
	repo         repository.ContentRepository
	mediaRepo    repository.MediaRepository
	userRepo     userRepo.UserRepository
	categories   categoryService.CategoryService
	badges       badgeService.BadgeService
	search       searchService.SearchService
	notification notifService.NotificationService
	media        storage.MediaStorage
	cooldown     *ratelimiter.Cooldown
	settings     Settings
	now          func() time.Time
}

func NewContentService(
	repo repository.ContentRepository,
	mediaRepo repository.MediaRepository,
	userRepo userRepo.UserRepository,
	categories categoryService.CategoryService,
	badges badgeService.BadgeService,
	search searchService.SearchService,
	notification notifService.NotificationService,
	media storage.MediaStorage,
	cooldown *ratelimiter.Cooldown,
	settings Settings,
) ContentService {
	if settings.MaxTags <= 0 {
		settings.MaxTags = DefaultMaxTags
	}
	if settings.MaxTagLen <= 0 {
		settings.MaxTagLen = DefaultMaxTagLen
	}
	return &contentService{
		repo:         repo,
		mediaRepo:    mediaRepo,
		userRepo:     userRepo,
		categories:   categories,
		badges:       badges,
		search:       search,
		notification: notification,
		media:        media,
		cooldown:     cooldown,
		settings:     settings,
		now:          time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	return err
}

func (s *contentService) Create(ctx context.Context, uploaderID uuid.UUID, input dto.CreateContentInput, file commonDto.UploadFile) (*dto.ContentResponse, error) {
	title := sanitize.PlainText(input.Title)
	if title == "" {
		return nil, apperror.Validation("title is required")
	}
	if input.IsAI == nil {
		return nil, apperror.Validation("is_ai is required")
	}

	tags, err := s.tags(input.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.Category); err != nil {
		return nil, err
	}

	if file.Reader == nil {
		return nil, apperror.Validation("media file is required")
	}
	if s.settings.MaxUploadBytes > 0 && file.Size > s.settings.MaxUploadBytes {
		return nil, apperror.Validation(fmt.Sprintf("media must not exceed %d bytes", s.settings.MaxUploadBytes))
	}

	release, err := s.acquireUploadSlot(ctx, uploaderID)
	if err != nil {
		return nil, err
	}
	done := false
	defer func() {
		if !done {
			release()
		}
	}()

	sniffed, err := sniffMedia(file.Reader)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, sniffed.Body, mediaFolder, storedFileName(file.FileName, sniffed.MIME))
	if err != nil {
		return nil, err
	}

	asset := &entity.MediaAsset{
		UserID:   uploaderID,
		FileURL:  url,
		FileType: sniffed.MIME.String(),
		Size:     file.Size,
	}
	if err := s.mediaRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("record media asset: %w", err)
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = entity.DifficultyMedium
	}
	status := entity.StatusPending
	if s.settings.AutoApprove {
		status = entity.StatusApproved
	}

	content := &entity.Content{
		UploaderID:        uploaderID,
		Title:             title,
		Description:       sanitize.PlainText(input.Description),
		MediaURL:          url,
		MediaType:         sniffed.Kind,
		Category:          input.Category,
		Difficulty:        difficulty,
		IsAI:              *input.IsAI,
		Status:            status,
		IsRequestedReview: input.IsRequestedReview,
		Tags:              tags,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		// The asset stays unattached and is swept by CleanupOrphanMedia.
		return nil, err
	}
	done = true

	log := logger.Log.With(zap.String("content_id", content.ID.String()), zap.String("uploader_id", uploaderID.String()))
	if err := s.mediaRepo.AttachToContent(ctx, asset.ID, content.ID); err != nil {
		log.Warn("failed to attach media asset", zap.Uint("asset_id", asset.ID), zap.Error(err))
	}
	if err := s.userRepo.IncrementUploadCount(ctx, uploaderID); err != nil {
		log.Warn("failed to increment upload count", zap.Error(err))
	}
	if s.badges != nil {
		s.badges.EvaluateBadges(ctx, uploaderID)
	}

	created, err := s.repo.FindByID(ctx, content.ID)
	if err != nil {
		return nil, err
	}
	if created.Status == entity.StatusApproved {
		s.index(ctx, created)
	}

	log.Info("content uploaded", zap.String("media_type", created.MediaType), zap.String("status", created.Status))
	res := dto.NewContentResponse(created, &dto.Viewer{ID: uploaderID})
	return &res, nil
}

func (s *contentService) acquireUploadSlot(ctx context.Context, userID uuid.UUID) (func(), error) {
	release, err := s.cooldown.Acquire(ctx, userID, actionUpload, s.settings.UploadCooldown)
	if err == nil {
		return release, nil
	}

	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		return nil, err
	}
	logger.Log.Warn("upload cooldown unavailable, allowing request", zap.Error(err))
	return func() {}, nil
}

func (s *contentService) tags(raw any) ([]string, error) {
	tags := ParseTagInput(raw).normalize(s.settings.MaxTags)
	if err := ValidateTags(tags, s.settings.MaxTagLen); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *contentService) checkCategory(ctx context.Context, slug string) error {
	if slug == "" || s.categories == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Validation(fmt.Sprintf("unknown category %q", slug))
	}
	return nil
}

func (s *contentService) GetAll(ctx context.Context, query dto.ContentListQuery, viewer *dto.Viewer) (*dto.ContentListResponse, error) {
	page, limit := query.Normalize(12, 50)

	contents, total, err := s.repo.FindAll(ctx, repository.ContentFilter{
		Category:   query.Category,
		Difficulty: query.Difficulty,
		MediaType:  query.MediaType,
		Status:     entity.StatusApproved,
		Recycled:   query.Recycled,
		Revealed:   query.Revealed,
		Sort:       query.Sort,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return s.toList(ctx, contents, viewer, page, limit, total)
}

func (s *contentService) GetByID(ctx context.Context, id uuid.UUID, viewer *dto.Viewer) (*dto.ContentResponse, error) {
	content, err := s.visible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	list, err := s.toResponses(ctx, []*entity.Content{content}, viewer)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// visible loads content the viewer may look at. Unapproved content is only
// visible to its uploader and admins.
func (s *contentService) visible(ctx context.Context, id uuid.UUID, viewer *dto.Viewer) (*entity.Content, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !content.IsActive {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	if content.Status != entity.StatusApproved && !isOwnerOrAdmin(viewer, content) {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	return content, nil
}

func isOwnerOrAdmin(viewer *dto.Viewer, content *entity.Content) bool {
	return viewer != nil && (viewer.IsAdmin || viewer.ID == content.UploaderID)
}

func (s *contentService) GetMine(ctx context.Context, uploaderID uuid.UUID, query commonDto.PaginationQuery) (*dto.ContentListResponse, error) {
	page, limit := query.Normalize(12, 50)

	contents, total, err := s.repo.FindAll(ctx, repository.ContentFilter{
		UploaderID: &uploaderID,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return s.toList(ctx, contents, &dto.Viewer{ID: uploaderID}, page, limit, total)
}

func (s *contentService) Update(ctx context.Context, id uuid.UUID, viewer *dto.Viewer, input dto.UpdateContentInput) (*dto.ContentResponse, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !content.IsActive {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	if !isOwnerOrAdmin(viewer, content) {
		return nil, apperror.ErrForbidden
	}

	fields := map[string]any{}
	if input.Title != nil {
		title := sanitize.PlainText(*input.Title)
		if title == "" {
			return nil, apperror.Validation("title must not be empty")
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = sanitize.PlainText(*input.Description)
	}
	if input.Category != nil {
		if err := s.checkCategory(ctx, *input.Category); err != nil {
			return nil, err
		}
		fields["category"] = *input.Category
	}
	if input.Difficulty != nil {
		fields["difficulty"] = *input.Difficulty
	}
	if input.Tags != nil {
		tags, err := s.tags(input.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = datatypes.JSONSlice[string](tags)
	}
	if input.IsAI != nil && *input.IsAI != content.IsAI {
		if content.IsRevealed || content.TotalVotes > 0 {
			return nil, apperror.Validation("the answer cannot change once voting has started")
		}
		fields["is_ai"] = *input.IsAI
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, notFound(err)
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if updated.Status == entity.StatusApproved {
		s.index(ctx, updated)
	}

	res := dto.NewContentResponse(updated, viewer)
	return &res, nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID, viewer *dto.Viewer) error {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !content.IsActive {
		return fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	if !isOwnerOrAdmin(viewer, content) {
		return apperror.ErrForbidden
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{"is_active": false}); err != nil {
		return notFound(err)
	}
	s.unindex(ctx, id)
	return nil
}

func (s *contentService) Search(ctx context.Context, query dto.SearchQuery, viewer *dto.Viewer) (*dto.ContentListResponse, error) {
	page, limit := query.Normalize(12, 50)
	offset := (page - 1) * limit
	q := strings.TrimSpace(query.Query)

	if s.search == nil {
		contents, total, err := s.repo.FindAll(ctx, repository.ContentFilter{
			Search:     q,
			Category:   query.Category,
			Difficulty: query.Difficulty,
			MediaType:  query.MediaType,
			Status:     entity.StatusApproved,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return nil, err
		}
		return s.toList(ctx, contents, viewer, page, limit, total)
	}

	ids, total, err := s.search.SearchContent(ctx, q, searchService.ContentFilter{
		Category:   query.Category,
		Difficulty: query.Difficulty,
		MediaType:  query.MediaType,
	}, limit, offset)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	contents := found[:0]
	for _, c := range found {
		if c.IsActive && c.Status == entity.StatusApproved {
			contents = append(contents, c)
		}
	}
	// The index can lag behind the database; hits dropped here are not counted.
	if dropped := int64(len(ids) - len(contents)); dropped > 0 {
		total = max(total-dropped, int64(len(contents)))
	}
	return s.toList(ctx, contents, viewer, page, limit, total)
}

func (s *contentService) GetTally(ctx context.Context, id uuid.UUID) (*dto.TallyResponse, error) {
	content, err := s.visible(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	tally := dto.NewTallyResponse(content)
	return &tally, nil
}

func (s *contentService) ListPending(ctx context.Context, query commonDto.PaginationQuery) (*dto.ContentListResponse, error) {
	page, limit := query.Normalize(20, 100)

	contents, total, err := s.repo.FindAll(ctx, repository.ContentFilter{
		Status: entity.StatusPending,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return s.toList(ctx, contents, &dto.Viewer{IsAdmin: true}, page, limit, total)
}

func (s *contentService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.ContentResponse, error) {
	if status != entity.StatusApproved && status != entity.StatusRejected && status != entity.StatusPending {
		return nil, apperror.Validation(fmt.Sprintf("unknown status %q", status))
	}

	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !content.IsActive {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}

	if content.Status != status {
		if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
			return nil, notFound(err)
		}
		content.Status = status

		if s.notification != nil && status != entity.StatusPending {
			s.notification.NotifyAsync(&entity.Notification{
				UserID:     content.UploaderID,
				EntityID:   &content.ID,
				EntityType: "content",
				Type:       entity.NotifyContentStatus,
				Message:    fmt.Sprintf("Your upload %q was %s", content.Title, status),
			})
		}
	}

	if status == entity.StatusApproved {
		s.index(ctx, content)
	} else {
		s.unindex(ctx, id)
	}

	res := dto.NewContentResponse(content, &dto.Viewer{IsAdmin: true})
	return &res, nil
}

func (s *contentService) Reindex(ctx context.Context, id uuid.UUID) {
	if s.search == nil {
		return
	}
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.Log.Warn("reindex skipped: content lookup failed", zap.String("content_id", id.String()), zap.Error(err))
		return
	}
	if content.IsActive && content.Status == entity.StatusApproved {
		s.index(ctx, content)
	} else {
		s.unindex(ctx, id)
	}
}

func (s *contentService) index(ctx context.Context, content *entity.Content) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexContent(ctx, content, content.Uploader.Username); err != nil {
		logger.Log.Warn("failed to index content", zap.String("content_id", content.ID.String()), zap.Error(err))
	}
}

func (s *contentService) unindex(ctx context.Context, id uuid.UUID) {
	if s.search == nil {
		return
	}
	if err := s.search.DeleteContent(ctx, id); err != nil {
		logger.Log.Warn("failed to remove content from index", zap.String("content_id", id.String()), zap.Error(err))
	}
}

func (s *contentService) toList(ctx context.Context, contents []*entity.Content, viewer *dto.Viewer, page, limit int, total int64) (*dto.ContentListResponse, error) {
	responses, err := s.toResponses(ctx, contents, viewer)
	if err != nil {
		return nil, err
	}
	return &dto.ContentListResponse{
		Contents: responses,
		Meta:     commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

// toResponses builds responses and fills in the viewer's own votes.
func (s *contentService) toResponses(ctx context.Context, contents []*entity.Content, viewer *dto.Viewer) ([]dto.ContentResponse, error) {
	responses := make([]dto.ContentResponse, 0, len(contents))

	var choices map[uuid.UUID]entity.VoteChoice
	if viewer != nil && viewer.ID != uuid.Nil && len(contents) > 0 {
		ids := make([]uuid.UUID, len(contents))
		for i, c := range contents {
			ids[i] = c.ID
		}
		var err error
		if choices, err = s.repo.VoteChoices(ctx, viewer.ID, ids); err != nil {
			return nil, err
		}
	}

	for _, c := range contents {
		res := dto.NewContentResponse(c, viewer)
		if choice, ok := choices[c.ID]; ok {
			res.MyVote = &choice
		}
		responses = append(responses, res)
	}
	return responses, nil
}
