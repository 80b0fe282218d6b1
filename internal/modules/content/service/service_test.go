package service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/content/dto"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	contentService "anoa.com/realorai/internal/modules/content/service"
	searchService "anoa.com/realorai/internal/modules/search/service"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	voteRepo "anoa.com/realorai/internal/modules/vote/repository"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/ratelimiter"
	"anoa.com/realorai/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fixture struct {
	db      *gorm.DB
	svc     contentService.ContentService
	dir     string
	storage storage.MediaStorage
}

func setup(t *testing.T, settings contentService.Settings, cooldown *ratelimiter.Cooldown) *fixture {
	t.Helper()

	db := testutil.SetupDB(t)
	dir := t.TempDir()
	media, err := storage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	svc := contentService.NewContentService(
		contentRepo.NewContentRepository(db),
		contentRepo.NewMediaRepository(db),
		userRepo.NewUserRepository(db),
		nil, nil, nil, nil,
		media,
		cooldown,
		settings,
	)
	return &fixture{db: db, svc: svc, dir: dir, storage: media}
}

func pngFile() commonDto.UploadFile {
	return commonDto.UploadFile{
		Reader:      bytes.NewReader(pngHeader),
		FileName:    "photo.PNG",
		ContentType: "application/octet-stream",
		Size:        int64(len(pngHeader)),
	}
}

func boolPtr(b bool) *bool { return &b }

func TestCreate_StoresMediaAndTags(t *testing.T) {
	f := setup(t, contentService.Settings{}, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "maker")

	res, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{
		Title:       "  Sunset <b>over</b> hills ",
		Description: "shot on film",
		IsAI:        boolPtr(false),
		Tags:        `[{"label":"sunset"},{"label":" film "}]`,
	}, pngFile())
	require.NoError(t, err)

	assert.Equal(t, "Sunset over hills", res.Title)
	assert.Equal(t, entity.StatusPending, res.Status)
	assert.Equal(t, entity.MediaImage, res.MediaType)
	assert.Equal(t, []string{"sunset", "film"}, res.Tags)
	require.NotNil(t, res.IsAI, "uploader sees the answer")
	assert.False(t, *res.IsAI)

	require.True(t, strings.HasPrefix(res.MediaURL, "/uploads/content/"))
	_, err = os.Stat(filepath.Join(f.dir, "content", filepath.Base(res.MediaURL)))
	assert.NoError(t, err)

	var asset entity.MediaAsset
	require.NoError(t, f.db.First(&asset, "file_url = ?", res.MediaURL).Error)
	require.NotNil(t, asset.ContentID)
	assert.Equal(t, res.ID, *asset.ContentID)
	assert.Equal(t, "image/png", asset.FileType)

	assert.Equal(t, 1, testutil.Reload(t, f.db, user).UploadCount)
}

func TestCreate_AutoApprove(t *testing.T) {
	f := setup(t, contentService.Settings{AutoApprove: true}, nil)
	user := testutil.CreateUser(t, f.db, "maker")

	res, err := f.svc.Create(context.Background(), user.ID, dto.CreateContentInput{Title: "x", IsAI: boolPtr(true)}, pngFile())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, res.Status)
}

func TestCreate_Rejections(t *testing.T) {
	f := setup(t, contentService.Settings{MaxUploadBytes: 1024}, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "maker")

	t.Run("not media", func(t *testing.T) {
		_, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "x", IsAI: boolPtr(true)}, commonDto.UploadFile{
			Reader: strings.NewReader("just some text"), FileName: "notes.png", Size: 14,
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("too large", func(t *testing.T) {
		file := pngFile()
		file.Size = 4096
		_, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "x", IsAI: boolPtr(true)}, file)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("long tag", func(t *testing.T) {
		_, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{
			Title: "x", IsAI: boolPtr(true), Tags: strings.Repeat("a", 21),
		}, pngFile())
		assert.ErrorIs(t, err, apperror.ErrInvalidTags)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "x", IsAI: boolPtr(true)}, commonDto.UploadFile{})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	var count int64
	require.NoError(t, f.db.Model(&entity.Content{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_UploadCooldown(t *testing.T) {
	client, _ := testutil.SetupRedis(t)
	f := setup(t, contentService.Settings{UploadCooldown: time.Minute}, ratelimiter.NewCooldown(client))
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "maker")

	// a rejected upload does not use up the slot
	_, err := f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "x", IsAI: boolPtr(true)}, commonDto.UploadFile{
		Reader: strings.NewReader("plain text"), Size: 10,
	})
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "first", IsAI: boolPtr(true)}, pngFile())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, user.ID, dto.CreateContentInput{Title: "second", IsAI: boolPtr(true)}, pngFile())
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
}

func TestGetByID_AnswerVisibility(t *testing.T) {
	f := setup(t, contentService.Settings{}, nil)
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.db, "owner")
	stranger := testutil.CreateUser(t, f.db, "stranger")
	content := testutil.CreateContent(t, f.db, owner, true)
	pending := testutil.CreateContent(t, f.db, owner, true, testutil.WithStatus(entity.StatusPending))

	res, err := f.svc.GetByID(ctx, content.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, res.IsAI)

	res, err = f.svc.GetByID(ctx, content.ID, &dto.Viewer{ID: owner.ID})
	require.NoError(t, err)
	require.NotNil(t, res.IsAI)
	assert.True(t, *res.IsAI)

	_, err = f.svc.GetByID(ctx, pending.ID, &dto.Viewer{ID: stranger.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.GetByID(ctx, pending.ID, &dto.Viewer{ID: stranger.ID, IsAdmin: true})
	assert.NoError(t, err)

	require.NoError(t, voteRepo.NewVoteRepository(f.db).CreateWithTally(ctx, &entity.Vote{
		ContentID: content.ID, UserID: stranger.ID, Choice: entity.ChoiceReal,
	}))
	res, err = f.svc.GetByID(ctx, content.ID, &dto.Viewer{ID: stranger.ID})
	require.NoError(t, err)
	require.NotNil(t, res.MyVote)
	assert.Equal(t, entity.ChoiceReal, *res.MyVote)
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	f := setup(t, contentService.Settings{}, nil)
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.db, "owner")
	other := testutil.CreateUser(t, f.db, "other")
	content := testutil.CreateContent(t, f.db, owner, true)

	title := "renamed"
	_, err := f.svc.Update(ctx, content.ID, &dto.Viewer{ID: other.ID}, dto.UpdateContentInput{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	res, err := f.svc.Update(ctx, content.ID, &dto.Viewer{ID: owner.ID}, dto.UpdateContentInput{
		Title: &title,
		Tags:  "one, two",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", res.Title)
	assert.Equal(t, []string{"one", "two"}, res.Tags)

	require.NoError(t, voteRepo.NewVoteRepository(f.db).CreateWithTally(ctx, &entity.Vote{
		ContentID: content.ID, UserID: other.ID, Choice: entity.ChoiceAI,
	}))
	_, err = f.svc.Update(ctx, content.ID, &dto.Viewer{ID: owner.ID}, dto.UpdateContentInput{IsAI: boolPtr(false)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	assert.ErrorIs(t, f.svc.Delete(ctx, content.ID, &dto.Viewer{ID: other.ID}), apperror.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, content.ID, &dto.Viewer{ID: owner.ID}))

	_, err = f.svc.GetByID(ctx, content.ID, &dto.Viewer{ID: owner.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var stored entity.Content
	require.NoError(t, f.db.First(&stored, "id = ?", content.ID).Error)
	assert.Equal(t, 1, stored.TotalVotes, "soft delete keeps the tally")
}

func TestGetAllAndSearch_ListApprovedOnly(t *testing.T) {
	f := setup(t, contentService.Settings{}, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")

	sunset := testutil.CreateContent(t, f.db, owner, true)
	require.NoError(t, f.db.Model(sunset).Update("title", "Golden Sunset").Error)
	testutil.CreateContent(t, f.db, owner, false, testutil.WithCategory("animals"))
	testutil.CreateContent(t, f.db, owner, false, testutil.WithStatus(entity.StatusRejected))

	all, err := f.svc.GetAll(ctx, dto.ContentListQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, all.Contents, 2)
	assert.EqualValues(t, 2, all.Meta.TotalItems)

	animals, err := f.svc.GetAll(ctx, dto.ContentListQuery{Category: "animals"}, nil)
	require.NoError(t, err)
	assert.Len(t, animals.Contents, 1)

	found, err := f.svc.Search(ctx, dto.SearchQuery{Query: "sunset"}, nil)
	require.NoError(t, err)
	require.Len(t, found.Contents, 1)
	assert.Equal(t, sunset.ID, found.Contents[0].ID)
}

// staleIndex answers every query with a fixed hit list, like an index that
// has not caught up with a moderation change.
type staleIndex struct {
	ids   []uuid.UUID
	total int64
}

func (staleIndex) IndexContent(context.Context, *entity.Content, string) error { return nil }
func (staleIndex) DeleteContent(context.Context, uuid.UUID) error { return nil }
func (s staleIndex) SearchContent(context.Context, string, searchService.ContentFilter, int, int) ([]uuid.UUID, int64, error) {
	return s.ids, s.total, nil
}

func TestSearch_IndexedHitsHiddenInDatabaseAreNotCounted(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	visible := testutil.CreateContent(t, db, owner, true)
	rejected := testutil.CreateContent(t, db, owner, false, testutil.WithStatus(entity.StatusRejected))

	media, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := contentService.NewContentService(
		contentRepo.NewContentRepository(db),
		contentRepo.NewMediaRepository(db),
		userRepo.NewUserRepository(db),
		nil, nil,
		staleIndex{ids: []uuid.UUID{visible.ID, rejected.ID}, total: 2},
		nil,
		media,
		nil,
		contentService.Settings{},
	)

	res, err := svc.Search(context.Background(), dto.SearchQuery{Query: "anything"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, visible.ID, res.Contents[0].ID)
	assert.EqualValues(t, 1, res.Meta.TotalItems)
}

func TestSetStatus(t *testing.T) {
	f := setup(t, contentService.Settings{}, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	content := testutil.CreateContent(t, f.db, owner, true, testutil.WithStatus(entity.StatusPending))

	pending, err := f.svc.ListPending(ctx, commonDto.PaginationQuery{})
	require.NoError(t, err)
	assert.Len(t, pending.Contents, 1)

	res, err := f.svc.SetStatus(ctx, content.ID, entity.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, res.Status)

	_, err = f.svc.SetStatus(ctx, content.ID, "archived")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRecycleStale(t *testing.T) {
	f := setup(t, contentService.Settings{RecycleAfter: 24 * time.Hour}, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")

	old := testutil.CreateContent(t, f.db, owner, true, testutil.Revealed(time.Now().Add(-48*time.Hour)))
	fresh := testutil.CreateContent(t, f.db, owner, true, testutil.Revealed(time.Now().Add(-time.Hour)))
	testutil.CreateContent(t, f.db, owner, true)

	n, err := f.svc.RecycleStale(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var got entity.Content
	require.NoError(t, f.db.First(&got, "id = ?", old.ID).Error)
	assert.True(t, got.IsRecycled)
	assert.Equal(t, 1, got.RecycleCount)
	require.NotNil(t, got.RecycleAt)

	require.NoError(t, f.db.First(&got, "id = ?", fresh.ID).Error)
	assert.False(t, got.IsRecycled)

	n, err = f.svc.RecycleStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "recycled content waits another period")
}

func TestCleanupOrphanMedia(t *testing.T) {
	f := setup(t, contentService.Settings{OrphanAge: time.Hour}, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")

	url, err := f.storage.Upload(ctx, bytes.NewReader(pngHeader), "content", "orphan.png")
	require.NoError(t, err)
	orphan := &entity.MediaAsset{UserID: owner.ID, FileURL: url, CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, f.db.Create(orphan).Error)

	recent := &entity.MediaAsset{UserID: owner.ID, FileURL: "/uploads/content/recent.png"}
	require.NoError(t, f.db.Create(recent).Error)

	content := testutil.CreateContent(t, f.db, owner, true)
	attached := &entity.MediaAsset{UserID: owner.ID, FileURL: content.MediaURL, ContentID: &content.ID, CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, f.db.Create(attached).Error)

	removed, err := f.svc.CleanupOrphanMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(f.dir, "content", filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	var left int64
	require.NoError(t, f.db.Model(&entity.MediaAsset{}).Count(&left).Error)
	assert.EqualValues(t, 2, left)
}
