package view_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	view "anoa.com/realorai/internal/modules/view/service"
	"anoa.com/realorai/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViews_DedupAndSync(t *testing.T) {
	db := testutil.SetupDB(t)
	rdb, mr := testutil.SetupRedis(t)
	svc := view.NewViewService(rdb, contentRepo.NewContentRepository(db), time.Hour)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	content := testutil.CreateContent(t, db, uploader, true)

	require.NoError(t, svc.RecordView(ctx, content.ID, "viewer-a"))
	require.NoError(t, svc.RecordView(ctx, content.ID, "viewer-a"))
	require.NoError(t, svc.RecordView(ctx, content.ID, "ip:10.0.0.1"))

	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got entity.Content
	require.NoError(t, db.First(&got, "id = ?", content.ID).Error)
	assert.EqualValues(t, 2, got.Views)

	n, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing left to flush")

	mr.FastForward(time.Hour + time.Second)
	require.NoError(t, svc.RecordView(ctx, content.ID, "viewer-a"))
	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	require.NoError(t, db.First(&got, "id = ?", content.ID).Error)
	assert.EqualValues(t, 3, got.Views)
}

func TestViews_NilRedis(t *testing.T) {
	svc := view.NewViewService(nil, nil, 0)
	assert.NoError(t, svc.RecordView(context.Background(), uuid.New(), "anyone"))
	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
