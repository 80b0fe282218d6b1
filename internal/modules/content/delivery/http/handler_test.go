package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contentHTTP "anoa.com/realorai/internal/modules/content/delivery/http"
	"anoa.com/realorai/internal/modules/content/dto"
	contentService "anoa.com/realorai/internal/modules/content/service"
	"anoa.com/realorai/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubContents struct {
	contentService.ContentService
}

func (stubContents) GetByID(_ context.Context, id uuid.UUID, _ *dto.Viewer) (*dto.ContentResponse, error) {
	return &dto.ContentResponse{ID: id, Title: "sunset"}, nil
}

type failingViews struct{}

func (failingViews) RecordView(context.Context, uuid.UUID, string) error {
	return errors.New("redis down")
}

func (failingViews) Sync(context.Context) (int, error) { return 0, nil }

func TestGetByID_LogsViewFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	h := contentHTTP.NewContentHandler(stubContents{}, failingViews{})
	router := gin.New()
	router.GET("/contents/:id", h.GetByID)

	id := uuid.New()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contents/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("failed to record view").Len() == 1
	}, time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("failed to record view").All()[0]
	assert.Equal(t, id.String(), entry.ContextMap()["content_id"])
}
