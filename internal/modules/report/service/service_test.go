package service_test

import (
	"context"
	"testing"

	"anoa.com/realorai/internal/entity"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	contentService "anoa.com/realorai/internal/modules/content/service"
	"anoa.com/realorai/internal/modules/report/dto"
	reportRepo "anoa.com/realorai/internal/modules/report/repository"
	reportService "anoa.com/realorai/internal/modules/report/service"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportService(db *gorm.DB) reportService.ReportService {
	contents := contentRepo.NewContentRepository(db)
	contentSvc := contentService.NewContentService(
		contents,
		contentRepo.NewMediaRepository(db),
		userRepo.NewUserRepository(db),
		nil, nil, nil, nil,
		storage.NewInlineStorage(),
		nil,
		contentService.Settings{},
	)
	return reportService.NewReportService(reportRepo.NewReportRepository(db), contents, contentSvc)
}

func TestCreateReport_OncePerUser(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	reporter := testutil.CreateUser(t, db, "reporter")
	content := testutil.CreateContent(t, db, owner, true)

	input := dto.CreateReportInput{ContentID: content.ID, Reason: "wrong_answer", Description: "clearly <b>AI</b>"}
	res, err := svc.CreateReport(ctx, reporter.ID, input)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportPending, res.Status)
	assert.Equal(t, "clearly AI", res.Description)

	_, err = svc.CreateReport(ctx, reporter.ID, input)
	assert.ErrorIs(t, err, apperror.ErrDuplicateReport)

	_, err = svc.CreateReport(ctx, reporter.ID, dto.CreateReportInput{ContentID: uuid.New(), Reason: "spam"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	pending, err := svc.CountPending(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestResolveReport_DisablesContent(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	reporter := testutil.CreateUser(t, db, "reporter")
	admin := testutil.CreateAdmin(t, db, "mod")
	content := testutil.CreateContent(t, db, owner, true)

	report, err := svc.CreateReport(ctx, reporter.ID, dto.CreateReportInput{ContentID: content.ID, Reason: "copyright"})
	require.NoError(t, err)

	res, err := svc.ResolveReport(ctx, report.ID, admin.ID, dto.ResolveReportInput{
		Status:         entity.ReportResolved,
		Note:           "taken down",
		DisableContent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReportResolved, res.Status)
	require.NotNil(t, res.ResolvedBy)
	assert.Equal(t, admin.ID, *res.ResolvedBy)

	var stored entity.Content
	require.NoError(t, db.First(&stored, "id = ?", content.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = svc.ResolveReport(ctx, report.ID, admin.ID, dto.ResolveReportInput{Status: entity.ReportDismissed})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	list, err := svc.ListReports(ctx, dto.ReportListQuery{Status: entity.ReportResolved})
	require.NoError(t, err)
	assert.Len(t, list.Reports, 1)
}
