package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/realorai/internal/entity"
	contentDto "anoa.com/realorai/internal/modules/content/dto"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	contentService "anoa.com/realorai/internal/modules/content/service"
	"anoa.com/realorai/internal/modules/report/dto"
	"anoa.com/realorai/internal/modules/report/repository"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReportService interface {
	CreateReport(ctx context.Context, reporterID uuid.UUID, input dto.CreateReportInput) (*dto.ReportResponse, error)
	ListReports(ctx context.Context, query dto.ReportListQuery) (*dto.ReportListResponse, error)
	ResolveReport(ctx context.Context, id, adminID uuid.UUID, input dto.ResolveReportInput) (*dto.ReportResponse, error)
	CountPending(ctx context.Context) (int64, error)
}

type reportService struct {
	repo        repository.ReportRepository
	contentRepo contentRepo.ContentRepository
	contents    contentService.ContentService
	now         func() time.Time
}

func NewReportService(
	repo repository.ReportRepository,
	contentRepo contentRepo.ContentRepository,
	contents contentService.ContentService,
) ReportService {
	return &reportService{
		repo:        repo,
		contentRepo: contentRepo,
		contents:    contents,
		now:         time.Now,
	}
}

func (s *reportService) CreateReport(ctx context.Context, reporterID uuid.UUID, input dto.CreateReportInput) (*dto.ReportResponse, error) {
	content, err := s.contentRepo.FindByID(ctx, input.ContentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !content.IsActive {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}

	report := &entity.Report{
		ReporterID: reporterID,
		ContentID:  input.ContentID,
		Reason:     input.Reason,
		Details:    sanitize.PlainText(input.Description),
		Status:     entity.ReportPending,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateReport
		}
		return nil, err
	}

	logger.Log.Info("content reported",
		zap.String("content_id", input.ContentID.String()),
		zap.String("reason", input.Reason),
	)

	report.Content = content
	res := dto.NewReportResponse(report)
	return &res, nil
}

func (s *reportService) ListReports(ctx context.Context, query dto.ReportListQuery) (*dto.ReportListResponse, error) {
	page, limit := query.Normalize(20, 100)

	reports, total, err := s.repo.FindAll(ctx, query.Status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		responses = append(responses, dto.NewReportResponse(&reports[i]))
	}

	return &dto.ReportListResponse{
		Reports: responses,
		Meta:    commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *reportService) ResolveReport(ctx context.Context, id, adminID uuid.UUID, input dto.ResolveReportInput) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if report.Status != entity.ReportPending {
		return nil, apperror.New(http.StatusConflict, "report has already been handled", apperror.ErrConflict)
	}

	if input.DisableContent && input.Status == entity.ReportResolved {
		err := s.contents.Delete(ctx, report.ContentID, &contentDto.Viewer{ID: adminID, IsAdmin: true})
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}

	now := s.now()
	report.Status = input.Status
	report.ResolvedBy = &adminID
	report.ResolvedAt = &now
	report.ResolutionNote = sanitize.PlainText(input.Note)
	if err := s.repo.Save(ctx, report); err != nil {
		return nil, err
	}

	res := dto.NewReportResponse(report)
	return &res, nil
}

func (s *reportService) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}
