package service

import (
	"context"

	"anoa.com/realorai/internal/entity"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	reportRepo "anoa.com/realorai/internal/modules/report/repository"
	"anoa.com/realorai/internal/modules/user/repository"
	voteRepo "anoa.com/realorai/internal/modules/vote/repository"
)

type PublicStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalContent    int64 `json:"total_content"`
	RevealedContent int64 `json:"revealed_content"`
	TotalVotes      int64 `json:"total_votes"`
}

type PlatformStats struct {
	PublicStats
	ActiveUsers     int64            `json:"active_users"`
	ContentByStatus map[string]int64 `json:"content_by_status"`
	PendingReports  int64            `json:"pending_reports"`
}

type StatService interface {
	GetTotalUsers(ctx context.Context) (int64, error)
	GetPublicStats(ctx context.Context) (*PublicStats, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

type statService struct {
	userRepo    repository.UserRepository
	contentRepo contentRepo.ContentRepository
	voteRepo    voteRepo.VoteRepository
	reportRepo  reportRepo.ReportRepository
}

func NewStatService(
	userRepo repository.UserRepository,
	contentRepo contentRepo.ContentRepository,
	voteRepo voteRepo.VoteRepository,
	reportRepo reportRepo.ReportRepository,
) StatService {
	return &statService{
		userRepo:    userRepo,
		contentRepo: contentRepo,
		voteRepo:    voteRepo,
		reportRepo:  reportRepo,
	}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func (s *statService) GetPublicStats(ctx context.Context) (*PublicStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.contentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revealed, err := s.contentRepo.CountRevealed(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicStats{
		TotalUsers:      users,
		TotalContent:    byStatus[entity.StatusApproved],
		RevealedContent: revealed,
		TotalVotes:      votes,
	}, nil
}

func (s *statService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	public, err := s.GetPublicStats(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.contentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.reportRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		PublicStats:     *public,
		ActiveUsers:     active,
		ContentByStatus: byStatus,
		PendingReports:  pending,
	}, nil
}
