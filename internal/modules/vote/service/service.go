package service

import (
	"context"
	"errors"
	"net/http"

	"anoa.com/realorai/internal/entity"
	contentDto "anoa.com/realorai/internal/modules/content/dto"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	"anoa.com/realorai/internal/modules/vote/dto"
	"anoa.com/realorai/internal/modules/vote/repository"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VoteService interface {
	SubmitVote(ctx context.Context, userID uuid.UUID, input dto.SubmitVoteInput) (*dto.SubmitVoteResponse, error)
	GetMyVotes(ctx context.Context, userID uuid.UUID, query commonDto.PaginationQuery) (*dto.VoteHistoryResponse, error)
}

type voteService struct {
	repo        repository.VoteRepository
	contentRepo contentRepo.ContentRepository
}

func NewVoteService(repo repository.VoteRepository, contentRepo contentRepo.ContentRepository) VoteService {
	return &voteService{
		repo:        repo,
		contentRepo: contentRepo,
	}
}

func (s *voteService) SubmitVote(ctx context.Context, userID uuid.UUID, input dto.SubmitVoteInput) (*dto.SubmitVoteResponse, error) {
	if !input.Vote.Valid() {
		return nil, apperror.Validation("vote must be either ai or real")
	}

	existing, err := s.repo.FindByUserAndContent(ctx, userID, input.ContentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateVote
	}

	content, err := s.contentRepo.FindByID(ctx, input.ContentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrContentUnavailable
		}
		return nil, err
	}
	if !content.AcceptsVotes() {
		return nil, apperror.ErrContentUnavailable
	}
	if content.UploaderID == userID {
		return nil, apperror.New(http.StatusForbidden, "you cannot vote on your own upload", apperror.ErrForbidden)
	}

	vote := &entity.Vote{
		ContentID: input.ContentID,
		UserID:    userID,
		Choice:    input.Vote,
	}
	if err := s.repo.CreateWithTally(ctx, vote); err != nil {
		return nil, err
	}

	updated, err := s.contentRepo.FindByID(ctx, input.ContentID)
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("vote recorded",
		zap.String("content_id", input.ContentID.String()),
		zap.String("user_id", userID.String()),
		zap.String("choice", string(input.Vote)),
	)

	return &dto.SubmitVoteResponse{
		Vote:  dto.NewVoteResponse(vote),
		Tally: contentDto.NewTallyResponse(updated),
	}, nil
}

func (s *voteService) GetMyVotes(ctx context.Context, userID uuid.UUID, query commonDto.PaginationQuery) (*dto.VoteHistoryResponse, error) {
	page, limit := query.Normalize(20, 100)

	votes, total, err := s.repo.FindByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.VoteResponse, 0, len(votes))
	for i := range votes {
		responses = append(responses, dto.NewVoteResponse(&votes[i]))
	}

	return &dto.VoteHistoryResponse{
		Votes: responses,
		Meta:  commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}
