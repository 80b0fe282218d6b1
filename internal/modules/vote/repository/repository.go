package repository

import (
	"context"
	"errors"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteRepository interface {
	// CreateWithTally stores the vote and bumps the content tally atomically.
	CreateWithTally(ctx context.Context, vote *entity.Vote) error
	FindByUserAndContent(ctx context.Context, userID, contentID uuid.UUID) (*entity.Vote, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Vote, int64, error)
	Count(ctx context.Context) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func tallyColumn(choice entity.VoteChoice) string {
	if choice == entity.ChoiceAI {
		return "ai_votes"
	}
	return "real_votes"
}

func (r *voteRepository) CreateWithTally(ctx context.Context, vote *entity.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		column := tallyColumn(vote.Choice)

		// The content row is updated first so a concurrent reveal either sees
		// this vote or makes this update match nothing.
		res := tx.Model(&entity.Content{}).
			Where("id = ? AND is_active = ? AND status = ? AND is_revealed = ?",
				vote.ContentID, true, entity.StatusApproved, false).
			Updates(map[string]any{
				column:        gorm.Expr(column+" + ?", 1),
				"total_votes": gorm.Expr("total_votes + ?", 1),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrContentUnavailable
		}

		vote.State = entity.VotePending
		if err := tx.Omit("Content").Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.ErrDuplicateVote
			}
			return err
		}
		return nil
	})
}

func (r *voteRepository) FindByUserAndContent(ctx context.Context, userID, contentID uuid.UUID) (*entity.Vote, error) {
	var vote entity.Vote
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Vote, int64, error) {
	var votes []entity.Vote
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Vote{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Content").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&votes).Error; err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (r *voteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Vote{}).Count(&total).Error
	return total, err
}
