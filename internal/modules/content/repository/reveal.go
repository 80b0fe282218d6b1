package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevealResult lists the voters scored by a reveal.
type RevealResult struct {
	Content         *entity.Content
	CorrectVoters   []uuid.UUID
	IncorrectVoters []uuid.UUID
}

// Reveal flips is_revealed, scores every pending vote on the content and
// applies the outcome to the voters' counters, all in one transaction. The
// conditional update on is_revealed makes a second reveal fail with
// apperror.ErrAlreadyRevealed instead of double scoring.
func (r *contentRepository) Reveal(ctx context.Context, id uuid.UUID, reward int, at time.Time) (*RevealResult, error) {
	result := &RevealResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Content{}).
			Where("id = ? AND is_revealed = ?", id, false).
			Updates(map[string]any{"is_revealed": true, "revealed_at": at})
		if res.Error != nil {
			return res.Error
		}

		var content entity.Content
		if err := tx.Where("id = ?", id).First(&content).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return apperror.ErrAlreadyRevealed
		}
		result.Content = &content

		truth := content.GroundTruth()
		pending := tx.Model(&entity.Vote{}).
			Where("content_id = ? AND state = ?", id, entity.VotePending).
			Session(&gorm.Session{})

		if err := pending.
			Where("choice = ?", truth).
			Pluck("user_id", &result.CorrectVoters).Error; err != nil {
			return err
		}
		if err := pending.
			Where("choice <> ?", truth).
			Pluck("user_id", &result.IncorrectVoters).Error; err != nil {
			return err
		}

		for _, choice := range []entity.VoteChoice{entity.ChoiceAI, entity.ChoiceReal} {
			if err := scoreVotes(tx, id, choice, truth, reward, at); err != nil {
				return err
			}
		}

		if len(result.CorrectVoters) > 0 {
			if err := tx.Model(&entity.User{}).
				Where("id IN ?", result.CorrectVoters).
				Updates(map[string]any{
					"total_votes":         gorm.Expr("total_votes + 1"),
					"correct_votes":       gorm.Expr("correct_votes + 1"),
					"points":              gorm.Expr("points + ?", reward),
					"consecutive_correct": gorm.Expr("consecutive_correct + 1"),
					"max_consecutive_correct": gorm.Expr(
						"CASE WHEN consecutive_correct + 1 > max_consecutive_correct THEN consecutive_correct + 1 ELSE max_consecutive_correct END",
					),
				}).Error; err != nil {
				return err
			}
		}

		if len(result.IncorrectVoters) > 0 {
			if err := tx.Model(&entity.User{}).
				Where("id IN ?", result.IncorrectVoters).
				Updates(map[string]any{
					"total_votes":         gorm.Expr("total_votes + 1"),
					"consecutive_correct": 0,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyRevealed) {
			return nil, apperror.ErrAlreadyRevealed
		}
		return nil, err
	}

	return result, nil
}

// scoreVotes applies Vote.Score to every pending vote for one choice. All
// votes with the same choice score identically, so one template is enough.
func scoreVotes(tx *gorm.DB, contentID uuid.UUID, choice, truth entity.VoteChoice, reward int, at time.Time) error {
	scored := entity.Vote{Choice: choice, State: entity.VotePending}
	if err := scored.Score(truth, reward, at); err != nil {
		return err
	}
	return tx.Model(&entity.Vote{}).
		Where("content_id = ? AND state = ? AND choice = ?", contentID, entity.VotePending, choice).
		Updates(map[string]any{
			"state":         scored.State,
			"is_correct":    *scored.IsCorrect,
			"points_earned": scored.PointsEarned,
			"scored_at":     at,
		}).Error
}
