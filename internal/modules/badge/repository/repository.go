package repository

import (
	"context"
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *entity.Badge) error
	Save(ctx context.Context, badge *entity.Badge) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Badge, error)
	FindAll(ctx context.Context, activeOnly bool) ([]entity.Badge, error)
	FindUnownedActive(ctx context.Context, userID uuid.UUID) ([]entity.Badge, error)
	FindUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
	// GrantBadges inserts the badges the user does not own yet and credits
	// their rewards, returning only the badges that were actually granted.
	GrantBadges(ctx context.Context, userID uuid.UUID, badges []entity.Badge, at time.Time) ([]entity.Badge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) Create(ctx context.Context, badge *entity.Badge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *badgeRepository) Save(ctx context.Context, badge *entity.Badge) error {
	return r.db.WithContext(ctx).Save(badge).Error
}

func (r *badgeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Badge, error) {
	var badge entity.Badge
	if err := r.db.WithContext(ctx).First(&badge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *badgeRepository) FindAll(ctx context.Context, activeOnly bool) ([]entity.Badge, error) {
	var badges []entity.Badge
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("category ASC").Order("condition_value ASC").Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) FindUnownedActive(ctx context.Context, userID uuid.UUID) ([]entity.Badge, error) {
	var badges []entity.Badge
	owned := r.db.Model(&entity.UserBadge{}).Select("badge_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", owned).
		Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) FindUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var userBadges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&userBadges).Error
	return userBadges, err
}

func (r *badgeRepository) GrantBadges(ctx context.Context, userID uuid.UUID, badges []entity.Badge, at time.Time) ([]entity.Badge, error) {
	var granted []entity.Badge

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reward := 0
		for _, badge := range badges {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Omit("Badge").
				Create(&entity.UserBadge{UserID: userID, BadgeID: badge.ID, EarnedAt: at})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			granted = append(granted, badge)
			reward += badge.PointReward
		}

		if reward == 0 {
			return nil
		}
		return tx.Model(&entity.User{}).
			Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points + ?", reward)).Error
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}
