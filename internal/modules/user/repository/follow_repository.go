package repository

import (
	"context"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	// Follow returns false when the edge already existed.
	Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.User, int64, error)
	Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.User, int64, error)
	Counts(ctx context.Context, userID uuid.UUID) (followers int64, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Follower", "Following").
		Create(&entity.Follow{FollowerID: followerID, FollowingID: followingID})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&entity.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.User, int64, error) {
	ids := r.db.Model(&entity.Follow{}).Select("follower_id").Where("following_id = ?", userID)
	return r.listUsers(ctx, ids, limit, offset)
}

func (r *followRepository) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.User, int64, error) {
	ids := r.db.Model(&entity.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	return r.listUsers(ctx, ids, limit, offset)
}

func (r *followRepository) listUsers(ctx context.Context, ids *gorm.DB, limit, offset int) ([]entity.User, int64, error) {
	var (
		users []entity.User
		total int64
	)

	query := r.db.WithContext(ctx).Model(&entity.User{}).Where("id IN (?)", ids)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("username ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
