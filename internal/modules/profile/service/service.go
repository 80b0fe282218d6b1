package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"anoa.com/realorai/internal/entity"
	badgeService "anoa.com/realorai/internal/modules/badge/service"
	leaderboard "anoa.com/realorai/internal/modules/leaderboard/service"
	profileDto "anoa.com/realorai/internal/modules/profile/dto"
	userDto "anoa.com/realorai/internal/modules/user/dto"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/sanitize"
	"anoa.com/realorai/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MaxAvatarBytes = 5 << 20

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string, viewerID *uuid.UUID) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	followRepo   userRepo.FollowRepository
	badges       badgeService.BadgeService
	leaderboard  leaderboard.LeaderboardService
	imageStorage storage.MediaStorage
}

func NewProfileService(
	repo userRepo.UserRepository,
	followRepo userRepo.FollowRepository,
	badges badgeService.BadgeService,
	leaderboard leaderboard.LeaderboardService,
	imageStorage storage.MediaStorage,
) ProfileService {
	return &profileService{
		repo:         repo,
		followRepo:   followRepo,
		badges:       badges,
		leaderboard:  leaderboard,
		imageStorage: imageStorage,
	}
}

var errUserNotFound = fmt.Errorf("user: %w", apperror.ErrNotFound)

func (s *profileService) findUser(ctx context.Context, find func() (*entity.User, error)) (*entity.User, error) {
	user, err := find()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	if user.AnonymizedAt != nil {
		return nil, errUserNotFound
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, func() (*entity.User, error) { return s.repo.FindByID(ctx, userID) })
	if err != nil {
		return nil, err
	}

	if input.Password != nil && *input.Password != "" {
		if user.AuthProvider != entity.ProviderLocal {
			return nil, apperror.Validation("password cannot be set on a social login account")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	oldAvatar := user.AvatarURL
	if avatar != nil && avatar.Reader != nil {
		url, err := s.uploadAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID, DisplayName: user.Username}
	}
	if input.DisplayName != nil {
		if name := sanitize.PlainText(*input.DisplayName); name != "" {
			profile.DisplayName = name
		}
	}
	if input.Bio != nil {
		profile.Bio = normalizeOptional(input.Bio)
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	if oldAvatar != nil && user.AvatarURL != oldAvatar && s.imageStorage != nil {
		if err := s.imageStorage.Delete(ctx, *oldAvatar); err != nil {
			logger.Log.Warn("failed to delete previous avatar", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	return s.GetCurrentProfile(ctx, userID)
}

func (s *profileService) uploadAvatar(ctx context.Context, avatar *commonDto.UploadFile) (string, error) {
	if s.imageStorage == nil {
		return "", apperror.New(http.StatusServiceUnavailable, "avatar uploads are disabled", apperror.ErrStorage)
	}
	if avatar.Size > MaxAvatarBytes {
		return "", apperror.Validation("avatar must not exceed 5 MB")
	}

	data, err := io.ReadAll(io.LimitReader(avatar.Reader, MaxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return "", apperror.Validation("avatar must not exceed 5 MB")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperror.Validation("avatar must be an image")
	}

	return s.imageStorage.Upload(ctx, bytes.NewReader(data), "avatars", "avatar"+mt.Extension())
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string, viewerID *uuid.UUID) (*profileDto.PublicProfileResponse, error) {
	user, err := s.findUser(ctx, func() (*entity.User, error) { return s.repo.FindByUsername(ctx, username) })
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errUserNotFound
	}

	res := &profileDto.PublicProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Stats: profileDto.PublicStats{
			TotalVotes:            user.TotalVotes,
			CorrectVotes:          user.CorrectVotes,
			Accuracy:              user.Accuracy(),
			Points:                user.Points,
			MaxConsecutiveCorrect: user.MaxConsecutiveCorrect,
			UploadCount:           user.UploadCount,
		},
		GamificationStatus: s.status(ctx, user),
	}
	if user.Profile != nil {
		res.DisplayName = user.Profile.DisplayName
		res.Bio = user.Profile.Bio
	}

	if res.Badges, err = s.badges.GetUserBadges(ctx, user.ID); err != nil {
		return nil, err
	}

	if s.followRepo != nil {
		if res.Followers, res.Following, err = s.followRepo.Counts(ctx, user.ID); err != nil {
			return nil, err
		}
		if viewerID != nil && *viewerID != user.ID {
			following, err := s.followRepo.IsFollowing(ctx, *viewerID, user.ID)
			if err != nil {
				return nil, err
			}
			res.IsFollowing = &following
		}
	}

	return res, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, func() (*entity.User, error) { return s.repo.FindByID(ctx, userID) })
	if err != nil {
		return nil, err
	}

	badges, err := s.badges.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &profileDto.ProfileResponse{
		User:               userDto.NewUserResponse(user),
		Badges:             badges,
		GamificationStatus: s.status(ctx, user),
	}, nil
}

func (s *profileService) status(ctx context.Context, user *entity.User) commonDto.GamificationStatus {
	if s.leaderboard == nil {
		return leaderboard.GetGamificationStatus(user.Points)
	}
	return s.leaderboard.GetStatus(ctx, user)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := sanitize.PlainText(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
