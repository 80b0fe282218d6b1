package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/realorai/internal/config"
	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/user/dto"
	"anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	GoogleLogin(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type authService struct {
	repo         repository.UserRepository
	secret       string
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
	now          func() time.Time
}

func NewAuthService(repo repository.UserRepository, cfg config.AuthConfig) AuthService {
	var googleConfig *oauth2.Config
	if cfg.GoogleClientID != "" {
		googleConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &authService{
		repo:         repo,
		secret:       cfg.JWTSecret,
		tokenTTL:     ttl,
		googleConfig: googleConfig,
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if strings.HasPrefix(username, "deleted-") {
		return nil, apperror.Validation("username is reserved")
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrAccountExists
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("default role: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		AuthProvider: entity.ProviderLocal,
		IsActive:     true,
	}
	profile := &entity.Profile{DisplayName: username}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrAccountExists
		}
		return nil, err
	}
	user.Role = *role

	logger.Log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredential
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, apperror.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredential
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Anonymize(ctx, userID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	logger.Log.Info("user account anonymized", zap.String("user_id", userID.String()))
	return nil
}

func (s *authService) GoogleLogin(state string) (string, error) {
	if s.googleConfig == nil {
		return "", apperror.New(http.StatusServiceUnavailable, "google login is not configured", nil)
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.googleConfig == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "google login is not configured", nil)
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "failed to exchange google code", err)
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user info: %w", err)
	}
	defer resp.Body.Close()

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	if gu.ID == "" || gu.Email == "" || !gu.VerifiedEmail {
		return nil, apperror.New(http.StatusUnauthorized, "google account has no verified email", apperror.ErrUnauthorized)
	}

	user, err := s.findOrCreateGoogleUser(ctx, gu)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	return s.buildAuthResponse(user)
}

func (s *authService) findOrCreateGoogleUser(ctx context.Context, gu googleUser) (*entity.User, error) {
	user, err := s.repo.FindByProvider(ctx, entity.ProviderGoogle, gu.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link an existing local account with the same email.
	user, err = s.repo.FindByEmail(ctx, gu.Email)
	if err == nil {
		user.AuthProvider = entity.ProviderGoogle
		user.ProviderID = &gu.ID
		if user.AvatarURL == nil && gu.Picture != "" {
			user.AvatarURL = &gu.Picture
		}
		if err := s.repo.Update(ctx, user, nil); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("default role: %w", err)
	}

	username := usernameFromEmail(gu.Email)
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		username = username + "_" + uuid.NewString()[:4]
	}

	user = &entity.User{
		Username:     username,
		Email:        strings.ToLower(gu.Email),
		RoleID:       &role.ID,
		AuthProvider: entity.ProviderGoogle,
		ProviderID:   &gu.ID,
		IsActive:     true,
	}
	if gu.Picture != "" {
		user.AvatarURL = &gu.Picture
	}
	displayName := gu.Name
	if displayName == "" {
		displayName = username
	}

	if err := s.repo.Create(ctx, user, &entity.Profile{DisplayName: displayName}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrAccountExists
		}
		return nil, err
	}
	user.Role = *role

	logger.Log.Info("user registered via google", zap.String("user_id", user.ID.String()))
	return user, nil
}

func usernameFromEmail(email string) string {
	local := strings.Split(email, "@")[0]
	local = strings.ReplaceAll(local, " ", "_")
	if len(local) > 24 {
		local = local[:24]
	}
	if len(local) < 3 {
		local = "user_" + local
	}
	return local
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
