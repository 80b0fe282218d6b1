package bootstrap

import (
	"errors"
	"strings"

	"anoa.com/realorai/internal/config"
	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.All()...)
}

// Seed fills in roles, badges and categories, plus an admin account outside
// production. Every step is idempotent.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := SeedRoles(db); err != nil {
		return err
	}
	if err := SeedBadges(db); err != nil {
		return err
	}
	if err := SeedCategories(db); err != nil {
		return err
	}
	if cfg.IsDevelopment() {
		if err := SeedAdminUser(db, cfg.Seed); err != nil {
			return err
		}
	}
	return nil
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Moderates content and reveals answers"},
		{Name: entity.RoleUser, Description: "Votes, uploads and comments"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB, seed config.SeedConfig) error {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	email := strings.ToLower(seed.AdminEmail)
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Log.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
		AuthProvider: entity.ProviderLocal,
		IsActive:     true,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role", "Profile", "Badges").Create(&adminUser).Error; err != nil {
			return err
		}

		adminProfile := entity.Profile{
			UserID:      adminUser.ID,
			DisplayName: "Administrator",
			Bio:         stringPtr("Keeps the answers honest"),
		}
		if err := tx.Create(&adminProfile).Error; err != nil {
			return err
		}

		logger.Log.Info("admin user seeded", zap.String("email", email))
		return nil
	})
}

// DefaultBadges is the badge set a fresh install starts with.
func DefaultBadges() []entity.Badge {
	badge := func(name, description, category string, metric entity.BadgeMetric, value, reward int) entity.Badge {
		return entity.Badge{
			Name:        name,
			Description: description,
			Category:    category,
			Condition:   entity.BadgeCondition{Metric: metric, Operator: entity.OpGTE, Value: value},
			PointReward: reward,
			IsActive:    true,
		}
	}

	return []entity.Badge{
		badge("First Vote", "Cast your first vote", "voting", entity.MetricTotalVotes, 1, 5),
		badge("Regular", "Have 50 votes scored", "voting", entity.MetricTotalVotes, 50, 25),
		badge("Veteran", "Have 500 votes scored", "voting", entity.MetricTotalVotes, 500, 100),
		badge("Sharp Eye", "Get 10 answers right", "accuracy", entity.MetricCorrectVotes, 10, 20),
		badge("Truth Seeker", "Get 100 answers right", "accuracy", entity.MetricCorrectVotes, 100, 75),
		badge("On a Roll", "Get 5 answers right in a row", "streak", entity.MetricMaxStreak, 5, 25),
		badge("Unstoppable", "Get 20 answers right in a row", "streak", entity.MetricMaxStreak, 20, 100),
		badge("Contributor", "Upload your first challenge", "upload", entity.MetricUploads, 1, 10),
		badge("Curator", "Upload 25 challenges", "upload", entity.MetricUploads, 25, 50),
		badge("Centurion", "Reach 100 points", "points", entity.MetricPoints, 100, 0),
	}
}

func SeedBadges(db *gorm.DB) error {
	for _, badge := range DefaultBadges() {
		var existing entity.Badge
		err := db.Where("name = ?", badge.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}

func SeedCategories(db *gorm.DB) error {
	defaults := []entity.Category{
		{Name: "Portraits", Slug: "portraits", Description: "Faces and people"},
		{Name: "Landscapes", Slug: "landscapes", Description: "Nature, cities and scenery"},
		{Name: "Animals", Slug: "animals", Description: "Pets and wildlife"},
		{Name: "Art", Slug: "art", Description: "Paintings, illustrations and digital art"},
		{Name: "Video", Slug: "video", Description: "Short clips"},
		{Name: "Other", Slug: "other", Description: "Everything else"},
	}

	for i, category := range defaults {
		category.SortOrder = i + 1
		var count int64
		if err := db.Model(&entity.Category{}).
			Where("slug = ?", category.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&category).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
