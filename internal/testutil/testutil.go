// Package testutil provides an isolated in-memory database, a fake redis and
// fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"anoa.com/realorai/internal/bootstrap"
	"anoa.com/realorai/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Password is the plain-text password of every fixture user.
const Password = "password123"

// SetupDB opens a fresh in-memory SQLite database with the real schema and
// the default roles. Each call gets its own database.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serialises
	// transactions the way a row lock would.
	sqlDB.SetMaxOpenConns(1)

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SetupRedis starts a miniredis server and returns a client connected to it.
func SetupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

var passwordHash string

func hashedPassword(t *testing.T) string {
	t.Helper()
	if passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		passwordHash = string(hash)
	}
	return passwordHash
}

func createUser(t *testing.T, db *gorm.DB, username, roleName string) *entity.User {
	t.Helper()

	var role entity.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("role %s not seeded: %v", roleName, err)
	}

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashedPassword(t),
		RoleID:       &role.ID,
		AuthProvider: entity.ProviderLocal,
		IsActive:     true,
	}
	if err := db.Omit("Role", "Profile", "Badges").Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	if err := db.Create(&entity.Profile{UserID: user.ID, DisplayName: username}).Error; err != nil {
		t.Fatalf("failed to create profile for %s: %v", username, err)
	}
	user.Role = role
	return user
}

// CreateUser inserts an active regular user.
func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	return createUser(t, db, username, entity.RoleUser)
}

// CreateAdmin inserts an active admin.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *entity.User {
	return createUser(t, db, username, entity.RoleAdmin)
}

// ContentOption tweaks a fixture before it is inserted.
type ContentOption func(*entity.Content)

func WithStatus(status string) ContentOption {
	return func(c *entity.Content) { c.Status = status }
}

func Revealed(at time.Time) ContentOption {
	return func(c *entity.Content) {
		c.IsRevealed = true
		c.RevealedAt = &at
	}
}

func WithCategory(category string) ContentOption {
	return func(c *entity.Content) { c.Category = category }
}

// CreateContent inserts approved, active, unrevealed content owned by uploader.
func CreateContent(t *testing.T, db *gorm.DB, uploader *entity.User, isAI bool, opts ...ContentOption) *entity.Content {
	t.Helper()

	content := &entity.Content{
		UploaderID: uploader.ID,
		Title:      "fixture " + uuid.NewString()[:8],
		MediaURL:   "/uploads/content/fixture.png",
		MediaType:  entity.MediaImage,
		Category:   "art",
		Difficulty: entity.DifficultyMedium,
		IsAI:       isAI,
		Status:     entity.StatusApproved,
		IsActive:   true,
		Tags:       []string{"fixture"},
	}
	for _, opt := range opts {
		opt(content)
	}
	if err := db.Omit("Uploader").Create(content).Error; err != nil {
		t.Fatalf("failed to create content: %v", err)
	}
	return content
}

// Reload fetches a fresh copy of the user.
func Reload(t *testing.T, db *gorm.DB, user *entity.User) *entity.User {
	t.Helper()

	var fresh entity.User
	if err := db.WithContext(context.Background()).Preload("Role").First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &fresh
}
