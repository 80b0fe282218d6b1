package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	AuthProvider string    `gorm:"size:20;not null;default:'local'" json:"auth_provider"`
	ProviderID   *string   `gorm:"size:100;uniqueIndex" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	TotalVotes            int `gorm:"not null;default:0" json:"total_votes"`
	CorrectVotes          int `gorm:"not null;default:0" json:"correct_votes"`
	Points                int `gorm:"not null;default:0;index" json:"points"`
	ConsecutiveCorrect    int `gorm:"not null;default:0" json:"consecutive_correct"`
	MaxConsecutiveCorrect int `gorm:"not null;default:0" json:"max_consecutive_correct"`
	UploadCount           int `gorm:"not null;default:0" json:"upload_count"`

	AnonymizedAt *time.Time  `json:"-"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Profile      *Profile    `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Badges       []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

func (u *User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}

// Accuracy is the share of scored votes that were correct, as a whole percent.
func (u *User) Accuracy() int {
	return Accuracy(u.CorrectVotes, u.TotalVotes)
}

func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

type Profile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Bio         *string   `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Follow struct {
	FollowerID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"following_id"`
	Follower    User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
