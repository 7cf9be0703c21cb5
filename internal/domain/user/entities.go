package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is provisioned on first sign-in and never rewritten afterwards:
// IsAdmin is decided once by comparing the sign-in email with the configured
// administrator address, CreatedAt is set once.
type User struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UID       string    `gorm:"size:64;uniqueIndex:ux_users_uid" json:"uid"`
	Email     string    `gorm:"size:255;index:idx_users_email" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	PhotoURL  string    `gorm:"type:text" json:"photo_url"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string { return "users" }
