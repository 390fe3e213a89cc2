package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleChairman      Role = "Chairman"
	RoleSecretary     Role = "Secretary"
	RoleOfficeManager Role = "Office Manager"
	RoleMember        Role = "Member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleChairman, RoleSecretary, RoleOfficeManager, RoleMember:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve distribution requests.
func (r Role) CanApprove() bool {
	return r == RoleChairman || r == RoleSecretary
}

// CanDeliver reports whether the role may mark distributions as delivered.
func (r Role) CanDeliver() bool {
	return r == RoleChairman || r == RoleSecretary || r == RoleOfficeManager
}

type AuthUser struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         Role   `gorm:"size:20;not null;default:Member;index" json:"role"`

	FullName      string `gorm:"size:100;not null" json:"full_name"`
	ContactNumber string `gorm:"size:15" json:"contact_number"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	PasswordResetToken   *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	LoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockUntil     *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Locked reports whether the account is still inside a lockout window.
func (u *AuthUser) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
