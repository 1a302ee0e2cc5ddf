package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront account
type User struct {
	ID                   string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username             string     `gorm:"not null;uniqueIndex" json:"username"`
	Email                string     `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash         string     `gorm:"not null" json:"-"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	IsAdmin              bool       `gorm:"not null" json:"isAdmin"`
	RefreshToken         *string    `json:"-"`
	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the public projection returned by auth endpoints.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=32"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	FirstName       string `json:"firstName" validate:"max=64"`
	LastName        string `json:"lastName" validate:"max=64"`
}

type AdminSignupRequest struct {
	SignupRequest
	AdminSecret string `json:"adminSecret"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup, login and token refresh.
type AuthResponse struct {
	Message      string       `json:"message,omitempty"`
	User         *UserSummary `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}
