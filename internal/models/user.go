package models

import (
	"time"
)

type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName       string     `gorm:"size:100" json:"displayName"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	Password          string     `gorm:"not null" json:"-"` // bcrypt hash
	PhotoURL          string     `json:"photoUrl"`
	GoogleID          string     `gorm:"index" json:"-"`
	IsEmailVerified   bool       `gorm:"default:false" json:"isEmailVerified"`
	VerifyCode        string     `gorm:"size:20" json:"-"` // OTP, cleared after use
	VerifyCodeExpires *time.Time `json:"-"`
	ResetToken        string     `gorm:"size:64;index" json:"-"` // sha256 of the emailed token
	ResetTokenExpires *time.Time `json:"-"`
	LastLogin         *time.Time `json:"lastLogin"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// PublicProfile is the user shape returned by auth and profile endpoints.
type PublicProfile struct {
	ID              uint       `json:"id"`
	Username        string     `json:"username"`
	DisplayName     string     `json:"displayName"`
	Email           string     `json:"email"`
	PhotoURL        string     `json:"photoUrl"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLogin       *time.Time `json:"lastLogin"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		Email:           u.Email,
		PhotoURL:        u.PhotoURL,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		LastLogin:       u.LastLogin,
	}
}
