package models

import "time"

const (
	RolePatient   = "patient"
	RoleCaregiver = "caregiver"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Phone        *string `gorm:"uniqueIndex" json:"phone"`
	OpenID       *string `gorm:"column:openid;uniqueIndex" json:"-"`
	Nickname     string  `gorm:"not null;default:''" json:"nickname"`
	PasswordHash string  `gorm:"not null;default:''" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func IsValidRole(role string) bool {
	return role == RolePatient || role == RoleCaregiver
}
