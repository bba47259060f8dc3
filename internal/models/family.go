package models

import "time"

const DefaultFamilyName = "我的家庭"

type Family struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	InviteCode string `gorm:"uniqueIndex;not null" json:"invite_code"`
	CreatedBy  uint   `gorm:"not null" json:"created_by"`
	// ActiveCycleVersion is bumped every time the active cycle changes.
	ActiveCycleVersion int `gorm:"not null;default:0" json:"-"`
	CreatedAt          time.Time
}

type FamilyMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:uq_user_family" json:"user_id"`
	FamilyID uint      `gorm:"not null;uniqueIndex:uq_user_family;index" json:"family_id"`
	Role     string    `gorm:"not null" json:"role"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

type FamilyMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FamilyID  uint      `gorm:"not null;index" json:"family_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"not null" json:"content"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// FamilyMemberSummary is a member joined with the user's nickname.
type FamilyMemberSummary struct {
	UserID   uint      `gorm:"column:user_id" json:"user_id"`
	Nickname string    `gorm:"column:nickname" json:"nickname"`
	Role     string    `gorm:"column:role" json:"role"`
	JoinedAt time.Time `gorm:"column:joined_at" json:"joined_at"`
}

// FamilyMessageSummary is an active message joined with its sender's nickname.
type FamilyMessageSummary struct {
	ID             uint      `gorm:"column:id" json:"id"`
	SenderID       uint      `gorm:"column:sender_id" json:"sender_id"`
	SenderNickname string    `gorm:"column:sender_nickname" json:"sender_nickname"`
	Content        string    `gorm:"column:content" json:"content"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}
