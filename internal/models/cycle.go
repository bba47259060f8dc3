package models

import (
	"errors"
	"time"
)

const (
	DefaultCycleLength = 21
	MinCycleLength     = 7
	MaxCycleLength     = 42
)

// ErrActiveCycleVersionConflict reports that another writer changed the
// family's active cycle since the caller read its version.
var ErrActiveCycleVersionConflict = errors.New("active cycle version conflict")

// Cycle is one chemotherapy treatment period of a family.
type Cycle struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FamilyID   uint      `gorm:"not null;uniqueIndex:uq_family_cycle" json:"family_id"`
	CycleNo    int       `gorm:"not null;uniqueIndex:uq_family_cycle" json:"cycle_no"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	LengthDays int       `gorm:"not null;default:21" json:"length_days"`
	Regimen    *string   `json:"regimen"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func IsValidCycleLength(days int) bool {
	return days >= MinCycleLength && days <= MaxCycleLength
}
