package models

import "time"

// DailyRecord holds one family's symptom entry for one calendar day.
//
// CycleNo and CycleDay are a snapshot taken when the record was last written;
// later edits to the cycle do not rewrite them.
type DailyRecord struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	FamilyID uint      `gorm:"not null;uniqueIndex:uq_family_date" json:"family_id"`
	Date     time.Time `gorm:"not null;uniqueIndex:uq_family_date" json:"date"`
	CycleNo  *int      `gorm:"index" json:"cycle_no"`
	CycleDay *int      `json:"cycle_day"`

	Energy       *int     `json:"energy"`
	Nausea       *int     `json:"nausea"`
	Appetite     *int     `json:"appetite"`
	SleepQuality *int     `json:"sleep_quality"`
	Fever        bool     `gorm:"not null;default:false" json:"fever"`
	TempC        *float64 `json:"temp_c"`
	StoolCount   *int     `json:"stool_count"`
	Diarrhea     *int     `json:"diarrhea"`
	Numbness     bool     `gorm:"not null;default:false" json:"numbness"`
	MouthSore    bool     `gorm:"not null;default:false" json:"mouth_sore"`
	IsToughDay   bool     `gorm:"not null;default:false" json:"is_tough_day"`
	Note         *string  `json:"note"`

	StoolBloodCount    int `gorm:"not null;default:0" json:"stool_blood_count"`
	StoolMucusCount    int `gorm:"not null;default:0" json:"stool_mucus_count"`
	StoolTenesmusCount int `gorm:"not null;default:0" json:"stool_tenesmus_count"`

	RecordedBy *uint     `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type StoolEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FamilyID   uint      `gorm:"not null;index:ix_stool_family_date" json:"family_id"`
	Date       time.Time `gorm:"not null;index:ix_stool_family_date" json:"date"`
	Time       *string   `json:"time"`
	Bristol    *int      `json:"bristol"`
	Blood      bool      `gorm:"not null;default:false" json:"blood"`
	Mucus      bool      `gorm:"not null;default:false" json:"mucus"`
	Tenesmus   bool      `gorm:"not null;default:false" json:"tenesmus"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}

// StoolRollup is the per-day aggregate of a family's stool events.
type StoolRollup struct {
	Count         int `json:"count"`
	BloodCount    int `json:"blood_count"`
	MucusCount    int `json:"mucus_count"`
	TenesmusCount int `json:"tenesmus_count"`
}
