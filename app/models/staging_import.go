package models

import "time"

// StagingImportRecord is one row of a bulk onboarding file. Rows are
// inserted in bulk and transition independently from pending to
// processed or error; error rows can be reset to pending and re-run.
type StagingImportRecord struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StudentName        string     `gorm:"type:varchar(150);not null" json:"student_name"`
	Class              string     `gorm:"type:varchar(50)" json:"class"`
	RegistrationNumber string     `gorm:"type:varchar(50);not null;index" json:"registration_number"`
	DeclaredDebt       int64      `gorm:"not null;default:0" json:"declared_debt"`
	IsMember           bool       `gorm:"default:false" json:"is_member"`
	IsBoarding         bool       `gorm:"default:false" json:"is_boarding"`
	ParentName         string     `gorm:"type:varchar(150)" json:"parent_name"`
	ParentEmail        string     `gorm:"type:varchar(200);not null;index" json:"parent_email"`
	Processed          bool       `gorm:"default:false;index" json:"processed"`
	ErrorMessage       string     `gorm:"type:text" json:"error_message"`
	StudentUUID        string     `gorm:"type:varchar(36);default:null" json:"student_uuid"`
	ParentUUID         string     `gorm:"type:varchar(36);default:null" json:"parent_uuid"`
	ProcessedAt        *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
