package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Student struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UUID               string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name               string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Class              string         `gorm:"type:varchar(50)" json:"class"`
	RegistrationNumber string         `gorm:"type:varchar(50);uniqueIndex" json:"registration_number" validate:"required"`
	ParentID           *uint          `gorm:"index" json:"parent_id,omitempty"`
	IsBoarding         bool           `gorm:"default:false" json:"is_boarding"`
	IsMember           bool           `gorm:"default:false" json:"is_member"`
	DeclaredDebt       int64          `gorm:"not null;default:0" json:"declared_debt"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Parent *User   `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Wallet *Wallet `gorm:"foreignKey:StudentID" json:"wallet,omitempty"`
}

func (s *Student) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
