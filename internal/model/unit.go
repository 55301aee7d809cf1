package model

import (
	"time"

	"gorm.io/gorm"
)

// Unit represents a military unit participating in the supply pipeline
type Unit struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Code      string         `json:"code" gorm:"type:varchar(50);unique;not null"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
