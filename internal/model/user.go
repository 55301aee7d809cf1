package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated account
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Username  string         `json:"username" gorm:"type:varchar(100);unique;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName  string         `json:"full_name" gorm:"type:varchar(255);not null"`
	Role      string         `json:"role" gorm:"type:varchar(50);not null;index"`
	UnitID    uint           `json:"unit_id" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
