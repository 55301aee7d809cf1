package model

import "time"

// FoodCategory is seeded reference data. Supplies are validated against these
// tables instead of hardcoded in-memory maps.
type FoodCategory struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Code      string    `json:"code" gorm:"type:varchar(100);unique;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FoodProduct is a seeded catalog entry belonging to a category.
type FoodProduct struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Code         string    `json:"code" gorm:"type:varchar(100);unique;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	CategoryCode string    `json:"category_code" gorm:"type:varchar(100);not null;index"`
	Unit         string    `json:"unit" gorm:"type:varchar(30);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
