package model

import "time"

// InventoryLot is a batch of a product held in processing-station inventory.
// Invariant: 0 <= non_expired_quantity <= quantity. A lot with
// non_expired_quantity = 0 is excluded from allocation.
type InventoryLot struct {
	ID                 uint      `json:"id" gorm:"primarykey"`
	ProductID          string    `json:"product_id" gorm:"type:varchar(100);not null;index"`
	Quantity           float64   `json:"quantity" gorm:"not null"`
	NonExpiredQuantity float64   `json:"non_expired_quantity" gorm:"not null"`
	ExpiryDate         time.Time `json:"expiry_date" gorm:"not null;index"`
	SupplyID           *uint     `json:"supply_id" gorm:"index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
