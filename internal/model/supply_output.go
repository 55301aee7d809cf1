package model

import "time"

// SupplyOutput status constants
const (
	OutputStatusActive    = "active"
	OutputStatusCancelled = "cancelled"
)

// SupplyOutput records goods leaving the station to a receiving unit.
type SupplyOutput struct {
	ID              uint      `json:"id" gorm:"primarykey"`
	ReceivingUnitID uint      `json:"receiving_unit_id" gorm:"not null;index"`
	ProductID       string    `json:"product_id" gorm:"type:varchar(100);not null;index"`
	Quantity        float64   `json:"quantity" gorm:"not null"`
	OutputDate      time.Time `json:"output_date" gorm:"not null;index"`
	Receiver        string    `json:"receiver" gorm:"type:varchar(255);not null"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Note            string    `json:"note" gorm:"type:text"`
	CreatedByID     uint      `json:"created_by_id"`
	CreatedByName   string    `json:"created_by_name" gorm:"type:varchar(255)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OutputAllocation records exactly which lot a deduction debited and by how
// much, so that updating or deleting an output restores the original lots
// rather than an arbitrary non-expired lot of the product.
type OutputAllocation struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	OutputID  uint      `json:"output_id" gorm:"not null;index"`
	LotID     uint      `json:"lot_id" gorm:"not null;index"`
	Quantity  float64   `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// AllModels lists every persisted model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Unit{},
		&FoodCategory{},
		&FoodProduct{},
		&Supply{},
		&InventoryLot{},
		&SupplyOutput{},
		&OutputAllocation{},
	}
}
