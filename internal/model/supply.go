package model

import "time"

// Supply status constants
const (
	SupplyStatusPending  = "pending"
	SupplyStatusApproved = "approved"
	SupplyStatusRejected = "rejected"
	SupplyStatusReceived = "received"
	SupplyStatusDeleted  = "deleted"
)

// DefaultRejectionNote is stamped on rejected supplies when the approver
// gives no reason.
const DefaultRejectionNote = "Supply request rejected by brigade assistant"

// supplyTransitions is the one-directional lifecycle:
// pending -> {approved, rejected, deleted}, approved -> received.
var supplyTransitions = map[string][]string{
	SupplyStatusPending:  {SupplyStatusApproved, SupplyStatusRejected, SupplyStatusDeleted},
	SupplyStatusApproved: {SupplyStatusReceived},
}

// CanTransitionSupply reports whether a supply may move from one status to
// another. No transition skips a state and none runs backwards.
func CanTransitionSupply(from, to string) bool {
	for _, allowed := range supplyTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Supply represents one intake request from a unit.
// Quantities after supply_quantity are nullable because they are filled in
// at later lifecycle stages: requested_quantity at approval, actual and
// received quantities at receipt.
type Supply struct {
	ID                uint       `json:"id" gorm:"primarykey"`
	UnitID            uint       `json:"unit_id" gorm:"not null;index"`
	Category          string     `json:"category" gorm:"type:varchar(100);not null;index"`
	Product           string     `json:"product" gorm:"type:varchar(100);not null;index"`
	SupplyQuantity    float64    `json:"supply_quantity" gorm:"not null"`
	StationEntryDate  *time.Time `json:"station_entry_date"`
	RequestedQuantity *float64   `json:"requested_quantity"`
	ActualQuantity    *float64   `json:"actual_quantity"`
	ReceivedQuantity  *float64   `json:"received_quantity"`
	UnitPrice         *float64   `json:"unit_price"`
	TotalPrice        *float64   `json:"total_price"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Status            string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Note              string     `json:"note" gorm:"type:text"`
	CreatedByID       uint       `json:"created_by_id"`
	CreatedByName     string     `json:"created_by_name" gorm:"type:varchar(255)"`
	ApprovedByID      *uint      `json:"approved_by_id"`
	ApprovedByName    string     `json:"approved_by_name" gorm:"type:varchar(255)"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
