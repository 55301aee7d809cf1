// Package stock implements FIFO-by-expiry inventory allocation for the
// processing station. Deductions walk lots oldest expiry first and are
// recorded per lot, so reversals restore exactly what was taken.
package stock

import (
	"fmt"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/apperror"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"

	"gorm.io/gorm"
)

// Availability returns the aggregate non-expired quantity for a product.
func Availability(db *gorm.DB, productID string, now time.Time) (float64, error) {
	var available float64
	err := db.Model(&model.InventoryLot{}).
		Where("product_id = ? AND non_expired_quantity > 0 AND expiry_date > ?", productID, now).
		Select("COALESCE(SUM(non_expired_quantity), 0)").
		Scan(&available).Error
	if err != nil {
		return 0, err
	}
	return available, nil
}

// Deduct removes quantity from the product's lots, oldest expiry first, and
// records one allocation row per debited lot. It must run inside a
// transaction: every per-lot decrement is guarded by a conditional UPDATE,
// so a concurrent drain aborts the whole deduction instead of over-drawing.
func Deduct(tx *gorm.DB, outputID uint, productID string, quantity float64, now time.Time) error {
	if quantity <= 0 {
		return apperror.NewValidation("quantity must be greater than zero")
	}

	var lots []model.InventoryLot
	err := tx.
		Where("product_id = ? AND non_expired_quantity > 0 AND expiry_date > ?", productID, now).
		Order("expiry_date ASC").
		Find(&lots).Error
	if err != nil {
		return err
	}

	var available float64
	for _, lot := range lots {
		available += lot.NonExpiredQuantity
	}
	if available < quantity {
		return apperror.NewConflict(fmt.Sprintf(
			"insufficient inventory for product %s: available %g, requested %g",
			productID, available, quantity))
	}

	remaining := quantity
	for _, lot := range lots {
		if remaining <= 0 {
			break
		}

		take := lot.NonExpiredQuantity
		if take > remaining {
			take = remaining
		}

		// Conditional decrement: zero rows affected means another request
		// drained this lot after we read it.
		res := tx.Model(&model.InventoryLot{}).
			Where("id = ? AND non_expired_quantity >= ?", lot.ID, take).
			Updates(map[string]interface{}{
				"non_expired_quantity": gorm.Expr("non_expired_quantity - ?", take),
				"quantity":             gorm.Expr("quantity - ?", take),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NewConflict(fmt.Sprintf(
				"inventory for product %s changed concurrently, please retry", productID))
		}

		allocation := model.OutputAllocation{
			OutputID: outputID,
			LotID:    lot.ID,
			Quantity: take,
		}
		if err := tx.Create(&allocation).Error; err != nil {
			return err
		}

		remaining -= take
	}

	if remaining > 0 {
		return apperror.NewConflict(fmt.Sprintf(
			"insufficient inventory for product %s: available %g, requested %g",
			productID, quantity-remaining, quantity))
	}

	return nil
}

// Restore reverses a previous deduction by crediting back the exact lots the
// output debited, then removes the allocation records. Like Deduct it must
// run inside a transaction.
func Restore(tx *gorm.DB, outputID uint) error {
	var allocations []model.OutputAllocation
	if err := tx.Where("output_id = ?", outputID).Find(&allocations).Error; err != nil {
		return err
	}

	for _, a := range allocations {
		res := tx.Model(&model.InventoryLot{}).
			Where("id = ?", a.LotID).
			Updates(map[string]interface{}{
				"non_expired_quantity": gorm.Expr("non_expired_quantity + ?", a.Quantity),
				"quantity":             gorm.Expr("quantity + ?", a.Quantity),
			})
		if res.Error != nil {
			return res.Error
		}
	}

	return tx.Where("output_id = ?", outputID).Delete(&model.OutputAllocation{}).Error
}
