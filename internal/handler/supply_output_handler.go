package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/middleware"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/internal/stock"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplyOutputHandler serves output records and their inventory side effects.
type SupplyOutputHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewSupplyOutputHandler(db *gorm.DB, cache cache.Cache) *SupplyOutputHandler {
	return &SupplyOutputHandler{db: db, cache: cache}
}

// OutputRequest is the creation payload for a supply output
type OutputRequest struct {
	ReceivingUnitID uint       `json:"receiving_unit_id"`
	ProductID       string     `json:"product_id"`
	Quantity        float64    `json:"quantity"`
	OutputDate      *time.Time `json:"output_date"`
	Receiver        string     `json:"receiver"`
	Note            string     `json:"note"`
}

func (h *SupplyOutputHandler) invalidateAvailability(c echo.Context, productIDs ...string) {
	if h.cache == nil {
		return
	}
	for _, id := range productIDs {
		_ = h.cache.Delete(c.Request().Context(), availabilityCacheKey(id))
	}
}

// Create handles POST /api/supply-outputs. The availability check and the
// FIFO deduction run in one transaction so concurrent outputs cannot
// over-draw a lot.
func (h *SupplyOutputHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanManageOutputs() {
		log.Warn("Output creation denied", zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only station managers may create supply outputs"})
	}

	var req OutputRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid output request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	if req.ProductID == "" || req.Receiver == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "product_id and receiver are required"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "quantity must be greater than zero"})
	}

	var unit model.Unit
	if err := h.db.First(&unit, req.ReceivingUnitID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "receiving unit not found"})
	}

	var productCount int64
	if err := h.db.Model(&model.FoodProduct{}).Where("code = ?", req.ProductID).Count(&productCount).Error; err != nil {
		log.Error("Failed to check product", zap.String("product_id", req.ProductID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create supply output"})
	}
	if productCount == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found: " + req.ProductID})
	}

	outputDate := time.Now()
	if req.OutputDate != nil {
		outputDate = *req.OutputDate
	}

	output := model.SupplyOutput{
		ReceivingUnitID: req.ReceivingUnitID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		OutputDate:      outputDate,
		Receiver:        req.Receiver,
		Status:          model.OutputStatusActive,
		Note:            req.Note,
		CreatedByID:     principal.UserID,
		CreatedByName:   principal.Name,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&output).Error; err != nil {
			return err
		}
		return stock.Deduct(tx, output.ID, output.ProductID, output.Quantity, time.Now())
	})
	if err != nil {
		log.Warn("Output creation failed",
			zap.String("product_id", req.ProductID),
			zap.Float64("quantity", req.Quantity),
			zap.Error(err))
		return respondError(c, log, err)
	}

	h.invalidateAvailability(c, output.ProductID)
	prometheus.RecordOutputOperation("create")
	log.Info("Supply output created",
		zap.Uint("output_id", output.ID),
		zap.String("product_id", output.ProductID),
		zap.Float64("quantity", output.Quantity),
		zap.Uint("receiving_unit_id", output.ReceivingUnitID))

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "supply output created",
		"data":    echo.Map{"supply_output_id": output.ID},
	})
}

// List handles GET /api/supply-outputs with optional filtering
func (h *SupplyOutputHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	query := h.db.Model(&model.SupplyOutput{})

	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if unitID := c.QueryParam("receiving_unit_id"); unitID != "" {
		query = query.Where("receiving_unit_id = ?", unitID)
	}

	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o > 0 {
		offset = o
	}

	var outputs []model.SupplyOutput
	if err := query.Order("output_date DESC").Limit(limit).Offset(offset).Find(&outputs).Error; err != nil {
		log.Error("Failed to list supply outputs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve supply outputs"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": outputs})
}

// Get handles GET /api/supply-outputs/:id
func (h *SupplyOutputHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var output model.SupplyOutput
	if err := h.db.First(&output, id).Error; err != nil {
		log.Warn("Supply output not found", zap.String("output_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply output not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": output})
}

// OutputUpdateRequest is the update payload; product or quantity changes
// trigger a reversal and a fresh deduction.
type OutputUpdateRequest struct {
	ReceivingUnitID *uint      `json:"receiving_unit_id"`
	ProductID       *string    `json:"product_id"`
	Quantity        *float64   `json:"quantity"`
	OutputDate      *time.Time `json:"output_date"`
	Receiver        *string    `json:"receiver"`
	Note            *string    `json:"note"`
}

// Update handles PATCH /api/supply-outputs/:id
func (h *SupplyOutputHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanManageOutputs() {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only station managers may update supply outputs"})
	}

	var output model.SupplyOutput
	if err := h.db.First(&output, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply output not found"})
	}

	var req OutputUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid output update data", zap.String("output_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	oldProduct := output.ProductID

	newProduct := output.ProductID
	if req.ProductID != nil {
		newProduct = *req.ProductID
	}
	newQuantity := output.Quantity
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "quantity must be greater than zero"})
		}
		newQuantity = *req.Quantity
	}

	inventoryChanged := newProduct != output.ProductID || newQuantity != output.Quantity

	if inventoryChanged && newProduct != output.ProductID {
		var productCount int64
		if err := h.db.Model(&model.FoodProduct{}).Where("code = ?", newProduct).Count(&productCount).Error; err != nil {
			log.Error("Failed to check product", zap.String("product_id", newProduct), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to update supply output"})
		}
		if productCount == 0 {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found: " + newProduct})
		}
	}

	if req.ReceivingUnitID != nil {
		var unit model.Unit
		if err := h.db.First(&unit, *req.ReceivingUnitID).Error; err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "receiving unit not found"})
		}
		output.ReceivingUnitID = *req.ReceivingUnitID
	}
	if req.OutputDate != nil {
		output.OutputDate = *req.OutputDate
	}
	if req.Receiver != nil {
		output.Receiver = *req.Receiver
	}
	if req.Note != nil {
		output.Note = *req.Note
	}
	output.ProductID = newProduct
	output.Quantity = newQuantity

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if inventoryChanged {
			// Put the old deduction back onto its exact lots before
			// re-validating availability for the new values.
			if err := stock.Restore(tx, output.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&output).Error; err != nil {
			return err
		}
		if inventoryChanged {
			return stock.Deduct(tx, output.ID, output.ProductID, output.Quantity, time.Now())
		}
		return nil
	})
	if err != nil {
		log.Warn("Output update failed", zap.String("output_id", id), zap.Error(err))
		return respondError(c, log, err)
	}

	if inventoryChanged {
		h.invalidateAvailability(c, oldProduct, output.ProductID)
	}
	prometheus.RecordOutputOperation("update")
	log.Info("Supply output updated",
		zap.Uint("output_id", output.ID),
		zap.String("product_id", output.ProductID),
		zap.Float64("quantity", output.Quantity),
		zap.Bool("inventory_changed", inventoryChanged))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": output})
}

// Delete handles DELETE /api/supply-outputs/:id, reversing the deduction
func (h *SupplyOutputHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanManageOutputs() {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only station managers may delete supply outputs"})
	}

	var output model.SupplyOutput
	if err := h.db.First(&output, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply output not found"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := stock.Restore(tx, output.ID); err != nil {
			return err
		}
		return tx.Delete(&output).Error
	})
	if err != nil {
		log.Error("Failed to delete supply output", zap.String("output_id", id), zap.Error(err))
		return respondError(c, log, err)
	}

	h.invalidateAvailability(c, output.ProductID)
	prometheus.RecordOutputOperation("delete")
	log.Info("Supply output deleted",
		zap.Uint("output_id", output.ID),
		zap.String("product_id", output.ProductID),
		zap.Float64("quantity", output.Quantity))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "supply output deleted"})
}
