package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/apperror"
	"github.com/Phambanam/tram-che-bien-sub000/internal/middleware"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultShelfLife is applied to received goods whose supply carries no
// expiry date.
const defaultShelfLife = 30 * 24 * time.Hour

// SupplyHandler serves the supply intake lifecycle:
// pending -> approved/rejected/deleted, approved -> received.
type SupplyHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewSupplyHandler(db *gorm.DB, cache cache.Cache) *SupplyHandler {
	return &SupplyHandler{db: db, cache: cache}
}

// SupplyRequest is the creation payload from a unit assistant
type SupplyRequest struct {
	Category       string     `json:"category"`
	Product        string     `json:"product"`
	SupplyQuantity float64    `json:"supply_quantity"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	Note           string     `json:"note"`
}

// validateCatalog checks category and product codes against the seeded
// catalog tables.
func (h *SupplyHandler) validateCatalog(category, product string) error {
	var count int64
	if err := h.db.Model(&model.FoodCategory{}).Where("code = ?", category).Count(&count).Error; err != nil {
		return apperror.NewInternal("failed to validate category", err)
	}
	if count == 0 {
		return apperror.NewValidation("unknown category: " + category)
	}

	if err := h.db.Model(&model.FoodProduct{}).Where("code = ? AND category_code = ?", product, category).Count(&count).Error; err != nil {
		return apperror.NewInternal("failed to validate product", err)
	}
	if count == 0 {
		return apperror.NewValidation("unknown product " + product + " in category " + category)
	}

	return nil
}

// Create handles POST /api/supplies
func (h *SupplyHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	principal, ok := middleware.GetPrincipal(c)
	if !ok || !principal.CanCreateSupplies() {
		log.Warn("Supply creation denied", zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only unit assistants may create supplies"})
	}

	var req SupplyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid supply request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	if req.Category == "" || req.Product == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "category and product are required"})
	}
	if req.SupplyQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "supply_quantity must be greater than zero"})
	}

	if err := h.validateCatalog(req.Category, req.Product); err != nil {
		log.Warn("Catalog validation failed",
			zap.String("category", req.Category),
			zap.String("product", req.Product),
			zap.Error(err))
		return respondError(c, log, err)
	}

	supply := model.Supply{
		UnitID:         principal.UnitID,
		Category:       req.Category,
		Product:        req.Product,
		SupplyQuantity: req.SupplyQuantity,
		ExpiryDate:     req.ExpiryDate,
		Status:         model.SupplyStatusPending,
		Note:           req.Note,
		CreatedByID:    principal.UserID,
		CreatedByName:  principal.Name,
	}

	if err := h.db.Create(&supply).Error; err != nil {
		log.Error("Failed to create supply", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create supply"})
	}

	bumpReportEpoch(c.Request().Context(), h.cache)
	prometheus.RecordSupplyOperation("create")
	log.Info("Supply created",
		zap.Uint("supply_id", supply.ID),
		zap.Uint("unit_id", supply.UnitID),
		zap.String("product", supply.Product),
		zap.Float64("supply_quantity", supply.SupplyQuantity))

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "supply created",
		"data":    echo.Map{"supply_id": supply.ID},
	})
}

// List handles GET /api/supplies with optional filtering
func (h *SupplyHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	principal, _ := middleware.GetPrincipal(c)

	query := h.db.Model(&model.Supply{})

	// Unit assistants only see their own unit's supplies
	if principal.Role == model.RoleUnitAssistant {
		query = query.Where("unit_id = ?", principal.UnitID)
	} else if unitID := c.QueryParam("unit_id"); unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o > 0 {
		offset = o
	}

	var supplies []model.Supply
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&supplies).Error; err != nil {
		log.Error("Failed to list supplies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve supplies"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": supplies})
}

// Get handles GET /api/supplies/:id
func (h *SupplyHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		log.Warn("Supply not found", zap.String("supply_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": supply})
}

// SupplyUpdateRequest is the edit payload, valid only while pending
type SupplyUpdateRequest struct {
	Category       *string    `json:"category"`
	Product        *string    `json:"product"`
	SupplyQuantity *float64   `json:"supply_quantity"`
	ActualQuantity *float64   `json:"actual_quantity"`
	UnitPrice      *float64   `json:"unit_price"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	Note           *string    `json:"note"`
}

// Update handles PUT /api/supplies/:id
func (h *SupplyHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanEditSupply(supply.UnitID) {
		log.Warn("Supply update denied", zap.String("supply_id", id), zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only the owning unit assistant may edit this supply"})
	}

	if supply.Status != model.SupplyStatusPending {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only pending supplies can be edited, current status: " + supply.Status})
	}

	var req SupplyUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid supply update data", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	if req.Category != nil {
		supply.Category = *req.Category
	}
	if req.Product != nil {
		supply.Product = *req.Product
	}
	if req.Category != nil || req.Product != nil {
		if err := h.validateCatalog(supply.Category, supply.Product); err != nil {
			return respondError(c, log, err)
		}
	}
	if req.SupplyQuantity != nil {
		if *req.SupplyQuantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "supply_quantity must be greater than zero"})
		}
		supply.SupplyQuantity = *req.SupplyQuantity
	}
	if req.ActualQuantity != nil {
		supply.ActualQuantity = req.ActualQuantity
	}
	if req.UnitPrice != nil {
		supply.UnitPrice = req.UnitPrice
	}
	if req.ExpiryDate != nil {
		supply.ExpiryDate = req.ExpiryDate
	}
	if req.Note != nil {
		supply.Note = *req.Note
	}

	// Recompute total when both actual quantity and unit price are known
	if supply.ActualQuantity != nil && supply.UnitPrice != nil {
		total := *supply.ActualQuantity * *supply.UnitPrice
		supply.TotalPrice = &total
	}

	if err := h.db.Save(&supply).Error; err != nil {
		log.Error("Failed to update supply", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to update supply"})
	}

	bumpReportEpoch(c.Request().Context(), h.cache)
	prometheus.RecordSupplyOperation("update")
	log.Info("Supply updated", zap.Uint("supply_id", supply.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": supply})
}

// Delete handles DELETE /api/supplies/:id as a soft status flip
func (h *SupplyHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanEditSupply(supply.UnitID) {
		log.Warn("Supply delete denied", zap.String("supply_id", id), zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only the owning unit assistant may delete this supply"})
	}

	if !model.CanTransitionSupply(supply.Status, model.SupplyStatusDeleted) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only pending supplies can be deleted, current status: " + supply.Status})
	}

	if err := h.db.Model(&supply).Update("status", model.SupplyStatusDeleted).Error; err != nil {
		log.Error("Failed to delete supply", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to delete supply"})
	}

	bumpReportEpoch(c.Request().Context(), h.cache)
	prometheus.RecordSupplyOperation("delete")
	log.Info("Supply deleted", zap.Uint("supply_id", supply.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "supply deleted"})
}

// ApproveRequest is the brigade assistant's approval payload
type ApproveRequest struct {
	StationEntryDate  *time.Time `json:"station_entry_date"`
	RequestedQuantity *float64   `json:"requested_quantity"`
	UnitPrice         *float64   `json:"unit_price"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Note              string     `json:"note"`
}

// Approve handles PATCH /api/supplies/:id/approve
func (h *SupplyHandler) Approve(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanApproveSupplies() {
		log.Warn("Supply approval denied", zap.String("supply_id", id), zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only brigade assistants may approve supplies"})
	}

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	if !model.CanTransitionSupply(supply.Status, model.SupplyStatusApproved) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only pending supplies can be approved, current status: " + supply.Status})
	}

	var req ApproveRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid approval data", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	if req.StationEntryDate == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "station_entry_date is required"})
	}
	if req.RequestedQuantity == nil || *req.RequestedQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "requested_quantity must be a number greater than zero"})
	}
	if req.UnitPrice == nil || *req.UnitPrice <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unit_price must be a number greater than zero"})
	}

	totalPrice := *req.RequestedQuantity * *req.UnitPrice

	// Single-statement update keeps the transition all-or-nothing.
	// actual_quantity is reset; it is filled in at receipt.
	updates := map[string]interface{}{
		"status":             model.SupplyStatusApproved,
		"station_entry_date": req.StationEntryDate,
		"requested_quantity": req.RequestedQuantity,
		"unit_price":         req.UnitPrice,
		"total_price":        totalPrice,
		"actual_quantity":    nil,
		"approved_by_id":     principal.UserID,
		"approved_by_name":   principal.Name,
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = req.ExpiryDate
	}
	if req.Note != "" {
		updates["note"] = req.Note
	}

	if err := h.db.Model(&supply).Updates(updates).Error; err != nil {
		log.Error("Failed to approve supply", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to approve supply"})
	}

	bumpReportEpoch(c.Request().Context(), h.cache)
	prometheus.RecordSupplyOperation("approve")
	log.Info("Supply approved",
		zap.Uint("supply_id", supply.ID),
		zap.Float64("requested_quantity", *req.RequestedQuantity),
		zap.Float64("unit_price", *req.UnitPrice),
		zap.Float64("total_price", totalPrice),
		zap.Uint("approved_by", principal.UserID))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "supply approved"})
}

// Reject handles PATCH /api/supplies/:id/reject
func (h *SupplyHandler) Reject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanApproveSupplies() {
		log.Warn("Supply rejection denied", zap.String("supply_id", id), zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only brigade assistants may reject supplies"})
	}

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	if !model.CanTransitionSupply(supply.Status, model.SupplyStatusRejected) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only pending supplies can be rejected, current status: " + supply.Status})
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}
	if req.Note == "" {
		req.Note = model.DefaultRejectionNote
	}

	updates := map[string]interface{}{
		"status":           model.SupplyStatusRejected,
		"note":             req.Note,
		"approved_by_id":   principal.UserID,
		"approved_by_name": principal.Name,
	}

	if err := h.db.Model(&supply).Updates(updates).Error; err != nil {
		log.Error("Failed to reject supply", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to reject supply"})
	}

	bumpReportEpoch(c.Request().Context(), h.cache)
	prometheus.RecordSupplyOperation("reject")
	log.Info("Supply rejected", zap.Uint("supply_id", supply.ID), zap.Uint("rejected_by", principal.UserID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "supply rejected"})
}

// ReceiveRequest is the station manager's receipt payload
type ReceiveRequest struct {
	ActualQuantity   *float64 `json:"actual_quantity"`
	ReceivedQuantity *float64 `json:"received_quantity"`
}

// Receive handles PATCH /api/supplies/:id/receive. Receipt moves the supply
// to its terminal state and books an inventory lot for the received amount.
func (h *SupplyHandler) Receive(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanReceiveSupplies() {
		log.Warn("Supply receipt denied", zap.String("supply_id", id), zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only station managers may receive supplies"})
	}

	var supply model.Supply
	if err := h.db.First(&supply, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "supply not found"})
	}

	if !model.CanTransitionSupply(supply.Status, model.SupplyStatusReceived) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only approved supplies can be received, current status: " + supply.Status})
	}

	var req ReceiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}

	if req.ActualQuantity == nil || *req.ActualQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "actual_quantity must be a number greater than zero"})
	}
	if req.ReceivedQuantity == nil || *req.ReceivedQuantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "received_quantity must be a number greater than zero"})
	}

	updates := map[string]interface{}{
		"status":            model.SupplyStatusReceived,
		"actual_quantity":   req.ActualQuantity,
		"received_quantity": req.ReceivedQuantity,
	}
	if supply.UnitPrice != nil {
		updates["total_price"] = *req.ActualQuantity * *supply.UnitPrice
	}

	expiry := time.Now().Add(defaultShelfLife)
	if supply.ExpiryDate != nil {
		expiry = *supply.ExpiryDate
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&supply).Updates(updates).Error; err != nil {
			return err
		}

		lot := model.InventoryLot{
			ProductID:          supply.Product,
			Quantity:           *req.ReceivedQuantity,
			NonExpiredQuantity: *req.ReceivedQuantity,
			ExpiryDate:         expiry,
			SupplyID:           &supply.ID,
		}
		return tx.Create(&lot).Error
	})
	if err != nil {
		log.Error("Failed to receive supply", zap.String("supply_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to receive supply"})
	}

	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), availabilityCacheKey(supply.Product))
	}
	bumpReportEpoch(c.Request().Context(), h.cache)

	prometheus.RecordSupplyOperation("receive")
	log.Info("Supply received",
		zap.Uint("supply_id", supply.ID),
		zap.Float64("actual_quantity", *req.ActualQuantity),
		zap.Float64("received_quantity", *req.ReceivedQuantity),
		zap.String("product", supply.Product))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "supply received"})
}
