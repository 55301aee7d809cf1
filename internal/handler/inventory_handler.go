package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/internal/stock"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func availabilityCacheKey(productID string) string {
	return "inventory:availability:" + productID
}

// InventoryHandler serves processing-station lot and availability reads.
type InventoryHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewInventoryHandler(db *gorm.DB, cache cache.Cache, cacheTTL time.Duration) *InventoryHandler {
	return &InventoryHandler{db: db, cache: cache, cacheTTL: cacheTTL}
}

// ListLots handles GET /api/inventory/lots
func (h *InventoryHandler) ListLots(c echo.Context) error {
	log := logger.FromContext(c)

	query := h.db.Model(&model.InventoryLot{})
	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}

	var lots []model.InventoryLot
	if err := query.Order("expiry_date ASC").Find(&lots).Error; err != nil {
		log.Error("Failed to list inventory lots", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve inventory lots"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": lots})
}

type availabilityPayload struct {
	ProductID string  `json:"product_id"`
	Available float64 `json:"available"`
}

// Availability handles GET /api/inventory/availability. Results are cached
// per product; writes that touch inventory invalidate the key.
func (h *InventoryHandler) Availability(c echo.Context) error {
	log := logger.FromContext(c)

	productID := c.QueryParam("product_id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "product_id is required"})
	}

	ctx := c.Request().Context()
	key := availabilityCacheKey(productID)

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			var payload availabilityPayload
			if json.Unmarshal([]byte(cached), &payload) == nil {
				log.Debug("Availability served from cache", zap.String("product_id", productID))
				return c.JSON(http.StatusOK, echo.Map{"success": true, "data": payload})
			}
		}
	}

	defer prometheus.TrackDBOperation("availability")(time.Now())
	available, err := stock.Availability(h.db, productID, time.Now())
	if err != nil {
		log.Error("Failed to compute availability", zap.String("product_id", productID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to compute availability"})
	}

	prometheus.UpdateStockAvailability(productID, available)
	payload := availabilityPayload{ProductID: productID, Available: available}

	if h.cache != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			_ = h.cache.Set(ctx, key, string(encoded), h.cacheTTL)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": payload})
}
