package handler

import (
	"net/http"

	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogHandler serves the seeded food catalog reference data.
type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.FoodCategory
	if err := h.db.Order("code ASC").Find(&categories).Error; err != nil {
		log.Error("Failed to list categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": categories})
}

// ListCategoryProducts handles GET /api/categories/:code/products
func (h *CatalogHandler) ListCategoryProducts(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")

	var count int64
	h.db.Model(&model.FoodCategory{}).Where("code = ?", code).Count(&count)
	if count == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "category not found: " + code})
	}

	var products []model.FoodProduct
	if err := h.db.Where("category_code = ?", code).Order("code ASC").Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.String("category", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": products})
}
