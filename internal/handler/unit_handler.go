package handler

import (
	"net/http"

	"github.com/Phambanam/tram-che-bien-sub000/internal/middleware"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitHandler serves unit reference data.
type UnitHandler struct {
	db *gorm.DB
}

func NewUnitHandler(db *gorm.DB) *UnitHandler {
	return &UnitHandler{db: db}
}

// List handles GET /api/units
func (h *UnitHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	var units []model.Unit
	if err := h.db.Order("code ASC").Find(&units).Error; err != nil {
		log.Error("Failed to list units", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve units"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": units})
}

// Create handles POST /api/units
func (h *UnitHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	principal, _ := middleware.GetPrincipal(c)
	if !principal.CanManageUnits() {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only admins may create units"})
	}

	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request data"})
	}
	if req.Code == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "code and name are required"})
	}

	var count int64
	if err := h.db.Model(&model.Unit{}).Where("code = ?", req.Code).Count(&count).Error; err != nil {
		log.Error("Failed to check unit code", zap.String("code", req.Code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create unit"})
	}
	if count > 0 {
		log.Warn("Unit code already exists", zap.String("code", req.Code))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unit code already exists"})
	}

	unit := model.Unit{Code: req.Code, Name: req.Name}
	if err := h.db.Create(&unit).Error; err != nil {
		log.Error("Failed to create unit", zap.String("code", req.Code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create unit"})
	}

	log.Info("Unit created", zap.Uint("unit_id", unit.ID), zap.String("code", unit.Code))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "unit created",
		"data":    echo.Map{"unit_id": unit.ID},
	})
}
