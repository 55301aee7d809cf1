package handler

import (
	"net/http"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/middleware"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/jwtutil"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves login and registration
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

var validRoles = map[string]bool{
	model.RoleUnitAssistant:    true,
	model.RoleBrigadeAssistant: true,
	model.RoleStationManager:   true,
	model.RoleCommander:        true,
	model.RoleAdmin:            true,
}

// Login authenticates a user and issues a JWT token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.FullName, user.Role, user.UnitID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "token error"})
	}

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.Uint("unit_id", user.UnitID))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"token": token,
			"user": echo.Map{
				"id":        user.ID,
				"username":  user.Username,
				"full_name": user.FullName,
				"role":      user.Role,
				"unit_id":   user.UnitID,
			},
		},
	})
}

// Register creates a new user account. Only admins may provision accounts;
// the roles carry lifecycle privileges, so there is no self-registration.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)

	principal, ok := middleware.GetPrincipal(c)
	if !ok || !principal.CanManageUsers() {
		log.Warn("User registration denied", zap.String("role", principal.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "only admins may register users"})
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		UnitID   uint   `json:"unit_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if req.Username == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "username, password and full_name are required"})
	}

	if !validRoles[req.Role] {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid role: " + req.Role})
	}

	var count int64
	if err := h.db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		log.Error("Failed to check username", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create user"})
	}
	if count > 0 {
		log.Warn("Username already taken", zap.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}

	user := model.User{
		Username: req.Username,
		Password: string(hash),
		FullName: req.FullName,
		Role:     req.Role,
		UnitID:   req.UnitID,
	}

	if err := h.db.Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to create user"})
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "user created",
		"data":    echo.Map{"user_id": user.ID},
	})
}
