package handler_test

import (
	"net/http"
	"testing"

	"github.com/Phambanam/tram-che-bien-sub000/internal/handler"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewAuthHandler(db)

	c, rec := newRequest(t, e, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username":  "nguyenvana",
		"password":  "secret123",
		"full_name": "Nguyen Van A",
		"role":      model.RoleUnitAssistant,
		"unit_id":   1,
	}, admin)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Stored password is hashed
	var user model.User
	require.NoError(t, db.Where("username = ?", "nguyenvana").First(&user).Error)
	assert.NotEqual(t, "secret123", user.Password)

	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username": "nguyenvana",
		"password": "secret123",
	}, model.Principal{})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nguyenvana", claims.Username)
	assert.Equal(t, model.RoleUnitAssistant, claims.Role)
	assert.Equal(t, uint(1), claims.UnitID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewAuthHandler(db)

	c, rec := newRequest(t, e, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username":  "nguyenvana",
		"password":  "secret123",
		"full_name": "Nguyen Van A",
		"role":      model.RoleUnitAssistant,
		"unit_id":   1,
	}, admin)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username": "nguyenvana",
		"password": "wrong",
	}, model.Principal{})
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username": "nobody",
		"password": "secret123",
	}, model.Principal{})
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_UsernameCheckFailureIsInternal(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewAuthHandler(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	c, rec := newRequest(t, e, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username":  "someone",
		"password":  "secret123",
		"full_name": "Someone",
		"role":      model.RoleStationManager,
	}, admin)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegister_AdminOnly(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewAuthHandler(db)

	body := map[string]interface{}{
		"username":  "intruder",
		"password":  "secret123",
		"full_name": "Intruder",
		"role":      model.RoleAdmin,
	}

	// Neither an anonymous caller nor a non-admin may provision accounts
	for _, principal := range []model.Principal{{}, unitAssistant, brigadeAsst, stationMgr} {
		c, rec := newRequest(t, e, http.MethodPost, "/api/auth/register", body, principal)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %q", principal.Role)
	}

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegister_Validation(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewAuthHandler(db)

	// Unknown role
	c, rec := newRequest(t, e, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username":  "someone",
		"password":  "secret123",
		"full_name": "Someone",
		"role":      "general",
	}, admin)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing required fields
	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username": "someone",
	}, admin)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate username
	valid := map[string]interface{}{
		"username":  "someone",
		"password":  "secret123",
		"full_name": "Someone",
		"role":      model.RoleStationManager,
	}
	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/register", valid, admin)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newRequest(t, e, http.MethodPost, "/api/auth/register", valid, admin)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
