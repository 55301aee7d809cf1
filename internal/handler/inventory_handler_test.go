package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability_SumsNonExpiredLots(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewInventoryHandler(db, newStubCache(), time.Minute)

	now := time.Now()
	seedLot(t, db, "gao", 5, now.Add(24*time.Hour))
	seedLot(t, db, "gao", 10, now.Add(72*time.Hour))
	seedLot(t, db, "gao", 99, now.Add(-time.Hour))
	seedLot(t, db, "thit-ga", 3, now.Add(24*time.Hour))

	c, rec := newRequest(t, e, http.MethodGet, "/api/inventory/availability?product_id=gao", nil, stationMgr)
	require.NoError(t, h.Availability(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "gao", data["product_id"])
	assert.Equal(t, float64(15), data["available"])
}

func TestAvailability_ServedFromCacheUntilInvalidated(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	stub := newStubCache()
	h := handler.NewInventoryHandler(db, stub, time.Minute)
	outputs := handler.NewSupplyOutputHandler(db, stub)

	seedLot(t, db, "gao", 10, time.Now().Add(48*time.Hour))

	c, rec := newRequest(t, e, http.MethodGet, "/api/inventory/availability?product_id=gao", nil, stationMgr)
	require.NoError(t, h.Availability(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Second read hits the cache even after a direct lot change
	seedLot(t, db, "gao", 5, time.Now().Add(48*time.Hour))
	c, rec = newRequest(t, e, http.MethodGet, "/api/inventory/availability?product_id=gao", nil, stationMgr)
	require.NoError(t, h.Availability(c))
	body := decodeBody(t, rec)
	assert.Equal(t, float64(10), body["data"].(map[string]interface{})["available"])

	// An output through the handler invalidates the key
	createOutput(t, e, outputs, db, "gao", 4)

	c, rec = newRequest(t, e, http.MethodGet, "/api/inventory/availability?product_id=gao", nil, stationMgr)
	require.NoError(t, h.Availability(c))
	body = decodeBody(t, rec)
	assert.Equal(t, float64(11), body["data"].(map[string]interface{})["available"])
}

func TestAvailability_RequiresProduct(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewInventoryHandler(db, newStubCache(), time.Minute)

	c, rec := newRequest(t, e, http.MethodGet, "/api/inventory/availability", nil, stationMgr)
	require.NoError(t, h.Availability(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLots_OrderedByExpiry(t *testing.T) {
	db := newTestDB(t)
	e := echo.New()
	h := handler.NewInventoryHandler(db, newStubCache(), time.Minute)

	now := time.Now()
	late := seedLot(t, db, "gao", 10, now.Add(72*time.Hour))
	early := seedLot(t, db, "gao", 5, now.Add(24*time.Hour))
	seedLot(t, db, "thit-ga", 3, now.Add(12*time.Hour))

	c, rec := newRequest(t, e, http.MethodGet, "/api/inventory/lots?product_id=gao", nil, stationMgr)
	require.NoError(t, h.ListLots(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, float64(early.ID), data[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(late.ID), data[1].(map[string]interface{})["id"])
}
