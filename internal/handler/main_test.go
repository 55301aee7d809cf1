package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/jwtutil"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "test"},
	})
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	os.Exit(m.Run())
}

var (
	unitAssistant = model.Principal{UserID: 1, Name: "Nguyen Van A", Role: model.RoleUnitAssistant, UnitID: 1}
	otherUnitAsst = model.Principal{UserID: 2, Name: "Tran Van B", Role: model.RoleUnitAssistant, UnitID: 2}
	brigadeAsst   = model.Principal{UserID: 3, Name: "Le Van C", Role: model.RoleBrigadeAssistant}
	stationMgr    = model.Principal{UserID: 4, Name: "Pham Van D", Role: model.RoleStationManager}
	admin         = model.Principal{UserID: 5, Name: "Admin", Role: model.RoleAdmin}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	// Catalog and unit reference data, normally seeded by migrations
	require.NoError(t, db.Create(&[]model.FoodCategory{
		{Code: "luong-thuc", Name: "Lương thực"},
		{Code: "thuc-pham", Name: "Thực phẩm"},
	}).Error)
	require.NoError(t, db.Create(&[]model.FoodProduct{
		{Code: "gao", Name: "Gạo", CategoryCode: "luong-thuc", Unit: "kg"},
		{Code: "thit-ga", Name: "Thịt gà", CategoryCode: "thuc-pham", Unit: "kg"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Unit{
		{Code: "d1", Name: "Tiểu đoàn 1"},
		{Code: "d2", Name: "Tiểu đoàn 2"},
	}).Error)

	return db
}

// stubCache is an in-memory cache.Cache used instead of Redis in tests.
type stubCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string]string{}}
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (s *stubCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// newRequest builds an echo context carrying the given principal, the way
// the auth middleware would after validating a token.
func newRequest(t *testing.T, e *echo.Echo, method, target string, body interface{}, principal model.Principal) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("principal", principal)
	return c, rec
}

// decodeBody unmarshals a recorded JSON response envelope
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
