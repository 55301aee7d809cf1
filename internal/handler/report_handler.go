package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reportEpochKey namespaces the supply report cache. Supply writers bump it,
// which orphans every cached range; the orphans fall out by TTL.
const reportEpochKey = "reports:supplies:epoch"

// bumpReportEpoch invalidates all cached supply report ranges. Called by
// supply write paths after a successful commit.
func bumpReportEpoch(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	_ = c.Set(ctx, reportEpochKey, strconv.FormatInt(time.Now().UnixNano(), 10), 0)
}

func reportCacheKey(ctx context.Context, c cache.Cache, from, to string) string {
	epoch := "0"
	if c != nil {
		if v, err := c.Get(ctx, reportEpochKey); err == nil {
			epoch = v
		}
	}
	return "reports:supplies:" + epoch + ":" + from + ":" + to
}

// ReportHandler serves aggregated supply reporting. Results are cached with
// a short TTL; supply writes rotate the cache epoch so reads never serve a
// range computed before the write.
type ReportHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewReportHandler(db *gorm.DB, cache cache.Cache, cacheTTL time.Duration) *ReportHandler {
	return &ReportHandler{db: db, cache: cache, cacheTTL: cacheTTL}
}

// SupplySummaryRow is one aggregation bucket of the supply report
type SupplySummaryRow struct {
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	Count         int64   `json:"count"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalPrice    float64 `json:"total_price"`
}

// SupplySummary handles GET /api/reports/supplies
func (h *ReportHandler) SupplySummary(c echo.Context) error {
	log := logger.FromContext(c)

	from := c.QueryParam("from")
	to := c.QueryParam("to")

	ctx := c.Request().Context()
	key := reportCacheKey(ctx, h.cache, from, to)

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			var rows []SupplySummaryRow
			if json.Unmarshal([]byte(cached), &rows) == nil {
				log.Debug("Supply report served from cache", zap.String("from", from), zap.String("to", to))
				return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rows})
			}
		}
	}

	query := h.db.Model(&model.Supply{}).
		Select("category, status, COUNT(*) AS count, COALESCE(SUM(supply_quantity), 0) AS total_quantity, COALESCE(SUM(total_price), 0) AS total_price").
		Where("status <> ?", model.SupplyStatusDeleted).
		Group("category, status").
		Order("category, status")

	if from != "" {
		if fromTime, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", fromTime)
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid from date, expected YYYY-MM-DD"})
		}
	}
	if to != "" {
		if toTime, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive upper bound
			query = query.Where("created_at < ?", toTime.AddDate(0, 0, 1))
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid to date, expected YYYY-MM-DD"})
		}
	}

	defer prometheus.TrackDBOperation("report")(time.Now())
	var rows []SupplySummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		log.Error("Failed to aggregate supply report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to build report"})
	}

	if h.cache != nil {
		if encoded, err := json.Marshal(rows); err == nil {
			_ = h.cache.Set(ctx, key, string(encoded), h.cacheTTL)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rows})
}
