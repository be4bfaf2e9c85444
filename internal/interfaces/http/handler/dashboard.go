package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	statsapp "github.com/storefront/backend/internal/application/stats"
	"github.com/storefront/backend/internal/domain/stats"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

const dateParamLayout = "2006-01-02"

// DashboardHandler serves the statistics reports. Reports are read
// through the report cache: a hit is returned as-is with meta.cached
// set, a miss computes the report and stores it for the configured TTL.
type DashboardHandler struct {
	BaseHandler
	statsService  *statsapp.StatisticsService
	reportCache   cache.ReportCache
	cacheTTL      time.Duration
	defaultPeriod stats.Period
	location      *time.Location
}

// NewDashboardHandler creates a new DashboardHandler. Custom date
// ranges are interpreted in location; nil means UTC.
func NewDashboardHandler(
	statsService *statsapp.StatisticsService,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
	defaultPeriod stats.Period,
	location *time.Location,
) *DashboardHandler {
	if location == nil {
		location = time.UTC
	}
	return &DashboardHandler{
		statsService:  statsService,
		reportCache:   reportCache,
		cacheTTL:      cacheTTL,
		defaultPeriod: defaultPeriod,
		location:      location,
	}
}

// period canonicalizes the period query param so cache keys stay bounded
func (h *DashboardHandler) period(c *gin.Context) string {
	return string(stats.ParsePeriod(c.Query("period"), h.defaultPeriod))
}

func boolQuery(c *gin.Context, name string, fallback bool) bool {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// serveReport implements the read-through path shared by every report
func (h *DashboardHandler) serveReport(c *gin.Context, report string, keyParts []string, fetch func() (any, error)) {
	ctx := c.Request.Context()
	key := cache.Key(report, strings.Join(keyParts, "|"))

	payload, hit, err := h.reportCache.Get(ctx, key)
	if err != nil {
		logger.L(ctx).Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		c.JSON(http.StatusOK, dto.NewReportResponse(json.RawMessage(payload), true, time.Now()))
		return
	}

	data, err := fetch()
	if err != nil {
		logger.L(ctx).Error("Report aggregation failed", zap.String("report", report), zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to generate report")
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to generate report")
		return
	}
	if err := h.reportCache.Set(ctx, key, raw, h.cacheTTL); err != nil {
		logger.L(ctx).Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.NewReportResponse(json.RawMessage(raw), false, time.Now()))
}

// Overview serves the headline dashboard report
func (h *DashboardHandler) Overview(c *gin.Context) {
	period := h.period(c)
	compare := boolQuery(c, "compare", true)

	h.serveReport(c, "overview", []string{period, strconv.FormatBool(compare)}, func() (any, error) {
		return h.statsService.Overview(c.Request.Context(), period, compare)
	})
}

// Revenue serves the revenue report. A start_date/end_date pair takes
// precedence over the period token; group_by picks the bucket width.
func (h *DashboardHandler) Revenue(c *gin.Context) {
	includeForecast := boolQuery(c, "include_forecast", false)

	startRaw, endRaw := c.Query("start_date"), c.Query("end_date")
	if startRaw != "" && endRaw != "" {
		start, err := time.ParseInLocation(dateParamLayout, startRaw, h.location)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		end, err := time.ParseInLocation(dateParamLayout, endRaw, h.location)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		if end.Before(start) {
			h.BadRequest(c, "end_date must not precede start_date")
			return
		}

		granularity := stats.GranularityDay
		if c.Query("group_by") == "month" {
			granularity = stats.GranularityMonth
		}
		dateRange := stats.DateRange{
			Start: start,
			End:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
		}

		keyParts := []string{startRaw, endRaw, string(granularity), strconv.FormatBool(includeForecast)}
		h.serveReport(c, "revenue", keyParts, func() (any, error) {
			return h.statsService.RevenueBetween(c.Request.Context(), dateRange, granularity, includeForecast)
		})
		return
	}

	period := h.period(c)
	h.serveReport(c, "revenue", []string{period, strconv.FormatBool(includeForecast)}, func() (any, error) {
		return h.statsService.Revenue(c.Request.Context(), period, includeForecast)
	})
}

// Orders serves the order report
func (h *DashboardHandler) Orders(c *gin.Context) {
	period := h.period(c)
	statusFilter := c.Query("status")
	includeDetails := boolQuery(c, "include_details", false)

	keyParts := []string{period, statusFilter, strconv.FormatBool(includeDetails)}
	h.serveReport(c, "orders", keyParts, func() (any, error) {
		return h.statsService.Orders(c.Request.Context(), period, statusFilter, includeDetails)
	})
}

// Products serves the product report
func (h *DashboardHandler) Products(c *gin.Context) {
	period := h.period(c)

	h.serveReport(c, "products", []string{period}, func() (any, error) {
		return h.statsService.Products(c.Request.Context(), period)
	})
}

// Customers serves the customer report
func (h *DashboardHandler) Customers(c *gin.Context) {
	period := h.period(c)

	h.serveReport(c, "customers", []string{period}, func() (any, error) {
		return h.statsService.Customers(c.Request.Context(), period)
	})
}

// Growth serves the growth report
func (h *DashboardHandler) Growth(c *gin.Context) {
	period := h.period(c)

	h.serveReport(c, "growth", []string{period}, func() (any, error) {
		return h.statsService.Growth(c.Request.Context(), period)
	})
}

// CategoryPerformance serves the category performance report
func (h *DashboardHandler) CategoryPerformance(c *gin.Context) {
	period := h.period(c)
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = v
	}

	keyParts := []string{period, strconv.Itoa(limit)}
	h.serveReport(c, "category-performance", keyParts, func() (any, error) {
		return h.statsService.CategoryPerformance(c.Request.Context(), period, limit)
	})
}

// ClearCache drops every cached report. Clearing an empty cache succeeds.
func (h *DashboardHandler) ClearCache(c *gin.Context) {
	if err := h.reportCache.Clear(c.Request.Context()); err != nil {
		logger.L(c.Request.Context()).Error("Report cache clear failed", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to clear report cache")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Report cache cleared",
	})
}
