// Package server exposes dashboards over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"PriceLens/internal/config"
	"PriceLens/internal/model"
)

// DashboardService is what the handlers need from the dashboard builder.
type DashboardService interface {
	Build(ctx context.Context, symbol string, start, end time.Time) (*model.Dashboard, error)
	Series(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
}

// RunHistory lists recorded runs.
type RunHistory interface {
	RecentRuns(ctx context.Context, symbol string, limit int) ([]model.RunRecord, error)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// BarResponse is one row of the price table.
type BarResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Handler serves the dashboard API.
type Handler struct {
	svc          DashboardService
	runs         RunHistory
	defaultStart time.Time
	defaultEnd   time.Time
}

// NewHandler creates a Handler. Requests without start/end use the given range.
func NewHandler(svc DashboardService, runs RunHistory, defaultStart, defaultEnd time.Time) *Handler {
	return &Handler{svc: svc, runs: runs, defaultStart: defaultStart, defaultEnd: defaultEnd}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDashboard returns the full dashboard of a symbol.
//
// GET /api/dashboard/:symbol?start=2015-01-01&end=2025-03-01
func (h *Handler) GetDashboard(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}
	d, err := h.svc.Build(c.Request.Context(), c.Param("symbol"), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetBars returns the raw price table of a symbol.
//
// GET /api/bars/:symbol?start=2015-01-01&end=2025-03-01
func (h *Handler) GetBars(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}
	series, err := h.svc.Series(c.Request.Context(), c.Param("symbol"), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]BarResponse, 0, series.Len())
	for _, b := range series.Bars {
		out = append(out, BarResponse{
			Date:   b.Time.UTC().Format(time.DateOnly),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	c.JSON(http.StatusOK, gin.H{"symbol": series.Symbol, "bars": out})
}

// ListRuns returns recent run records, newest first.
//
// GET /api/runs?symbol=GOOG&limit=20
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 500", Kind: "bad_request"})
		return
	}
	runs, err := h.runs.RecentRuns(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if runs == nil {
		runs = []model.RunRecord{}
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, end := h.defaultStart, h.defaultEnd
	var err error
	if v := c.Query("start"); v != "" {
		if start, err = config.ParseDate(v); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start must be YYYY-MM-DD", Kind: "bad_request"})
			return start, end, false
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = config.ParseDate(v); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end must be YYYY-MM-DD", Kind: "bad_request"})
			return start, end, false
		}
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end must be after start", Kind: "bad_request"})
		return start, end, false
	}
	return start, end, true
}

// StatusFor maps a run error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDataUnavailable), errors.Is(err, model.ErrDegenerateScale):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrModelUnavailable), errors.Is(err, model.ErrShapeMismatch):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), ErrorResponse{Error: err.Error(), Kind: model.ErrorKind(err)})
}
