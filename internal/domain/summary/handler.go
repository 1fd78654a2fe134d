package summary

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wardops/wardops/internal/platform/auth"
)

type Handler struct {
	agg *Aggregator
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("nurse", "supervisor", "admin"))
	readGroup.GET("/daily-summaries", h.GetSummary)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/daily-summaries/recompute", h.Recompute)
}

func (h *Handler) GetSummary(c echo.Context) error {
	wardID, date, err := wardDateParams(c)
	if err != nil {
		return err
	}
	s, err := h.agg.summaries.Get(c.Request().Context(), wardID, date)
	if err != nil {
		return summaryError(err)
	}
	return c.JSON(http.StatusOK, s)
}

// Recompute forces an aggregation pass, repairing a summary whose best-effort
// update failed at approval time.
func (h *Handler) Recompute(c echo.Context) error {
	wardID, date, err := wardDateParams(c)
	if err != nil {
		return err
	}
	s, err := h.agg.EnsureSummary(c.Request().Context(), wardID, date)
	if err != nil {
		return summaryError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func wardDateParams(c echo.Context) (string, time.Time, error) {
	wardID := c.QueryParam("ward")
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if wardID == "" || err != nil {
		return "", time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			"ward and date (YYYY-MM-DD) query parameters are required")
	}
	return wardID, date, nil
}

func summaryError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "daily summary not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
