package approval

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wardops/wardops/internal/domain/census"
	"github.com/wardops/wardops/internal/platform/auth"
	"github.com/wardops/wardops/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	decide := api.Group("", auth.RequireRole("supervisor", "admin"))
	decide.POST("/shift-records/:id/approve", h.Approve)
	decide.POST("/shift-records/:id/reject", h.Reject)

	readGroup := api.Group("", auth.RequireRole("nurse", "supervisor", "admin"))
	readGroup.GET("/approval-history", h.History)
}

func (h *Handler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	actor := Actor{ID: auth.UserIDFromContext(ctx), Name: auth.UserNameFromContext(ctx)}
	rec, err := h.svc.Approve(ctx, c.Param("id"), actor)
	if err != nil {
		return census.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Reject(c echo.Context) error {
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	actor := Actor{ID: auth.UserIDFromContext(ctx), Name: auth.UserNameFromContext(ctx)}
	rec, err := h.svc.Reject(ctx, c.Param("id"), actor, req.Reason)
	if err != nil {
		if errors.Is(err, ErrReasonRequired) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrReasonRequired.Error())
		}
		return census.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if formID := c.QueryParam("form_id"); formID != "" {
		items, total, err := h.svc.HistoryByForm(ctx, formID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	wardID := c.QueryParam("ward")
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if wardID == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"form_id, or ward and date (YYYY-MM-DD), query parameters are required")
	}
	items, total, err := h.svc.HistoryByWardDate(ctx, wardID, date, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
