package census

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wardops/wardops/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints: nurse, supervisor, admin.
	readGroup := api.Group("", auth.RequireRole("nurse", "supervisor", "admin"))
	readGroup.GET("/shift-records", h.LoadSlot)
	readGroup.GET("/shift-records/opening", h.Opening)
	readGroup.GET("/shift-records/:id", h.GetRecord)

	// Write endpoints: nurse, admin.
	writeGroup := api.Group("", auth.RequireRole("nurse", "admin"))
	writeGroup.POST("/shift-records/draft", h.SaveDraft)
	writeGroup.POST("/shift-records/finalize", h.Finalize)
	writeGroup.POST("/shift-records/:id/resubmit", h.Resubmit)
}

func (h *Handler) GetRecord(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) LoadSlot(c echo.Context) error {
	wardID, shift, date, err := slotParams(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Load(c.Request().Context(), wardID, shift, date)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Opening(c echo.Context) error {
	wardID, shift, date, err := slotParams(c)
	if err != nil {
		return err
	}
	opening, err := h.svc.Opening(c.Request().Context(), wardID, shift, date)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, opening)
}

func (h *Handler) SaveDraft(c echo.Context) error {
	var rec ShiftCensusRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if rec.CreatedBy == "" {
		rec.CreatedBy = actor
	}
	if actor != "" {
		rec.UpdatedBy = &actor
	}
	overwrite := c.QueryParam("overwrite") == "true"

	saved, err := h.svc.SaveDraft(c.Request().Context(), &rec, overwrite)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) Finalize(c echo.Context) error {
	var rec ShiftCensusRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if rec.CreatedBy == "" {
		rec.CreatedBy = actor
	}

	final, err := h.svc.Finalize(c.Request().Context(), &rec, actor)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, final)
}

func (h *Handler) Resubmit(c echo.Context) error {
	existing, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HTTPError(err)
	}

	var rec ShiftCensusRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Identity comes from the stored record; the body only supplies the
	// corrected fields.
	rec.WardID = existing.WardID
	rec.Shift = existing.Shift
	rec.Date = existing.Date
	rec.CreatedBy = existing.CreatedBy
	actor := auth.UserIDFromContext(c.Request().Context())

	resubmitted, err := h.svc.Resubmit(c.Request().Context(), &rec, actor)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, resubmitted)
}

func slotParams(c echo.Context) (string, Shift, time.Time, error) {
	wardID := c.QueryParam("ward")
	shift := Shift(c.QueryParam("shift"))
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if wardID == "" || !shift.Valid() || err != nil {
		return "", "", time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			"ward, shift (morning|night) and date (YYYY-MM-DD) query parameters are required")
	}
	return wardID, shift, date, nil
}

// HTTPError maps a lifecycle error to an HTTP response. Shared by the
// approval and summary handlers, which surface the same taxonomy.
func HTTPError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message":    vErr.Error(),
			"validation": vErr.Result,
		})
	}
	var scErr *StateConflictError
	if errors.As(err, &scErr) {
		body := map[string]interface{}{"message": scErr.Error()}
		if scErr.ConfirmRequired {
			body["code"] = "confirm_required"
		}
		return echo.NewHTTPError(http.StatusConflict, body)
	}
	var psErr *PrecedingShiftError
	if errors.As(err, &psErr) {
		return echo.NewHTTPError(http.StatusConflict, psErr.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	var stErr *StoreError
	if errors.As(err, &stErr) {
		return echo.NewHTTPError(http.StatusBadGateway, "store unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
