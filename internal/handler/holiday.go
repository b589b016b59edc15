package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
)

// HolidayHandler manages the admin-maintained holiday table.
type HolidayHandler struct {
	Holidays *repository.HolidayRepo
}

func NewHolidayHandler(r *repository.HolidayRepo) *HolidayHandler { return &HolidayHandler{Holidays: r} }

type holidayReq struct {
	Day       string `json:"day" form:"day"`
	IsHalfDay bool   `json:"is_half_day" form:"is_half_day"`
}

// List returns holidays within ?from&to (defaults to the current year).
func (h *HolidayHandler) List(c echo.Context) error {
	now := time.Now().UTC()
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	if s := c.QueryParam("from"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
		}
		from = d
	}
	if s := c.QueryParam("to"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
		}
		to = d
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hs, err := h.Holidays.ListRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list holidays: %w", err)
	}
	type holidayResp struct {
		ID        uint64 `json:"id"`
		Day       string `json:"day"`
		IsHalfDay bool   `json:"is_half_day"`
	}
	out := make([]holidayResp, 0, len(hs))
	for _, hd := range hs {
		out = append(out, holidayResp{ID: hd.ID, Day: hd.Day.Format(dateLayout), IsHalfDay: hd.IsHalfDay})
	}
	return c.JSON(http.StatusOK, echo.Map{"holidays": out})
}

// Create adds a holiday (ADMIN only).
func (h *HolidayHandler) Create(c echo.Context) error {
	var req holidayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	day, err := time.Parse(dateLayout, req.Day)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "day must be YYYY-MM-DD"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Holidays.Create(ctx, day, req.IsHalfDay)
	if err != nil {
		if errors.Is(err, repository.ErrHolidayExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "holiday already exists for that day"})
		}
		return fmt.Errorf("create holiday: %w", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete removes a holiday (ADMIN only).
func (h *HolidayHandler) Delete(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid holiday id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Holidays.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "holiday not found"})
		}
		return fmt.Errorf("delete holiday: %w", err)
	}
	return c.NoContent(http.StatusNoContent)
}
