package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/middleware"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
)

// ReportHandler serves the service-report CRUD and the calendar
// expansion. Reports belong to their creator; admins may read and
// delete any report but editing stays with the owner.
type ReportHandler struct {
	Reports  *repository.ReportRepo
	Holidays *repository.HolidayRepo
}

func NewReportHandler(r *repository.ReportRepo, h *repository.HolidayRepo) *ReportHandler {
	return &ReportHandler{Reports: r, Holidays: h}
}

const dateLayout = "2006-01-02"

type reportReq struct {
	SiteName      string   `json:"site_name" form:"site_name"`
	SiteColor     string   `json:"site_color" form:"site_color"`
	StartDate     string   `json:"start_date" form:"start_date"`
	EndDate       string   `json:"end_date" form:"end_date"`
	Notes         string   `json:"notes" form:"notes"`
	ExcludedDates []string `json:"excluded_dates"`
}

type reportResp struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	SiteName      string    `json:"site_name"`
	SiteColor     string    `json:"site_color,omitempty"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Notes         string    `json:"notes,omitempty"`
	ExcludedDates []string  `json:"excluded_dates"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toReportResp(r model.ServiceReport) reportResp {
	excluded := make([]string, 0, len(r.ExcludedDates))
	for _, d := range r.ExcludedDates {
		excluded = append(excluded, d.Format(dateLayout))
	}
	return reportResp{
		ID: r.ID, UserID: r.UserID, SiteName: r.SiteName, SiteColor: r.SiteColor,
		StartDate: r.StartDate.Format(dateLayout), EndDate: r.EndDate.Format(dateLayout),
		Notes: r.Notes, ExcludedDates: excluded, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (req *reportReq) toModel(userID uint64) (*model.ServiceReport, error) {
	req.SiteName = strings.TrimSpace(req.SiteName)
	if req.SiteName == "" {
		return nil, errors.New("site_name required")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, errors.New("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, errors.New("end_date must not precede start_date")
	}
	rep := &model.ServiceReport{
		UserID:    userID,
		SiteName:  req.SiteName,
		SiteColor: strings.TrimSpace(req.SiteColor),
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
	}
	for _, s := range req.ExcludedDates {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, errors.New("excluded_dates must be YYYY-MM-DD")
		}
		if d.Before(start) || d.After(end) {
			return nil, errors.New("excluded_dates must fall inside the report range")
		}
		rep.ExcludedDates = append(rep.ExcludedDates, d)
	}
	return rep, nil
}

// List returns the caller's own reports, newest first.
func (h *ReportHandler) List(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	reports, err := h.Reports.ListByUser(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	out := make([]reportResp, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reports": out, "total": len(out)})
}

// Create inserts a new report owned by the caller.
func (h *ReportHandler) Create(c echo.Context) error {
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sess := middleware.CurrentSession(c)
	rep, err := req.toModel(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Reports.Create(ctx, rep)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Get returns one report. Owners see their own; admins see any.
func (h *ReportHandler) Get(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return fmt.Errorf("get report: %w", err)
	}
	sess := middleware.CurrentSession(c)
	if rep.UserID != sess.UserID && sess.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toReportResp(rep))
}

// Update rewrites an owned report.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sess := middleware.CurrentSession(c)
	rep, err := req.toModel(sess.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rep.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Reports.Update(ctx, rep, sess.UserID); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	default:
		return fmt.Errorf("update report: %w", err)
	}
}

// Delete removes a report. Owners delete their own; admins delete any.
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	sess := middleware.CurrentSession(c)
	ownerID := sess.UserID
	if sess.Role == model.RoleAdmin {
		ownerID = 0 // admin path skips the ownership clause
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reports.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return fmt.Errorf("delete report: %w", err)
	}
	return c.NoContent(http.StatusNoContent)
}

type calendarDay struct {
	Day       string `json:"day"`
	ReportID  uint64 `json:"report_id,omitempty"`
	SiteName  string `json:"site_name,omitempty"`
	SiteColor string `json:"site_color,omitempty"`
	Holiday   bool   `json:"holiday,omitempty"`
	HalfDay   bool   `json:"half_day,omitempty"`
	Worked    bool   `json:"worked"`
}

// Calendar expands the caller's reports over [from, to] into one entry
// per day. A day counts as worked when a report covers it, it is not
// excluded, and it is not a full-day holiday; half-day holidays keep
// the report visible.
func (h *ReportHandler) Calendar(c echo.Context) error {
	from, err := time.Parse(dateLayout, c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := time.Parse(dateLayout, c.QueryParam("to"))
	if err != nil || to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD and not precede from"})
	}
	// Inclusive day count: from == to is one day.
	if to.Sub(from) >= 366*24*time.Hour {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "range too large"})
	}

	sess := middleware.CurrentSession(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	reports, err := h.Reports.ListOverlapping(ctx, sess.UserID, from, to)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	holidays, err := h.Holidays.ListRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list holidays: %w", err)
	}

	holidayByDay := make(map[string]model.Holiday, len(holidays))
	for _, hd := range holidays {
		holidayByDay[hd.Day.Format(dateLayout)] = hd
	}

	var days []calendarDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		entry := calendarDay{Day: key}
		if hd, ok := holidayByDay[key]; ok {
			entry.Holiday = true
			entry.HalfDay = hd.IsHalfDay
		}
		if !entry.Holiday || entry.HalfDay {
			for i := range reports {
				if reports[i].Covers(d) {
					entry.ReportID = reports[i].ID
					entry.SiteName = reports[i].SiteName
					entry.SiteColor = reports[i].SiteColor
					entry.Worked = true
					break
				}
			}
		}
		days = append(days, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{"days": days})
}
