package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/workpulse-backend/internal/attendance/service"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/httputil"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// ReportHandler handles attendance report endpoints
type ReportHandler struct {
	service *service.ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// GetDailyReport returns the attendance report for one calendar day
// GET /attendance/reports/daily?date=YYYY-MM-DD
func (h *ReportHandler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid date format, expected YYYY-MM-DD"))
		return
	}

	report, err := h.service.DailyReport(r.Context(), date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// GetShiftsByDate returns all shifts that started on a specific date
// GET /attendance/shifts?date=YYYY-MM-DD
func (h *ReportHandler) GetShiftsByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid date format, expected YYYY-MM-DD"))
		return
	}

	shifts, err := h.service.ListShiftsByDate(r.Context(), date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, shifts)
}

// GetEmployeeSummary returns an employee's attendance summary over a range
// GET /attendance/employees/{id}/summary?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ReportHandler) GetEmployeeSummary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	now := time.Now()
	defaultStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	defaultEnd := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())

	startDate, endDate, err := parseDateRange(r, defaultStart, defaultEnd)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.PeriodSummary(r.Context(), employeeID, startDate, endDate)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}
