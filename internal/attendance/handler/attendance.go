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

// AttendanceHandler handles attendance endpoints
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

// CheckIn checks in an employee
// POST /attendance/employees/{id}/check-in
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	// Body is optional; kiosks send their terminal ID, the web UI sends
	// nothing.
	var req struct {
		OrganizationID *string `json:"organization_id"`
		TerminalID     *string `json:"terminal_id"`
	}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
	}

	if req.TerminalID == nil {
		if terminalID := httputil.GetTerminalID(r.Context()); terminalID != "" {
			req.TerminalID = &terminalID
		}
	}

	result, err := h.service.CheckIn(r.Context(), employeeID, req.OrganizationID, req.TerminalID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// CheckOut checks out an employee
// POST /attendance/employees/{id}/check-out
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	result, err := h.service.CheckOut(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// StartBreak starts a break for an employee
// POST /attendance/employees/{id}/break/start
func (h *AttendanceHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	brk, err := h.service.StartBreak(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, brk)
}

// EndBreak ends a break for an employee
// POST /attendance/employees/{id}/break/end
func (h *AttendanceHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	brk, err := h.service.EndBreak(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, brk)
}

// GetStatus returns the live attendance state of an employee
// GET /attendance/employees/{id}/status
func (h *AttendanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	status, err := h.service.GetEmployeeStatus(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, status)
}

// ManualCheckIn records a check-in on behalf of an employee
// POST /attendance/employees/{id}/manual-check-in
func (h *AttendanceHandler) ManualCheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		Time           string  `json:"time" validate:"required"` // "HH:mm" or RFC3339
		Date           string  `json:"date"`                     // optional "YYYY-MM-DD", defaults to today
		OrganizationID *string `json:"organization_id"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	checkInTime, err := parseDateAndTime(req.Date, req.Time)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	userID := r.Header.Get("X-User-ID")

	result, err := h.service.ManualCheckIn(r.Context(), employeeID, checkInTime, req.OrganizationID, userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// ManualCheckOut records a check-out on behalf of an employee
// POST /attendance/employees/{id}/manual-check-out
func (h *AttendanceHandler) ManualCheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		Time string `json:"time" validate:"required"` // "HH:mm" or RFC3339
		Date string `json:"date"`                     // optional "YYYY-MM-DD", defaults to today
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	checkOutTime, err := parseDateAndTime(req.Date, req.Time)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	userID := r.Header.Get("X-User-ID")

	result, err := h.service.ManualCheckOut(r.Context(), employeeID, checkOutTime, userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// GetShift returns a shift by ID
// GET /attendance/shifts/{id}
func (h *AttendanceHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	shift, err := h.service.GetShift(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, shift)
}

// DeleteShift soft deletes a shift
// DELETE /attendance/shifts/{id}
func (h *AttendanceHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteShift(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// CorrectShift corrects a shift's check-in/check-out times
// POST /attendance/shifts/{id}/correct
func (h *AttendanceHandler) CorrectShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		CheckIn  *string `json:"check_in"`  // RFC3339
		CheckOut *string `json:"check_out"` // RFC3339
		Reason   string  `json:"reason"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	var checkIn, checkOut *time.Time
	if req.CheckIn != nil {
		t, err := time.Parse(time.RFC3339, *req.CheckIn)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid check_in format"))
			return
		}
		checkIn = &t
	}
	if req.CheckOut != nil {
		t, err := time.Parse(time.RFC3339, *req.CheckOut)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid check_out format"))
			return
		}
		checkOut = &t
	}

	userID := r.Header.Get("X-User-ID")

	shift, err := h.service.CorrectShift(r.Context(), id, checkIn, checkOut, req.Reason, userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, shift)
}

// GetEmployeeCorrections returns corrections for an employee
// GET /attendance/employees/{id}/corrections?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AttendanceHandler) GetEmployeeCorrections(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	startDate, endDate, err := parseDateRange(r, time.Now().AddDate(0, 0, -30), time.Now())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	corrections, err := h.service.GetEmployeeCorrections(r.Context(), employeeID, startDate, endDate)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, corrections)
}

// parseDateAndTime combines an optional "YYYY-MM-DD" date and an "HH:mm" or
// RFC3339 time into one timestamp. A bare clock time without a date lands on
// today.
func parseDateAndTime(dateStr, timeStr string) (time.Time, error) {
	var date time.Time
	if dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return time.Time{}, errors.BadRequest("invalid date format, expected YYYY-MM-DD")
		}
	} else {
		now := time.Now()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	if len(timeStr) == 5 { // HH:mm
		t, err := time.Parse("15:04", timeStr)
		if err != nil {
			return time.Time{}, errors.BadRequest("invalid time format, expected HH:mm")
		}
		return time.Date(date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), 0, 0, time.Local), nil
	}

	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		return time.Time{}, errors.BadRequest("invalid time format")
	}
	return t, nil
}

// parseDateRange reads start/end query params, falling back to defaults.
func parseDateRange(r *http.Request, defaultStart, defaultEnd time.Time) (time.Time, time.Time, error) {
	startDate, endDate := defaultStart, defaultEnd

	if startStr := r.URL.Query().Get("start"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.BadRequest("invalid start date format")
		}
		startDate = parsed
	}
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.BadRequest("invalid end date format")
		}
		endDate = parsed
	}

	return startDate, endDate, nil
}
