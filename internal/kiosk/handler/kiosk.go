package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	attendance "github.com/workpulse/workpulse-backend/internal/attendance/service"
	"github.com/workpulse/workpulse-backend/internal/kiosk/service"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/httputil"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// KioskHandler handles kiosk terminal endpoints
type KioskHandler struct {
	service    *service.KioskService
	attendance *attendance.AttendanceService
	logger     *logger.Logger
}

// NewKioskHandler creates a new kiosk handler
func NewKioskHandler(svc *service.KioskService, att *attendance.AttendanceService, log *logger.Logger) *KioskHandler {
	return &KioskHandler{
		service:    svc,
		attendance: att,
		logger:     log,
	}
}

// RegisterTerminal registers a new kiosk terminal and returns its token
// POST /kiosk/terminals
func (h *KioskHandler) RegisterTerminal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationID string `json:"organization_id" validate:"omitempty,uuid"`
		Name           string `json:"name" validate:"required,min=2,max=255"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	registeredBy := r.Header.Get("X-User-ID")

	terminal, token, err := h.service.RegisterTerminal(r.Context(), req.OrganizationID, req.Name, registeredBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"terminal": terminal,
		"token":    token,
	})
}

// ListTerminals lists all registered terminals
// GET /kiosk/terminals
func (h *KioskHandler) ListTerminals(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.service.ListTerminals(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, terminals)
}

// RevokeTerminal revokes a terminal
// POST /kiosk/terminals/{id}/revoke
func (h *KioskHandler) RevokeTerminal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
	}

	revokedBy := r.Header.Get("X-User-ID")

	if err := h.service.RevokeTerminal(r.Context(), id, revokedBy, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// RenewToken mints a fresh token for an active terminal
// POST /kiosk/terminals/{id}/token
func (h *KioskHandler) RenewToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := h.service.RenewToken(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, token)
}

// SetEmployeePIN sets an employee's kiosk PIN
// PUT /kiosk/employees/{id}/pin
func (h *KioskHandler) SetEmployeePIN(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		PIN string `json:"pin" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.SetEmployeePIN(r.Context(), employeeID, req.PIN); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Punch actions accepted from kiosk terminals.
const (
	punchCheckIn    = "check_in"
	punchCheckOut   = "check_out"
	punchBreakStart = "break_start"
	punchBreakEnd   = "break_end"
)

// Punch handles a clock event from a kiosk terminal. The terminal
// authenticates with its bearer token, the employee with their PIN. The
// tenant context is taken from the token claims, not from headers, so a
// kiosk cannot punch into another tenant's schema.
// POST /kiosk/punch
func (h *KioskHandler) Punch(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		httputil.Error(w, errors.Unauthorized("missing terminal token"))
		return
	}

	claims, err := h.service.ValidateToken(r.Context(), tokenString)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req struct {
		EmployeeID string `json:"employee_id" validate:"required,uuid"`
		PIN        string `json:"pin" validate:"required"`
		Action     string `json:"action" validate:"required,oneof=check_in check_out break_start break_end"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	ctx := tenant.WithTenantContext(r.Context(), claims.TenantID, claims.TenantSlug, claims.TenantSchema)
	ctx = httputil.WithTerminalContext(ctx, claims.TerminalID)

	if err := h.service.VerifyEmployeePIN(ctx, req.EmployeeID, req.PIN); err != nil {
		httputil.Error(w, err)
		return
	}

	terminalID := claims.TerminalID
	var organizationID *string
	if claims.OrganizationID != "" {
		organizationID = &claims.OrganizationID
	}

	switch req.Action {
	case punchCheckIn:
		result, err := h.attendance.CheckIn(ctx, req.EmployeeID, organizationID, &terminalID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.Created(w, result)
	case punchCheckOut:
		result, err := h.attendance.CheckOut(ctx, req.EmployeeID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, result)
	case punchBreakStart:
		brk, err := h.attendance.StartBreak(ctx, req.EmployeeID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, brk)
	case punchBreakEnd:
		brk, err := h.attendance.EndBreak(ctx, req.EmployeeID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, brk)
	default:
		httputil.Error(w, errors.BadRequest("invalid action, expected check_in, check_out, break_start or break_end"))
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
