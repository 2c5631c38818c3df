package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/workpulse-backend/internal/organization/repository"
	"github.com/workpulse/workpulse-backend/internal/organization/service"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/httputil"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// OrganizationHandler handles organization endpoints
type OrganizationHandler struct {
	service *service.OrganizationService
	logger  *logger.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(svc *service.OrganizationService, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: svc,
		logger:  log,
	}
}

// List returns all organizations
// GET /organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, orgs)
}

// Create creates an organization
// POST /organizations
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var org repository.Organization
	if err := httputil.DecodeJSON(r, &org); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Create(r.Context(), &org); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, org)
}

// Get returns an organization by ID
// GET /organizations/{id}
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	org, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, org)
}

// Update updates an organization's configuration
// PUT /organizations/{id}
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var org repository.Organization
	if err := httputil.DecodeJSON(r, &org); err != nil {
		httputil.Error(w, err)
		return
	}
	org.ID = id

	userID := r.Header.Get("X-User-ID")

	if err := h.service.Update(r.Context(), &org, userID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, org)
}

// Delete soft deletes an organization
// DELETE /organizations/{id}
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// SetHolidayMode toggles holiday mode
// PUT /organizations/{id}/holiday-mode
func (h *OrganizationHandler) SetHolidayMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Enabled bool    `json:"enabled"`
		Until   *string `json:"until"` // optional "YYYY-MM-DD"
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	var until *time.Time
	if req.Until != nil && *req.Until != "" {
		parsed, err := time.Parse("2006-01-02", *req.Until)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid until date format, expected YYYY-MM-DD"))
			return
		}
		until = &parsed
	}

	if err := h.service.SetHolidayMode(r.Context(), id, req.Enabled, until); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"organization_id": id,
		"holiday_mode":    req.Enabled,
		"holiday_until":   until,
	})
}

// ListSpecialDates returns all date overrides for an organization
// GET /organizations/{id}/special-dates
func (h *OrganizationHandler) ListSpecialDates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dates, err := h.service.ListSpecialDates(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dates)
}

// SetSpecialDate sets or replaces the override for a date
// PUT /organizations/{id}/special-dates
func (h *OrganizationHandler) SetSpecialDate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Date      string  `json:"date"` // YYYY-MM-DD
		OpenTime  string  `json:"open_time"`
		CloseTime string  `json:"close_time"`
		Reason    *string `json:"reason"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid date format, expected YYYY-MM-DD"))
		return
	}

	sd := &repository.SpecialDate{
		OrganizationID: id,
		Date:           date,
		OpenTime:       req.OpenTime,
		CloseTime:      req.CloseTime,
		Reason:         req.Reason,
	}

	if err := h.service.SetSpecialDate(r.Context(), sd); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, sd)
}

// RemoveSpecialDate removes the override for a date
// DELETE /organizations/{id}/special-dates?date=YYYY-MM-DD
func (h *OrganizationHandler) RemoveSpecialDate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid date format, expected YYYY-MM-DD"))
		return
	}

	if err := h.service.RemoveSpecialDate(r.Context(), id, date); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
