package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/organization/events"
	"github.com/workpulse/workpulse-backend/internal/organization/repository"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// OrganizationService handles organization and schedule business logic. It
// is the engine's schedule source: attendance and report services resolve
// working days through it.
type OrganizationService struct {
	repo      *repository.OrganizationRepository
	publisher *events.OrganizationEventPublisher
	resolver  *engine.Resolver
	logger    *logger.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	repo *repository.OrganizationRepository,
	publisher *events.OrganizationEventPublisher,
	log *logger.Logger,
) *OrganizationService {
	return &OrganizationService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// BindResolver attaches the resolver whose cache this service invalidates
// on schedule changes. The service is itself the resolver's source, so the
// resolver cannot exist before the service does.
func (s *OrganizationService) BindResolver(resolver *engine.Resolver) {
	s.resolver = resolver
}

func (s *OrganizationService) invalidate(organizationID string) {
	if s.resolver != nil {
		s.resolver.Invalidate(organizationID)
	}
}

// Create creates a new organization
func (s *OrganizationService) Create(ctx context.Context, org *repository.Organization) error {
	if err := validateOrganization(org); err != nil {
		return err
	}
	return s.repo.Create(ctx, org)
}

// Get gets an organization by ID
func (s *OrganizationService) Get(ctx context.Context, id string) (*repository.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// List gets all organizations
func (s *OrganizationService) List(ctx context.Context) ([]*repository.Organization, error) {
	return s.repo.List(ctx)
}

// Update updates an organization and invalidates its cached schedule
func (s *OrganizationService) Update(ctx context.Context, org *repository.Organization, userID string) error {
	if err := validateOrganization(org); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, org); err != nil {
		return err
	}

	s.invalidate(org.ID)
	s.publisher.PublishScheduleUpdated(ctx, org.ID, userID)

	return nil
}

// Delete soft deletes an organization
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// SetHolidayMode toggles holiday mode, optionally bounded by an end date
func (s *OrganizationService) SetHolidayMode(ctx context.Context, id string, enabled bool, until *time.Time) error {
	if err := s.repo.SetHolidayMode(ctx, id, enabled, until); err != nil {
		return err
	}

	s.invalidate(id)
	s.publisher.PublishHolidayModeChanged(ctx, id, enabled, until)

	return nil
}

// SetSpecialDate sets or replaces the working-hours override for a date
func (s *OrganizationService) SetSpecialDate(ctx context.Context, sd *repository.SpecialDate) error {
	if _, ok := engine.ParseTimeOfDay(sd.OpenTime); !ok {
		return errors.BadRequest("invalid open_time, expected HH:MM")
	}
	if _, ok := engine.ParseTimeOfDay(sd.CloseTime); !ok {
		return errors.BadRequest("invalid close_time, expected HH:MM")
	}

	// The organization must exist; a typo'd ID should not create orphans.
	if _, err := s.repo.GetByID(ctx, sd.OrganizationID); err != nil {
		return err
	}

	if err := s.repo.UpsertSpecialDate(ctx, sd); err != nil {
		return err
	}

	s.invalidate(sd.OrganizationID)
	s.publisher.PublishSpecialDateSet(ctx, sd.OrganizationID, sd.Date, sd.OpenTime, sd.CloseTime)

	return nil
}

// ListSpecialDates gets all overrides for an organization
func (s *OrganizationService) ListSpecialDates(ctx context.Context, organizationID string) ([]*repository.SpecialDate, error) {
	return s.repo.ListSpecialDates(ctx, organizationID)
}

// RemoveSpecialDate removes the override for a date
func (s *OrganizationService) RemoveSpecialDate(ctx context.Context, organizationID string, date time.Time) error {
	if err := s.repo.DeleteSpecialDate(ctx, organizationID, date); err != nil {
		return err
	}
	s.invalidate(organizationID)
	return nil
}

// OrganizationSchedule loads and normalizes an organization's schedule.
// Implements engine.ScheduleSource.
func (s *OrganizationService) OrganizationSchedule(ctx context.Context, organizationID string) (*engine.OrganizationSchedule, error) {
	org, err := s.repo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	specialDates, err := s.repo.ListSpecialDates(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	return buildSchedule(org, specialDates)
}

func validateOrganization(org *repository.Organization) error {
	if org.Name == "" {
		return errors.BadRequest("name is required")
	}
	if org.Timezone != "" {
		if _, err := time.LoadLocation(org.Timezone); err != nil {
			return errors.BadRequest("invalid timezone")
		}
	}
	if org.DefaultOpenTime != "" {
		if _, ok := engine.ParseTimeOfDay(org.DefaultOpenTime); !ok {
			return errors.BadRequest("invalid default_open_time, expected HH:MM")
		}
	}
	if org.DefaultCloseTime != "" {
		if _, ok := engine.ParseTimeOfDay(org.DefaultCloseTime); !ok {
			return errors.BadRequest("invalid default_close_time, expected HH:MM")
		}
	}
	return nil
}

// weekdayNames maps the stored lowercase day names to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// storedDayWindow is the per-weekday JSONB shape.
type storedDayWindow struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// buildSchedule converts a stored organization row into the engine's
// normalized schedule. Malformed per-day windows are dropped rather than
// failing the whole resolution; the weekly flags still apply.
func buildSchedule(org *repository.Organization, specialDates []*repository.SpecialDate) (*engine.OrganizationSchedule, error) {
	schedule := &engine.OrganizationSchedule{
		WorkingDays:  map[time.Weekday]bool{},
		Timezone:     org.Timezone,
		GraceMinutes: org.GraceMinutes,
		HolidayMode:  org.HolidayMode,
		HolidayUntil: org.HolidayUntil,
		DefaultOpen:  engine.DefaultOpenTime,
		DefaultClose: engine.DefaultCloseTime,
	}

	if org.DefaultOpenTime != "" {
		if open, ok := engine.ParseTimeOfDay(org.DefaultOpenTime); ok {
			schedule.DefaultOpen = open
		}
	}
	if org.DefaultCloseTime != "" {
		if closeAt, ok := engine.ParseTimeOfDay(org.DefaultCloseTime); ok {
			schedule.DefaultClose = closeAt
		}
	}

	if len(org.WorkingDays) > 0 {
		var flags map[string]bool
		if err := json.Unmarshal(org.WorkingDays, &flags); err != nil {
			return nil, errors.Wrap(err, "INVALID_SCHEDULE", "malformed working_days configuration", 500)
		}
		for name, working := range flags {
			if weekday, ok := weekdayNames[name]; ok {
				schedule.WorkingDays[weekday] = working
			}
		}
	}

	if len(org.PerDay) > 0 {
		var windows map[string]storedDayWindow
		if err := json.Unmarshal(org.PerDay, &windows); err != nil {
			return nil, errors.Wrap(err, "INVALID_SCHEDULE", "malformed per_day configuration", 500)
		}
		perDay := map[time.Weekday]engine.DaySchedule{}
		for name, window := range windows {
			weekday, ok := weekdayNames[name]
			if !ok {
				continue
			}
			if window.Closed {
				perDay[weekday] = engine.DaySchedule{Closed: true}
				continue
			}
			start, okStart := engine.ParseTimeOfDay(window.Open)
			end, okEnd := engine.ParseTimeOfDay(window.Close)
			if !okStart || !okEnd {
				continue
			}
			perDay[weekday] = engine.DaySchedule{Start: start, End: end}
		}
		if len(perDay) > 0 {
			schedule.PerDay = perDay
		}
	}

	for _, sd := range specialDates {
		open, okOpen := engine.ParseTimeOfDay(sd.OpenTime)
		closeAt, okClose := engine.ParseTimeOfDay(sd.CloseTime)
		if !okOpen || !okClose {
			continue
		}
		schedule.SpecialDates = append(schedule.SpecialDates, engine.SpecialDate{
			Date:  sd.Date,
			Open:  open,
			Close: closeAt,
		})
	}

	return schedule, nil
}
