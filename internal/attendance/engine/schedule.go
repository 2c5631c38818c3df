package engine

import "time"

// DaySchedule is the working window for a single weekday.
type DaySchedule struct {
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
	Closed bool      `json:"closed"`
}

// SpecialDate is an exact-date override of the regular schedule.
// Open == Close (or Close before Open) marks the date as closed.
type SpecialDate struct {
	Date  time.Time `json:"date"`
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

// OrganizationSchedule is the normalized, per-organization working-hours
// configuration. Repositories parse whatever shape is stored into this
// struct once, at the boundary; the engine never branches on raw shapes.
type OrganizationSchedule struct {
	WorkingDays  map[time.Weekday]bool        `json:"working_days"`
	PerDay       map[time.Weekday]DaySchedule `json:"per_day,omitempty"`
	SpecialDates []SpecialDate                `json:"special_dates,omitempty"`
	DefaultOpen  TimeOfDay                    `json:"default_open"`
	DefaultClose TimeOfDay                    `json:"default_close"`
	HolidayMode  bool                         `json:"holiday_mode"`
	HolidayUntil *time.Time                   `json:"holiday_until,omitempty"`
	Timezone     string                       `json:"timezone"`
	GraceMinutes int                          `json:"grace_minutes"`
}

// ResolvedWorkingDay is the schedule resolution for one (organization, date)
// pair. ExpectedStart/ExpectedEnd are only meaningful when IsWorkingDay.
type ResolvedWorkingDay struct {
	IsWorkingDay    bool      `json:"is_working_day"`
	ExpectedStart   TimeOfDay `json:"expected_start"`
	ExpectedEnd     TimeOfDay `json:"expected_end"`
	ExpectedMinutes int       `json:"expected_minutes"`
}

// Built-in fallback used when an organization has no schedule configured.
const (
	DefaultOpenTime  = TimeOfDay(7*60 + 30)  // 07:30
	DefaultCloseTime = TimeOfDay(16*60 + 30) // 16:30
)

// DefaultSchedule returns the built-in Monday-Friday fallback schedule.
func DefaultSchedule() *OrganizationSchedule {
	return &OrganizationSchedule{
		WorkingDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		DefaultOpen:  DefaultOpenTime,
		DefaultClose: DefaultCloseTime,
		GraceMinutes: DefaultGraceMinutes,
	}
}

// ResolveWorkingDay resolves whether date is a working day under the given
// schedule and what window is expected. A nil schedule falls back to the
// built-in default. Precedence is fixed: holiday mode, then an exact-date
// override, then the per-weekday schedule, then the weekly flag with the
// default open/close window.
func ResolveWorkingDay(s *OrganizationSchedule, date time.Time) ResolvedWorkingDay {
	if s == nil {
		s = DefaultSchedule()
	}

	if s.holidayActiveOn(date) {
		return ResolvedWorkingDay{}
	}

	if special, ok := s.specialDateFor(date); ok {
		if special.Close <= special.Open {
			return ResolvedWorkingDay{}
		}
		return ResolvedWorkingDay{
			IsWorkingDay:    true,
			ExpectedStart:   special.Open,
			ExpectedEnd:     special.Close,
			ExpectedMinutes: int(special.Close - special.Open),
		}
	}

	weekday := date.Weekday()
	if day, ok := s.PerDay[weekday]; ok {
		if day.Closed {
			return ResolvedWorkingDay{}
		}
		if day.End > day.Start {
			return ResolvedWorkingDay{
				IsWorkingDay:    true,
				ExpectedStart:   day.Start,
				ExpectedEnd:     day.End,
				ExpectedMinutes: int(day.End - day.Start),
			}
		}
		// Entry exists but carries no usable window; fall through to the
		// weekly flag rather than invent hours.
	}

	if !s.WorkingDays[weekday] {
		return ResolvedWorkingDay{}
	}

	open, close := s.DefaultOpen, s.DefaultClose
	if close <= open {
		open, close = DefaultOpenTime, DefaultCloseTime
	}
	return ResolvedWorkingDay{
		IsWorkingDay:    true,
		ExpectedStart:   open,
		ExpectedEnd:     close,
		ExpectedMinutes: int(close - open),
	}
}

// holidayActiveOn reports whether holiday mode suspends work on date.
// An open-ended holiday (nil until) suspends indefinitely.
func (s *OrganizationSchedule) holidayActiveOn(date time.Time) bool {
	if !s.HolidayMode {
		return false
	}
	if s.HolidayUntil == nil {
		return true
	}
	until := *s.HolidayUntil
	return !DayStart(date).After(DayStart(until))
}

func (s *OrganizationSchedule) specialDateFor(date time.Time) (SpecialDate, bool) {
	for _, special := range s.SpecialDates {
		if SameDate(special.Date, date) {
			return special, true
		}
	}
	return SpecialDate{}, false
}
