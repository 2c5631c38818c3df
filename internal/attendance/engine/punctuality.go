package engine

import "time"

// DefaultGraceMinutes is the organization-independent fallback tolerance
// after the expected start before an arrival counts as late. Organizations
// override it through their schedule configuration.
const DefaultGraceMinutes = 15

// PunctualityTier grades how late an arrival was.
type PunctualityTier string

const (
	TierOnTime        PunctualityTier = "on-time"
	TierLate          PunctualityTier = "late"
	TierVeryLate      PunctualityTier = "very-late"
	TierExtremelyLate PunctualityTier = "extremely-late"
)

// ArrivalVerdict classifies a check-in against the expected start.
type ArrivalVerdict struct {
	IsLate      bool            `json:"is_late"`
	MinutesLate int             `json:"minutes_late"`
	Tier        PunctualityTier `json:"tier"`
}

// DepartureVerdict classifies a check-out against the expected end.
type DepartureVerdict struct {
	IsEarly      bool `json:"is_early"`
	MinutesEarly int  `json:"minutes_early"`
}

// EvaluateArrival grades a check-in time against the resolved working day.
// On a non-working day there is nothing to be late for.
func EvaluateArrival(actual time.Time, day ResolvedWorkingDay, graceMinutes int) ArrivalVerdict {
	if !day.IsWorkingDay {
		return ArrivalVerdict{Tier: TierOnTime}
	}
	if graceMinutes < 0 {
		graceMinutes = 0
	}

	minutesLate := MinutesOfDay(actual) - int(day.ExpectedStart) - graceMinutes
	if minutesLate <= 0 {
		return ArrivalVerdict{Tier: TierOnTime}
	}
	return ArrivalVerdict{
		IsLate:      true,
		MinutesLate: minutesLate,
		Tier:        lateTier(minutesLate),
	}
}

// EvaluateDeparture grades a check-out time against the resolved working day.
func EvaluateDeparture(actual time.Time, day ResolvedWorkingDay) DepartureVerdict {
	if !day.IsWorkingDay {
		return DepartureVerdict{}
	}
	minutesEarly := int(day.ExpectedEnd) - MinutesOfDay(actual)
	if minutesEarly <= 0 {
		return DepartureVerdict{}
	}
	return DepartureVerdict{IsEarly: true, MinutesEarly: minutesEarly}
}

func lateTier(minutesLate int) PunctualityTier {
	switch {
	case minutesLate >= 60:
		return TierExtremelyLate
	case minutesLate >= 30:
		return TierVeryLate
	default:
		return TierLate
	}
}
