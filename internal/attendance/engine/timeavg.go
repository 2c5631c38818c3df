package engine

import (
	"math"
	"time"
)

// minutesPerDay is the clock wrap period for circular averaging.
const minutesPerDay = 24 * 60

// AverageTimeOfDay computes the average clock time across timestamps,
// formatted as "HH:MM", or "N/A" for empty input.
//
// Clock times wrap at midnight, so an arithmetic mean is wrong near the
// boundary: averaging 23:50 and 00:10 must yield 00:00, not 12:00. Each
// time is mapped to an angle on the 24h circle, the unit vectors are
// averaged, and the resultant angle is mapped back to minutes.
func AverageTimeOfDay(timestamps []time.Time) string {
	if len(timestamps) == 0 {
		return "N/A"
	}

	var sumSin, sumCos float64
	for _, ts := range timestamps {
		theta := float64(MinutesOfDay(ts)) / minutesPerDay * 2 * math.Pi
		sumSin += math.Sin(theta)
		sumCos += math.Cos(theta)
	}

	theta := math.Atan2(sumSin, sumCos)
	if theta < 0 {
		theta += 2 * math.Pi
	}

	minutes := int(math.Round(theta / (2 * math.Pi) * minutesPerDay))
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay(minutes).String()
}
