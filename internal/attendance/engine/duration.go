package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatDuration renders a minute count as "XhYm", e.g. 465 -> "7h 45m".
// Negative input is a caller bug; clamp upstream.
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

var (
	reClockTime    = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2})?$`)
	reHoursMinutes = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*h(?:(?:ou)?rs?)?\s*(\d+)\s*m(?:in(?:ute)?s?)?$`)
	reHoursOnly    = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*h(?:(?:ou)?rs?)?$`)
	reMinutesOnly  = regexp.MustCompile(`(?i)^(\d+)\s*m(?:in(?:ute)?s?)?$`)
	reBareNumber   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	reFirstNumber  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseDurationText converts a human-entered duration string to minutes.
// Historical attendance data carries several dialects, tried in order:
// "HH:MM[:SS]", "Xh Ym" (flexible spacing, "hours"/"minutes" words),
// "Xh" alone, "Xm" alone, a bare number read as hours, and finally a
// best-effort scan for the first number, guessed as hours when it is
// small enough to be one (<= 24). Unparseable input yields 0, never an
// error; a report must still render over messy data.
func ParseDurationText(text string) int {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	if m := reClockTime.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes
	}

	if m := reHoursMinutes.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		minutes, _ := strconv.Atoi(m[2])
		return int(hours*60) + minutes
	}

	if m := reHoursOnly.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		return int(hours * 60)
	}

	if m := reMinutesOnly.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes
	}

	if reBareNumber.MatchString(s) {
		hours, _ := strconv.ParseFloat(s, 64)
		return int(hours * 60)
	}

	if m := reFirstNumber.FindString(s); m != "" {
		value, _ := strconv.ParseFloat(m, 64)
		if value <= 24 {
			return int(value * 60)
		}
		return int(value)
	}

	return 0
}
