package engine_test

import (
	"testing"
	"time"
)

// at builds a timestamp on the given date at "HH:MM" in UTC.
func at(t *testing.T, date string, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		t.Fatalf("bad test time %q %q: %v", date, clock, err)
	}
	return ts
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}
