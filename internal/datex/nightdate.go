// Package datex implements the "night of" date rule shared by client and
// server: a gig logged in the small hours belongs to the previous evening.
package datex

import "time"

// nightCutoverHour is the local hour before which a timestamp still counts
// toward the previous calendar day.
const nightCutoverHour = 10

// NightOf returns the gig date for the given moment as YYYY-MM-DD.
// Times before 10:00 local count toward the previous day.
func NightOf(t time.Time) string {
	if t.Hour() < nightCutoverHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}
