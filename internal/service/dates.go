package service

import (
	"alcyxob/coach-app/internal/domain"
	"time"
)

// parseDate parses an ISO calendar date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, invalidf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// addDays shifts an already validated date.
func addDays(date string, n int) string {
	t, _ := time.Parse(domain.DateLayout, date)
	return formatDate(t.AddDate(0, 0, n))
}

// isoWeekday is 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// weekBounds returns the Monday and Sunday of the ISO week containing t.
func weekBounds(t time.Time) (string, string) {
	monday := t.AddDate(0, 0, 1-isoWeekday(t))
	return formatDate(monday), formatDate(monday.AddDate(0, 0, 6))
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
