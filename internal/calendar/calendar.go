// Package calendar holds the date arithmetic shared by loan approval,
// spreadsheet import, and repayment reporting.
package calendar

import "time"

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to day. When the target month is shorter
// than day's day-of-month the result is clamped to the month's last day, so
// Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	// month index from year zero keeps negative n correct
	total := int(m) - 1 + n
	ty := y + total/12
	tm := total % 12
	if tm < 0 {
		tm += 12
		ty--
	}
	month := time.Month(tm + 1)
	if last := daysIn(ty, month); d > last {
		d = last
	}
	return time.Date(ty, month, d, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween counts whole calendar months from now to end by year and
// month only, floored at zero.
func MonthsBetween(now, end time.Time) int {
	n := (end.Year()-now.Year())*12 + int(end.Month()) - int(now.Month())
	if n < 0 {
		return 0
	}
	return n
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
