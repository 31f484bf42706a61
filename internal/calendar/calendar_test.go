package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"same day next month", day(2024, time.March, 15), 1, day(2024, time.April, 15)},
		{"crosses year", day(2024, time.November, 10), 3, day(2025, time.February, 10)},
		{"tenure not multiple of twelve", day(2024, time.June, 1), 18, day(2025, time.December, 1)},
		{"clamps to leap february", day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{"clamps to february", day(2023, time.January, 31), 1, day(2023, time.February, 28)},
		{"clamps to thirty day month", day(2024, time.March, 31), 1, day(2024, time.April, 30)},
		{"zero months", day(2024, time.May, 5), 0, day(2024, time.May, 5)},
		{"negative months", day(2024, time.January, 15), -2, day(2023, time.November, 15)},
		{"whole years", day(2020, time.February, 29), 12, day(2021, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.start, tc.n))
		})
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2025, time.July, 4, 23, 59, 0, 0, loc)
	assert.Equal(t, day(2025, time.July, 4), DateOf(ts))
}

func TestMonthsBetween(t *testing.T) {
	now := day(2025, time.March, 20)
	assert.Equal(t, 0, MonthsBetween(now, day(2025, time.March, 31)))
	assert.Equal(t, 1, MonthsBetween(now, day(2025, time.April, 1)))
	assert.Equal(t, 14, MonthsBetween(now, day(2026, time.May, 2)))
	assert.Equal(t, 0, MonthsBetween(now, day(2024, time.December, 31)))
}
