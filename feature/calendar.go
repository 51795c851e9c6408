package feature

import (
	"math"
	"time"
)

// Calendar holds the fields derived from an observation date alone
type Calendar struct {
	Year          int
	Month         int
	Day           int
	DayOfWeek     int // Monday = 0
	Quarter       int
	WeekOfYear    int // ISO 8601
	DaysFromStart int
	IsWeekend     bool
	IsHoliday     bool
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from origin to t, ignoring the time of day
func DaysBetween(origin, t time.Time) int {
	return int(math.Round(civilDay(t).Sub(civilDay(origin)).Hours() / 24))
}

// NewCalendar derives the calendar fields of t relative to origin
func NewCalendar(t, origin time.Time, holidays *HolidayPolicy) Calendar {
	_, week := t.ISOWeek()
	dow := (int(t.Weekday()) + 6) % 7
	return Calendar{
		Year:          t.Year(),
		Month:         int(t.Month()),
		Day:           t.Day(),
		DayOfWeek:     dow,
		Quarter:       (int(t.Month())-1)/3 + 1,
		WeekOfYear:    week,
		DaysFromStart: DaysBetween(origin, t),
		IsWeekend:     dow >= 5,
		IsHoliday:     holidays.IsHoliday(t),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Set writes the calendar fields into the vector
func (c Calendar) Set(v Vector) {
	v[NameYear] = float64(c.Year)
	v[NameMonth] = float64(c.Month)
	v[NameDay] = float64(c.Day)
	v[NameDayOfWeek] = float64(c.DayOfWeek)
	v[NameQuarter] = float64(c.Quarter)
	v[NameWeekOfYear] = float64(c.WeekOfYear)
	v[NameDaysFromStart] = float64(c.DaysFromStart)
	v[NameIsWeekend] = boolToFloat(c.IsWeekend)
	v[NameIsHoliday] = boolToFloat(c.IsHoliday)
}
