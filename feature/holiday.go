package feature

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rickar/cal/v2"
)

var ErrInvalidDayOfMonth = errors.New("holiday day of month must be between 1 and 31")

// HolidayPolicy decides which dates carry the holiday flag. A date is a holiday if its day
// of month is listed in DaysOfMonth or if it is the actual or observed date of any of the
// calendar Holidays.
type HolidayPolicy struct {
	DaysOfMonth []int `json:"days_of_month"`

	// Holidays are not serialized with a trained model and must be supplied again when a
	// model is restored.
	Holidays []*cal.Holiday `json:"-"`
}

// NewDefaultHolidayPolicy flags the 1st, 15th and 26th of every month
func NewDefaultHolidayPolicy() *HolidayPolicy {
	return &HolidayPolicy{
		DaysOfMonth: []int{1, 15, 26},
	}
}

func (p *HolidayPolicy) Validate() (*HolidayPolicy, error) {
	if p == nil {
		p = NewDefaultHolidayPolicy()
	}
	for _, d := range p.DaysOfMonth {
		if d < 1 || d > 31 {
			return nil, fmt.Errorf("got %d, %w", d, ErrInvalidDayOfMonth)
		}
	}
	return p, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (p *HolidayPolicy) IsHoliday(t time.Time) bool {
	if p == nil {
		return false
	}
	if slices.Contains(p.DaysOfMonth, t.Day()) {
		return true
	}
	for _, hol := range p.Holidays {
		actual, observed := hol.Calc(t.Year())
		if (!actual.IsZero() && sameDay(actual, t)) || (!observed.IsZero() && sameDay(observed, t)) {
			return true
		}
	}
	return false
}
