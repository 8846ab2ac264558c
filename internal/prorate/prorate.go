// Package prorate computes the mid-term price adjustment owed when a
// tenant moves to a differently priced room.  The calculation charges
// the daily-rate difference for the days remaining on the original
// term, using a nominal 30-day month.  A cheaper new room yields a
// zero charge rather than a credit; the house does not issue refunds
// on transfers.
package prorate

import (
	"math"
	"time"
)

// DaysPerMonth is the nominal month length used for daily rates.
const DaysPerMonth = 30

// Calculation is the full breakdown of a transfer adjustment,
// returned to clients so the preview endpoint can render it.
type Calculation struct {
	MoveDate        time.Time `json:"move_date"`
	RentalEndDate   time.Time `json:"rental_end_date"`
	RemainingDays   int       `json:"remaining_days"`
	DaysPerMonth    int       `json:"days_per_month"`
	OldMonthlyRate  int64     `json:"old_monthly_rate"`
	NewMonthlyRate  int64     `json:"new_monthly_rate"`
	OldDailyRate    int64     `json:"old_daily_rate"`
	NewDailyRate    int64     `json:"new_daily_rate"`
	DailyDifference int64     `json:"daily_difference"`
	Adjustment      int64     `json:"prorated_difference"`
	HasAdjustment   bool      `json:"has_adjustment"`
}

// RemainingDays returns the whole days between moveDate and endDate,
// rounding partial days up and clamping at zero when the term has
// already lapsed.
func RemainingDays(endDate, moveDate time.Time) int {
	d := endDate.Sub(moveDate)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Transfer computes the adjustment owed for moving from a room billed
// at oldRate to one billed at newRate, with the original term ending
// at endDate.  Adjustment is positive only when the new room is more
// expensive; HasAdjustment mirrors that sign check.
func Transfer(oldRate, newRate int64, endDate, moveDate time.Time) Calculation {
	days := RemainingDays(endDate, moveDate)
	oldDaily := float64(oldRate) / DaysPerMonth
	newDaily := float64(newRate) / DaysPerMonth
	diff := newDaily - oldDaily
	adj := int64(math.Round(diff * float64(days)))

	return Calculation{
		MoveDate:        moveDate,
		RentalEndDate:   endDate,
		RemainingDays:   days,
		DaysPerMonth:    DaysPerMonth,
		OldMonthlyRate:  oldRate,
		NewMonthlyRate:  newRate,
		OldDailyRate:    int64(math.Round(oldDaily)),
		NewDailyRate:    int64(math.Round(newDaily)),
		DailyDifference: int64(math.Round(diff)),
		Adjustment:      adj,
		HasAdjustment:   adj > 0,
	}
}
