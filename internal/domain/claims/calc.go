package claims

import (
	"fmt"
	"math"
)

// MaxMonthlyHours caps a single monthly claim.
const MaxMonthlyHours = 180

func ValidateHours(hours float64) error {
	if hours <= 0 || hours > MaxMonthlyHours {
		return &ValidationError{
			Code:    CodeHoursOutOfRange,
			Message: fmt.Sprintf("hours worked must be greater than 0 and at most %d", MaxMonthlyHours),
		}
	}
	return nil
}

// ComputeTotal returns hours x rate rounded half-up to two decimal places,
// matching the NUMERIC(18,2) column the amount is stored in.
func ComputeTotal(hours, rate float64) float64 {
	return roundCents(hours * rate)
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
