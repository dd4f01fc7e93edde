// Package finance implements the closed-form formulas used as the scoring
// oracle for generated questions: capitalisation and actualisation with the
// course day-count conventions, sequential returns, rate solving, constant
// annuities and inheritance splits.
package finance

import (
	"errors"
	"fmt"
	"math"
)

// DurationUnit is the time unit of a duration. Conversions use the course
// conventions of a 360-day year and a 12-month year.
type DurationUnit string

const (
	UnitDays   DurationUnit = "jours"
	UnitMonths DurationUnit = "mois"
	UnitYears  DurationUnit = "annees"
)

const (
	daysPerYear   = 360
	monthsPerYear = 12
)

var (
	ErrInvalidUnit     = errors.New("invalid duration unit")
	ErrEmptySequence   = errors.New("empty sequence")
	ErrZeroDuration    = errors.New("duration is zero")
	ErrInvalidRate     = errors.New("periodic rate must be greater than -1")
	ErrInvalidDuration = errors.New("total periods must be positive")
)

// YearsFromDuration converts a duration in the given unit to years.
func YearsFromDuration(duration float64, unit DurationUnit) (float64, error) {
	switch unit {
	case UnitDays:
		return duration / daysPerYear, nil
	case UnitMonths:
		return duration / monthsPerYear, nil
	case UnitYears:
		return duration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
}

// FutureValue returns the value of principal placed at annualRatePct for the
// given duration. Durations strictly above one year compound annually;
// durations of one year or less earn simple interest. Exactly one year is
// simple interest.
func FutureValue(principal, annualRatePct, duration float64, unit DurationUnit) (float64, error) {
	years, err := YearsFromDuration(duration, unit)
	if err != nil {
		return 0, fmt.Errorf("YearsFromDuration() > %w", err)
	}
	rate := annualRatePct / 100
	if years > 1.0 {
		return principal * math.Pow(1+rate, years), nil
	}
	return principal * (1 + rate*years), nil
}

// PresentValue returns the capital to place today at annualRatePct to reach
// futureValue after the given duration. Same simple/compound policy as
// FutureValue.
func PresentValue(futureValue, annualRatePct, duration float64, unit DurationUnit) (float64, error) {
	years, err := YearsFromDuration(duration, unit)
	if err != nil {
		return 0, fmt.Errorf("YearsFromDuration() > %w", err)
	}
	rate := annualRatePct / 100
	if years > 1.0 {
		return futureValue / math.Pow(1+rate, years), nil
	}
	return futureValue / (1 + rate*years), nil
}

// SequentialReturn compounds principal through an ordered sequence of period
// returns, each applied to the running total.
func SequentialReturn(principal float64, periodReturnsPct []float64) float64 {
	for _, r := range periodReturnsPct {
		principal *= 1 + r/100
	}
	return principal
}

// AverageAnnualReturn returns the geometric mean return of the sequence as a
// percentage.
func AverageAnnualReturn(returnsPct []float64) (float64, error) {
	if len(returnsPct) == 0 {
		return 0, ErrEmptySequence
	}
	cumulative := 1.0
	for _, r := range returnsPct {
		cumulative *= 1 + r/100
	}
	return (math.Pow(cumulative, 1/float64(len(returnsPct))) - 1) * 100, nil
}

// SolveRate returns the annual rate, as a percentage, at which principal
// grows to futureValue over the given duration. Inverse of FutureValue under
// the same simple/compound policy.
func SolveRate(principal, futureValue, duration float64, unit DurationUnit) (float64, error) {
	years, err := YearsFromDuration(duration, unit)
	if err != nil {
		return 0, fmt.Errorf("YearsFromDuration() > %w", err)
	}
	if years == 0 {
		return 0, ErrZeroDuration
	}
	ratio := futureValue / principal
	if years > 1.0 {
		return (math.Pow(ratio, 1/years) - 1) * 100, nil
	}
	return (ratio - 1) / years * 100, nil
}

// ConstantAnnuityPayment returns the constant installment of an amortizing
// loan of principal at periodicRate over totalPeriods, with interest accruing
// during deferralPeriods before amortization starts, along with the total
// interest cost over the life of the loan.
func ConstantAnnuityPayment(principal, periodicRate float64, totalPeriods, deferralPeriods int) (payment, totalInterest float64, err error) {
	if periodicRate <= -1 {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidRate, periodicRate)
	}
	if totalPeriods <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidDuration, totalPeriods)
	}
	n := float64(totalPeriods)
	payment = principal * math.Pow(1+periodicRate, float64(deferralPeriods)) * periodicRate /
		(1 - math.Pow(1+periodicRate, -n))
	return payment, n*payment - principal, nil
}

// InheritanceSplit divides capital among heirs so that each share, grown at
// the real rate (1+rate)/(1+inflation)-1 until the heir reaches majorityAge,
// is financially equivalent. Heirs at or past majority weigh 1. rate and
// inflation are fractions, not percentages. Shares are returned in the order
// of ages and sum to capital.
func InheritanceSplit(capital, rate, inflation float64, ages []int, majorityAge int) ([]float64, error) {
	if len(ages) == 0 {
		return nil, ErrEmptySequence
	}
	realFactor := (1 + rate) / (1 + inflation)
	denominator := 0.0
	weights := make([]float64, len(ages))
	for i, age := range ages {
		weights[i] = math.Pow(realFactor, -float64(max(majorityAge-age, 0)))
		denominator += weights[i]
	}
	shares := make([]float64, len(ages))
	for i := range ages {
		shares[i] = capital * weights[i] / denominator
	}
	return shares, nil
}
