package calculators

import (
	"github.com/shopspring/decimal"
)

// BaseCalculator provides conversions shared by the term calculators
type BaseCalculator struct{}

// HourlyToTerm converts an hourly rate to the cost of a lease of the given years
func (bc *BaseCalculator) HourlyToTerm(hourly float64, leaseYears int) decimal.Decimal {
	return decimal.NewFromFloat(hourly).Mul(hoursInLease(leaseYears))
}
