package calculators

import (
	"github.com/shopspring/decimal"

	"riprice/internal/aws/pricing/models"
)

// Economics holds the term-level comparison of a commitment against on-demand usage
type Economics struct {
	BreakevenPercentage float64
	CommitmentCost      float64
	BaselineCost        float64
	Savings             float64
	PercentSavings      float64
}

// TermCalculator computes commitment economics
type TermCalculator struct {
	BaseCalculator
}

// NewTermCalculator creates a term calculator
func NewTermCalculator() *TermCalculator {
	return &TermCalculator{}
}

// Compute returns the economics of a commitment with the given upfront fee and
// adjusted hourly rate against the on-demand hourly rate over leaseYears.
// Ratios with a zero denominator are reported as 0.
func (c *TermCalculator) Compute(baseline, adjusted, upfront float64, leaseYears int) Economics {
	up := decimal.NewFromFloat(upfront)
	commitment := up.Add(c.HourlyToTerm(adjusted, leaseYears))
	baselineCost := c.HourlyToTerm(baseline, leaseYears)
	savings := baselineCost.Sub(commitment)

	econ := Economics{
		CommitmentCost: commitment.InexactFloat64(),
		BaselineCost:   baselineCost.InexactFloat64(),
		Savings:        savings.InexactFloat64(),
	}
	if !baselineCost.IsZero() {
		econ.BreakevenPercentage = commitment.Div(baselineCost).InexactFloat64()
		econ.PercentSavings = decimal.NewFromInt(1).
			Sub(commitment.Div(baselineCost)).
			Mul(decimal.NewFromInt(100)).
			Round(3).
			InexactFloat64()
	}
	return econ
}

func hoursInLease(leaseYears int) decimal.Decimal {
	return decimal.NewFromInt(int64(models.HoursPerYear) * int64(leaseYears))
}

var defaultCalculator = NewTermCalculator()

// Compute uses a shared calculator
func Compute(baseline, adjusted, upfront float64, leaseYears int) Economics {
	return defaultCalculator.Compute(baseline, adjusted, upfront, leaseYears)
}
