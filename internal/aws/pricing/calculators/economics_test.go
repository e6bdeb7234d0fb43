package calculators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name                        string
		baseline, adjusted, upfront float64
		lease                       int
		want                        Economics
	}{
		{
			name:     "no upfront one year",
			baseline: 0.10, adjusted: 0.06, lease: 1,
			want: Economics{BreakevenPercentage: 0.6, CommitmentCost: 525.6, BaselineCost: 876, Savings: 350.4, PercentSavings: 40},
		},
		{
			name:     "partial upfront three years",
			baseline: 0.20, adjusted: 0.05, upfront: 1000, lease: 3,
			want: Economics{BreakevenPercentage: 0.4402587519025875, CommitmentCost: 2314, BaselineCost: 5256, Savings: 2942, PercentSavings: 55.974},
		},
		{
			name:     "all upfront",
			baseline: 0.10, upfront: 500, lease: 1,
			want: Economics{BreakevenPercentage: 0.5707762557077626, CommitmentCost: 500, BaselineCost: 876, Savings: 376, PercentSavings: 42.922},
		},
		{
			name:     "commitment more expensive",
			baseline: 0.10, adjusted: 0.12, lease: 1,
			want: Economics{BreakevenPercentage: 1.2, CommitmentCost: 1051.2, BaselineCost: 876, Savings: -175.2, PercentSavings: -20},
		},
		{
			name:     "zero baseline",
			adjusted: 0.05, lease: 1,
			want: Economics{CommitmentCost: 438, Savings: -438},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.baseline, tt.adjusted, tt.upfront, tt.lease)
			assert.InDelta(t, tt.want.BreakevenPercentage, got.BreakevenPercentage, 1e-9)
			assert.InDelta(t, tt.want.CommitmentCost, got.CommitmentCost, 1e-9)
			assert.InDelta(t, tt.want.BaselineCost, got.BaselineCost, 1e-9)
			assert.InDelta(t, tt.want.Savings, got.Savings, 1e-9)
			assert.InDelta(t, tt.want.PercentSavings, got.PercentSavings, 1e-9)
		})
	}
}

func TestCostIdentity(t *testing.T) {
	cases := []struct {
		baseline, adjusted, upfront float64
		lease                       int
	}{
		{0.0116, 0.0072, 0, 1},
		{3.06, 1.227, 10750, 3},
		{0.017, 0, 89, 1},
	}
	for _, c := range cases {
		got := Compute(c.baseline, c.adjusted, c.upfront, c.lease)
		assert.InDelta(t, got.BaselineCost-got.CommitmentCost, got.Savings, 1e-9)
		assert.LessOrEqual(t, got.PercentSavings, 100.0)
		// three decimals
		assert.InDelta(t, math.Round(got.PercentSavings*1000), got.PercentSavings*1000, 1e-6)
	}
}
