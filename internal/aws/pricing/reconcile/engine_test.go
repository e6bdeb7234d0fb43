package reconcile

import (
	"errors"
	"testing"

	"riprice/internal/aws/pricing/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onDemand(sku string, price float64, desc string) models.RawRecordEntry {
	return models.RawRecordEntry{
		Sku:           sku,
		OfferTermCode: "JRTCKXETXF",
		TermKind:      models.OnDemand,
		PricePerUnit:  price,
		Description:   desc,
		ServiceCode:   "AmazonEC2",
		UsageType:     "BoxUsage:m5.large",
		Region:        "us-east-1",
		InstanceType:  "m5.large",
		Platform:      "Linux",
		Tenancy:       "Shared",
	}
}

func reserved(sku, code string, lease int, po models.PurchaseOption, price float64, desc string) models.RawRecordEntry {
	e := onDemand(sku, price, desc)
	e.OfferTermCode = code
	e.TermKind = models.Reserved
	e.LeaseYears = lease
	e.PurchaseOption = po
	e.OfferingClass = models.Standard
	return e
}

func TestNoUpfrontScenario(t *testing.T) {
	entries := []models.RawRecordEntry{
		onDemand("ABC", 0.10, "$0.10 per hour"),
		reserved("ABC", "4NA7Y494T4", 1, models.NoUpfront, 0.06, "$0.06 per hour"),
	}
	result := NewEngine().Reconcile(entries)
	require.Empty(t, result.Errors)
	require.Len(t, result.Terms, 1)

	term := result.Terms[0]
	assert.Equal(t, "1::NoUpfront::Standard", term.Key)
	assert.Equal(t, "us-east-1", term.Region)
	assert.Equal(t, 0.0, term.UpfrontFee)
	assert.Equal(t, 0.06, term.AdjustedPricePerUnit)
	assert.Equal(t, 0.10, term.OnDemandHourlyCost)
	assert.InDelta(t, 0.6, term.BreakevenPercentage, 1e-9)
	assert.InDelta(t, 525.6, term.ReservedInstanceCost, 1e-9)
	assert.InDelta(t, 876, term.OnDemandCostForTerm, 1e-9)
	assert.InDelta(t, 350.4, term.CostSavings, 1e-9)
	assert.InDelta(t, 40, term.PercentSavings, 1e-9)
	assert.Equal(t, "Reserved", term.TermType)
	assert.Equal(t, "AmazonEC2", term.Service)
}

func TestUpfrontAndRecurringMatched(t *testing.T) {
	entries := []models.RawRecordEntry{
		reserved("ABC", "HU7G6KETJZ", 1, models.PartialUpfront, 300, "Upfront Fee"),
		onDemand("ABC", 0.10, "$0.10 per hour"),
		reserved("ABC", "HU7G6KETJZ", 1, models.PartialUpfront, 0.03, "$0.03 per hour"),
		reserved("ABC", "MZU6U2429S", 3, models.AllUpfront, 1500, "upfront fee"),
		reserved("ABC", "MZU6U2429S", 3, models.AllUpfront, 0, "USD 0.0 per hour"),
	}
	result := NewEngine().Reconcile(entries)
	require.Empty(t, result.Errors)
	require.Len(t, result.Terms, 2)

	partial := result.Terms[0]
	assert.Equal(t, "1::PartialUpfront::Standard", partial.Key)
	assert.Equal(t, 300.0, partial.UpfrontFee)
	assert.Equal(t, 0.03, partial.AdjustedPricePerUnit)
	assert.InDelta(t, 300+0.03*8760, partial.ReservedInstanceCost, 1e-9)

	all := result.Terms[1]
	assert.Equal(t, "3::AllUpfront::Standard", all.Key)
	assert.Equal(t, 1500.0, all.UpfrontFee)
	assert.Equal(t, 3, all.LeaseTerm)
}

func TestBaselineOnly(t *testing.T) {
	result := NewEngine().Reconcile([]models.RawRecordEntry{onDemand("ABC", 0.10, "per hour")})
	assert.Empty(t, result.Terms)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Products)
}

func TestUpfrontOnlyGroup(t *testing.T) {
	entries := []models.RawRecordEntry{
		onDemand("ABC", 0.10, "per hour"),
		reserved("ABC", "MZU6U2429S", 1, models.AllUpfront, 500, "Upfront Fee"),
		reserved("ABC", "4NA7Y494T4", 1, models.NoUpfront, 0.06, "per hour"),
	}
	result := NewEngine().Reconcile(entries)
	require.Len(t, result.Errors, 1)
	require.Len(t, result.Terms, 1)
	assert.Equal(t, "1::NoUpfront::Standard", result.Terms[0].Key)

	var mr *models.MissingRecurringFeeError
	require.True(t, errors.As(result.Errors[0], &mr))
	assert.Equal(t, "ABC", mr.Sku)
	assert.Equal(t, "MZU6U2429S", mr.OfferTermCode)
	assert.Equal(t, "1::AllUpfront::Standard", mr.Key)
}

func TestMissingBaseline(t *testing.T) {
	entries := []models.RawRecordEntry{
		onDemand("FREE", 0, "Free tier 25 WCU (free tier)"),
		reserved("FREE", "X", 1, models.HeavyUtilization, 0.0128, "per hour"),
		onDemand("OK", 0.10, "per hour"),
		reserved("OK", "Y", 1, models.NoUpfront, 0.06, "per hour"),
	}
	result := NewEngine().Reconcile(entries)
	require.Len(t, result.Errors, 1)
	var mb *models.MissingBaselineError
	require.True(t, errors.As(result.Errors[0], &mb))
	assert.Equal(t, "FREE", mb.Sku)

	require.Len(t, result.Terms, 1)
	assert.Equal(t, "OK", result.Terms[0].Sku)
}

func TestFreeTierSkippedForBaseline(t *testing.T) {
	entries := []models.RawRecordEntry{
		onDemand("DDB", 0, "$0.00 per hour for 25 units (FREE TIER)"),
		onDemand("DDB", 0.00065, "$0.00065 per WCU-hour"),
		reserved("DDB", "Z", 1, models.HeavyUtilization, 0.000128, "per hour"),
	}
	terms, errs := NewEngine().ReconcileProduct("DDB", entries)
	require.Empty(t, errs)
	require.Len(t, terms, 1)
	assert.Equal(t, 0.00065, terms[0].OnDemandHourlyCost)
}

func TestFirstBaselineWins(t *testing.T) {
	entries := []models.RawRecordEntry{
		onDemand("ABC", 0.10, "first"),
		onDemand("ABC", 0.20, "second"),
		reserved("ABC", "X", 1, models.NoUpfront, 0.05, "per hour"),
	}
	terms, _ := NewEngine().ReconcileProduct("ABC", entries)
	require.Len(t, terms, 1)
	assert.Equal(t, 0.10, terms[0].OnDemandHourlyCost)
}

func TestUniqueSkuKeyAndOrder(t *testing.T) {
	var entries []models.RawRecordEntry
	for _, sku := range []string{"S2", "S1", "S3"} {
		entries = append(entries,
			onDemand(sku, 0.1, "per hour"),
			reserved(sku, "A", 1, models.NoUpfront, 0.07, "per hour"),
			reserved(sku, "B", 3, models.NoUpfront, 0.05, "per hour"),
			reserved(sku, "A", 1, models.NoUpfront, 0.08, "per hour"),
		)
	}
	result := NewEngine().Reconcile(entries)
	require.Len(t, result.Terms, 6)

	seen := make(map[string]bool)
	for _, term := range result.Terms {
		id := term.Sku + "/" + term.Key
		assert.False(t, seen[id], "duplicate term %s", id)
		seen[id] = true
	}
	assert.Equal(t, "S2", result.Terms[0].Sku)
	assert.Equal(t, "S1", result.Terms[2].Sku)
	assert.Equal(t, "S3", result.Terms[4].Sku)
	// first recurring entry of a group wins
	assert.Equal(t, 0.07, result.Terms[0].AdjustedPricePerUnit)
}
