// Package reconcile turns the raw price dimensions of a price list into
// comparison terms, one per commitment offering of each product.
package reconcile

import (
	"strings"

	"riprice/internal/aws/pricing/calculators"
	"riprice/internal/aws/pricing/models"
)

const (
	freeTierMarker     = "(free tier)"
	upfrontDescription = "upfront fee"
)

// Result is the outcome of reconciling one price list
type Result struct {
	Terms  []models.ComparisonTerm
	Errors []error
	// Products is the number of distinct skus seen
	Products int
}

// Engine groups entries by product and matches commitment components
type Engine struct {
	calc *calculators.TermCalculator
}

// NewEngine creates a reconciliation engine
func NewEngine() *Engine {
	return &Engine{calc: calculators.NewTermCalculator()}
}

// Reconcile groups entries by sku in first-appearance order and reconciles each product.
// Failures are collected and the remaining products are still processed.
func (e *Engine) Reconcile(entries []models.RawRecordEntry) *Result {
	var order []string
	bySku := make(map[string][]models.RawRecordEntry)
	for _, entry := range entries {
		if _, seen := bySku[entry.Sku]; !seen {
			order = append(order, entry.Sku)
		}
		bySku[entry.Sku] = append(bySku[entry.Sku], entry)
	}

	result := &Result{Products: len(order)}
	for _, sku := range order {
		terms, errs := e.ReconcileProduct(sku, bySku[sku])
		result.Terms = append(result.Terms, terms...)
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

// ReconcileProduct builds the comparison terms of one sku. Without a baseline no
// terms are produced; a group without a recurring component is skipped.
func (e *Engine) ReconcileProduct(sku string, entries []models.RawRecordEntry) ([]models.ComparisonTerm, []error) {
	baseline := findBaseline(entries)
	if baseline == nil {
		return nil, []error{&models.MissingBaselineError{Sku: sku}}
	}

	var terms []models.ComparisonTerm
	var errs []error
	for _, group := range partition(entries) {
		recurring, upfront := matchComponents(group.entries)
		if recurring == nil {
			errs = append(errs, &models.MissingRecurringFeeError{
				Sku:           sku,
				OfferTermCode: group.entries[0].OfferTermCode,
				Key:           group.key,
			})
			continue
		}

		upfrontFee := 0.0
		if upfront != nil {
			upfrontFee = upfront.PricePerUnit
		}
		terms = append(terms, e.buildTerm(&group.entries[0], baseline, recurring, upfrontFee))
	}
	return terms, errs
}

func (e *Engine) buildTerm(first, baseline, recurring *models.RawRecordEntry, upfrontFee float64) models.ComparisonTerm {
	econ := e.calc.Compute(baseline.PricePerUnit, recurring.PricePerUnit, upfrontFee, first.LeaseYears)
	return models.ComparisonTerm{
		Sku:                  first.Sku,
		OfferTermCode:        first.OfferTermCode,
		Platform:             first.Platform,
		Tenancy:              first.Tenancy,
		Operation:            first.Operation,
		UsageType:            first.UsageType,
		Region:               first.Region,
		Service:              first.ServiceCode,
		InstanceType:         first.InstanceType,
		OperatingSystem:      first.OperatingSystem,
		AdjustedPricePerUnit: recurring.PricePerUnit,
		OnDemandHourlyCost:   baseline.PricePerUnit,
		BreakevenPercentage:  econ.BreakevenPercentage,
		UpfrontFee:           upfrontFee,
		LeaseTerm:            first.LeaseYears,
		PurchaseOption:       first.PurchaseOption.String(),
		OfferingClass:        first.OfferingClass.String(),
		TermType:             first.TermKind.String(),
		Key:                  first.Key(),
		ReservedInstanceCost: econ.CommitmentCost,
		OnDemandCostForTerm:  econ.BaselineCost,
		CostSavings:          econ.Savings,
		PercentSavings:       econ.PercentSavings,
		VCPU:                 first.VCPU,
		Memory:               first.Memory,
	}
}

// findBaseline returns the first on-demand entry that is not a free tier dimension
func findBaseline(entries []models.RawRecordEntry) *models.RawRecordEntry {
	for i := range entries {
		if entries[i].TermKind == models.OnDemand && !isFreeTier(entries[i].Description) {
			return &entries[i]
		}
	}
	return nil
}

type offeringGroup struct {
	key     string
	entries []models.RawRecordEntry
}

// partition splits reserved entries by grouping key, keeping first-appearance order
func partition(entries []models.RawRecordEntry) []offeringGroup {
	var groups []offeringGroup
	index := make(map[string]int)
	for _, entry := range entries {
		if entry.TermKind != models.Reserved {
			continue
		}
		key := entry.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, offeringGroup{key: key})
		}
		groups[i].entries = append(groups[i].entries, entry)
	}
	return groups
}

// matchComponents returns the first recurring entry and the first upfront entry of a group
func matchComponents(group []models.RawRecordEntry) (recurring, upfront *models.RawRecordEntry) {
	for i := range group {
		if isUpfront(group[i].Description) {
			if upfront == nil {
				upfront = &group[i]
			}
		} else if recurring == nil {
			recurring = &group[i]
		}
	}
	return recurring, upfront
}

func isFreeTier(description string) bool {
	return strings.Contains(strings.ToLower(description), freeTierMarker)
}

func isUpfront(description string) bool {
	return strings.EqualFold(strings.TrimSpace(description), upfrontDescription)
}
