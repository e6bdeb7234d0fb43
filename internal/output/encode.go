package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"riprice/internal/aws/pricing/models"
)

// Format is the file format of the generated output
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Header is the column order of delimited output
var Header = []string{
	"Sku", "OfferTermCode", "Platform", "Tenancy", "Operation", "UsageType", "Region",
	"Service", "InstanceType", "OperatingSystem", "AdjustedPricePerUnit", "OnDemandHourlyCost",
	"BreakevenPercentage", "UpfrontFee", "LeaseTerm", "PurchaseOption", "OfferingClass",
	"TermType", "Key", "ReservedInstanceCost", "OnDemandCostForTerm", "CostSavings",
	"PercentSavings", "vCPU", "Memory",
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Record returns the fields of t in Header order
func Record(t models.ComparisonTerm) []string {
	return []string{
		t.Sku,
		t.OfferTermCode,
		t.Platform,
		t.Tenancy,
		t.Operation,
		t.UsageType,
		t.Region,
		t.Service,
		t.InstanceType,
		t.OperatingSystem,
		formatFloat(t.AdjustedPricePerUnit),
		formatFloat(t.OnDemandHourlyCost),
		formatFloat(t.BreakevenPercentage),
		formatFloat(t.UpfrontFee),
		strconv.Itoa(t.LeaseTerm),
		t.PurchaseOption,
		t.OfferingClass,
		t.TermType,
		t.Key,
		formatFloat(t.ReservedInstanceCost),
		formatFloat(t.OnDemandCostForTerm),
		formatFloat(t.CostSavings),
		formatFloat(t.PercentSavings),
		strconv.Itoa(t.VCPU),
		formatFloat(t.Memory),
	}
}

// WriteDelimited writes the header and one line per term, separated by delim.
// Fields containing the delimiter or quotes are quoted.
func WriteDelimited(w io.Writer, terms []models.ComparisonTerm, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range terms {
		if err := cw.Write(Record(t)); err != nil {
			return fmt.Errorf("failed to write sku %s: %w", t.Sku, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// WriteJSON writes terms as an indented JSON array
func WriteJSON(w io.Writer, terms []models.ComparisonTerm) error {
	if terms == nil {
		terms = []models.ComparisonTerm{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(terms); err != nil {
		return fmt.Errorf("failed to encode terms: %w", err)
	}
	return nil
}

// Encode writes terms in the given format
func Encode(w io.Writer, terms []models.ComparisonTerm, format Format, delim rune) error {
	switch format {
	case FormatCSV, "":
		return WriteDelimited(w, terms, delim)
	case FormatJSON:
		return WriteJSON(w, terms)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
