package parser

import (
	"fmt"
	"strings"
)

// Column identifies a price list field used by the parser
type Column int

const (
	ColSku Column = iota
	ColOfferTermCode
	ColTermType
	ColPriceDescription
	ColPricePerUnit
	ColLeaseContractLength
	ColPurchaseOption
	ColOfferingClass
	ColServiceCode
	ColLocation
	ColInstanceType
	ColVCPU
	ColMemory
	ColTenancy
	ColOperatingSystem
	ColLicenseModel
	ColUsageType
	ColOperation
	ColDatabaseEngine
	ColDatabaseEdition
	ColDeploymentOption
	ColPreInstalledSW
	ColCacheEngine
	ColGroup
	ColUsageFamily
	numColumns
)

// columnNames are the lower-cased header names of the price list CSV.
// The hierarchical form uses the same attribute names without spaces.
var columnNames = map[string]Column{
	"sku":                 ColSku,
	"offertermcode":       ColOfferTermCode,
	"termtype":            ColTermType,
	"pricedescription":    ColPriceDescription,
	"priceperunit":        ColPricePerUnit,
	"leasecontractlength": ColLeaseContractLength,
	"purchaseoption":      ColPurchaseOption,
	"offeringclass":       ColOfferingClass,
	"servicecode":         ColServiceCode,
	"location":            ColLocation,
	"instance type":       ColInstanceType,
	"vcpu":                ColVCPU,
	"memory":              ColMemory,
	"tenancy":             ColTenancy,
	"operating system":    ColOperatingSystem,
	"license model":       ColLicenseModel,
	"usagetype":           ColUsageType,
	"operation":           ColOperation,
	"database engine":     ColDatabaseEngine,
	"database edition":    ColDatabaseEdition,
	"deployment option":   ColDeploymentOption,
	"pre installed s/w":   ColPreInstalledSW,
	"cache engine":        ColCacheEngine,
	"group":               ColGroup,
	"usage family":        ColUsageFamily,
}

// requiredColumns must be present for a table to be parseable
var requiredColumns = []Column{ColSku, ColOperation, ColUsageType, ColServiceCode, ColPricePerUnit}

// Header maps columns to field positions. It is built once per table.
type Header struct {
	index [numColumns]int
}

// NewHeader indexes a header record. Unrecognized names are ignored.
func NewHeader(fields []string) (*Header, error) {
	h := &Header{}
	for i := range h.index {
		h.index[i] = -1
	}
	for i, name := range fields {
		col, ok := columnNames[strings.ToLower(strings.TrimSpace(name))]
		if ok && h.index[col] < 0 {
			h.index[col] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if h.index[col] < 0 {
			missing = append(missing, columnName(col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("price list header is missing columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

// Has reports whether the table carries the column
func (h *Header) Has(c Column) bool {
	return h.index[c] >= 0
}

func columnName(c Column) string {
	for name, col := range columnNames {
		if col == c {
			return name
		}
	}
	return fmt.Sprintf("column(%d)", int(c))
}

// Row is one data record bound to its header
type Row struct {
	Line   int
	header *Header
	fields []string
}

// NewRow binds a record to a header
func NewRow(h *Header, line int, fields []string) Row {
	return Row{Line: line, header: h, fields: fields}
}

// Lookup returns the trimmed field value and whether the column exists in this row
func (r Row) Lookup(c Column) (string, bool) {
	i := r.header.index[c]
	if i < 0 || i >= len(r.fields) {
		return "", false
	}
	return strings.TrimSpace(r.fields[i]), true
}

// Get returns the field value, "" when absent
func (r Row) Get(c Column) string {
	v, _ := r.Lookup(c)
	return v
}
