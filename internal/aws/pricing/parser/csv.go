package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"riprice/internal/aws/pricing/config"
	"riprice/internal/aws/pricing/models"
	"riprice/internal/aws/pricing/platform"
	"riprice/internal/aws/pricing/services"
	"riprice/internal/logging"
)

// DefaultTenancy applies to services without a tenancy attribute
const DefaultTenancy = "Shared"

// Status is the outcome of parsing one row
type Status int

const (
	// Accepted rows produced an entry
	Accepted Status = iota
	// NotApplicable rows do not describe reservable usage
	NotApplicable
	// Malformed rows are reservable but could not be converted
	Malformed
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "Accepted"
	case NotApplicable:
		return "NotApplicable"
	default:
		return "Malformed"
	}
}

// RowResult is the outcome of ParseRow
type RowResult struct {
	Status Status
	Entry  *models.RawRecordEntry
	Err    error
}

// Result aggregates the entries and row errors of one price list
type Result struct {
	Entries       []models.RawRecordEntry
	Errors        []error
	Rows          int
	NotApplicable int
}

// Parser converts price list records into raw entries
type Parser struct {
	classifier *Classifier
	describer  *platform.Describer
	resolver   *config.RegionResolver
}

// NewParser creates a parser over the given registry
func NewParser(registry *services.Registry) *Parser {
	return &Parser{
		classifier: NewClassifier(registry),
		describer:  platform.NewDescriber(registry),
		resolver:   config.NewRegionResolver(),
	}
}

// ParseRow converts one tabular row
func (p *Parser) ParseRow(row Row) RowResult {
	operation := row.Get(ColOperation)
	usageType := row.Get(ColUsageType)
	serviceCode := row.Get(ColServiceCode)
	instanceType := row.Get(ColInstanceType)

	if !p.classifier.IsReservable(operation, usageType, serviceCode, instanceType) {
		return RowResult{Status: NotApplicable}
	}

	sku := row.Get(ColSku)
	offerTermCode := row.Get(ColOfferTermCode)
	malformed := func(field string, err error) RowResult {
		return RowResult{Status: Malformed, Err: &models.ParseError{
			Line:          row.Line,
			Sku:           sku,
			OfferTermCode: offerTermCode,
			Field:         field,
			Err:           err,
		}}
	}

	termKind, err := models.ParseTermKind(row.Get(ColTermType))
	if err != nil {
		return malformed("TermType", err)
	}
	purchaseOption, err := models.ParsePurchaseOption(row.Get(ColPurchaseOption))
	if err != nil {
		return malformed("PurchaseOption", err)
	}
	offeringClass, err := models.ParseOfferingClass(row.Get(ColOfferingClass))
	if err != nil {
		return malformed("OfferingClass", err)
	}

	price, err := ParsePrice(row.Get(ColPricePerUnit))
	if err != nil {
		logging.Debug("Unparseable price, using 0", map[string]interface{}{
			"sku":  sku,
			"line": row.Line,
		})
		price = 0
	}

	attrs := &platform.Attributes{
		OperatingSystem:  row.Get(ColOperatingSystem),
		LicenseModel:     row.Get(ColLicenseModel),
		DatabaseEngine:   row.Get(ColDatabaseEngine),
		DatabaseEdition:  row.Get(ColDatabaseEdition),
		DeploymentOption: row.Get(ColDeploymentOption),
		PreInstalledSW:   row.Get(ColPreInstalledSW),
		CacheEngine:      row.Get(ColCacheEngine),
		Group:            row.Get(ColGroup),
		UsageFamily:      row.Get(ColUsageFamily),
	}
	label := p.describe(serviceCode, attrs)

	entry := &models.RawRecordEntry{
		Sku:             sku,
		OfferTermCode:   offerTermCode,
		TermKind:        termKind,
		LeaseYears:      ParseLease(row.Get(ColLeaseContractLength)),
		PricePerUnit:    price,
		PurchaseOption:  purchaseOption,
		OfferingClass:   offeringClass,
		Tenancy:         orDefault(row.Get(ColTenancy), DefaultTenancy),
		InstanceType:    orDefault(instanceType, usageType),
		Platform:        label,
		OperatingSystem: operatingSystem(attrs.OperatingSystem, label, serviceCode),
		Operation:       operation,
		UsageType:       usageType,
		ServiceCode:     serviceCode,
		Region:          p.resolver.ResolveWithLocation(usageType, row.Get(ColLocation)),
		Description:     row.Get(ColPriceDescription),
		VCPU:            ParseVCPU(row.Get(ColVCPU)),
		Memory:          ParseMemory(row.Get(ColMemory)),
	}
	return RowResult{Status: Accepted, Entry: entry}
}

func (p *Parser) describe(serviceCode string, attrs *platform.Attributes) string {
	label, err := p.describer.Describe(serviceCode, attrs)
	if err != nil {
		logging.Debug("Using fallback platform label", map[string]interface{}{
			"service": serviceCode,
			"error":   err.Error(),
		})
	}
	return label
}

// ParseCSV reads a price list table whose first record is the header.
// Use SkipPreamble first on raw offer files.
func (p *Parser) ParseCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read price list header: %w", err)
	}
	header, err := NewHeader(record)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		if result.Rows%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.Rows++
				result.Errors = append(result.Errors, &models.ParseError{Line: perr.Line, Field: "record", Err: err})
				continue
			}
			return nil, fmt.Errorf("failed to read price list: %w", err)
		}
		result.Rows++
		line, _ := reader.FieldPos(0)
		result.add(p.ParseRow(NewRow(header, line, record)))
	}
	return result, nil
}

func (r *Result) add(rr RowResult) {
	switch rr.Status {
	case Accepted:
		r.Entries = append(r.Entries, *rr.Entry)
	case NotApplicable:
		r.NotApplicable++
	case Malformed:
		r.Errors = append(r.Errors, rr.Err)
	}
}

func operatingSystem(os, label, serviceCode string) string {
	if os != "" {
		return os
	}
	if label != "" {
		return label
	}
	return serviceCode
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
