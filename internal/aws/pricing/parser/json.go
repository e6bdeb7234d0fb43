package parser

import (
	"context"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"

	"riprice/internal/aws/pricing/models"
	"riprice/internal/aws/pricing/platform"
	"riprice/internal/logging"
)

const preferredCurrency = "USD"

// Offer is the bulk offer document: products by sku and terms by
// term type -> sku -> offer term code.
type Offer struct {
	FormatVersion   string                                `json:"formatVersion"`
	OfferCode       string                                `json:"offerCode"`
	Version         string                                `json:"version"`
	PublicationDate string                                `json:"publicationDate"`
	Products        map[string]Product                    `json:"products"`
	Terms           map[string]map[string]map[string]Term `json:"terms"`
}

// Product is one priceable configuration
type Product struct {
	Sku           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

// Term is one offer of a product
type Term struct {
	OfferTermCode   string                    `json:"offerTermCode"`
	Sku             string                    `json:"sku"`
	EffectiveDate   string                    `json:"effectiveDate"`
	PriceDimensions map[string]PriceDimension `json:"priceDimensions"`
	TermAttributes  map[string]string         `json:"termAttributes"`
}

// PriceDimension is one price component of a term
type PriceDimension struct {
	RateCode     string            `json:"rateCode"`
	Description  string            `json:"description"`
	BeginRange   string            `json:"beginRange"`
	EndRange     string            `json:"endRange"`
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
	AppliesTo    []string          `json:"appliesTo"`
}

// DecodeOffer reads a bulk offer document
func DecodeOffer(r io.Reader) (*Offer, error) {
	var offer Offer
	if err := json.NewDecoder(r).Decode(&offer); err != nil {
		return nil, fmt.Errorf("failed to decode offer document: %w", err)
	}
	return &offer, nil
}

// ParseJSON decodes an offer document and flattens it into entries
func (p *Parser) ParseJSON(ctx context.Context, r io.Reader) (*Result, error) {
	offer, err := DecodeOffer(r)
	if err != nil {
		return nil, err
	}
	return p.ParseOffer(ctx, offer)
}

// ParseOffer flattens every sku with reserved terms. Skus lacking a product
// or an on-demand term are skipped with a warning.
func (p *Parser) ParseOffer(ctx context.Context, offer *Offer) (*Result, error) {
	reserved := offer.Terms[models.Reserved.String()]
	onDemand := offer.Terms[models.OnDemand.String()]

	result := &Result{}
	for _, sku := range sortedKeys(reserved) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		product, ok := offer.Products[sku]
		if !ok {
			logging.Warn("No product matches reserved sku", map[string]interface{}{"sku": sku})
			continue
		}
		odTerms, ok := onDemand[sku]
		if !ok || len(odTerms) == 0 {
			logging.Warn("No on-demand term for reserved sku", map[string]interface{}{"sku": sku})
			continue
		}

		base := p.productEntry(sku, product)

		// Only the first on-demand term, in lexical offer term order, is the baseline.
		// Decoding into maps loses document order.
		firstOD := sortedKeys(odTerms)[0]
		p.addTerm(result, base, models.OnDemand, odTerms[firstOD])

		for _, code := range sortedKeys(reserved[sku]) {
			p.addTerm(result, base, models.Reserved, reserved[sku][code])
		}
	}
	return result, nil
}

// productEntry carries the product-level fields shared by all of its price dimensions
func (p *Parser) productEntry(sku string, product Product) models.RawRecordEntry {
	a := product.Attributes
	serviceCode := a["servicecode"]
	usageType := a["usagetype"]

	var attrs *platform.Attributes
	if a != nil {
		attrs = &platform.Attributes{
			OperatingSystem:  a["operatingSystem"],
			LicenseModel:     a["licenseModel"],
			DatabaseEngine:   a["databaseEngine"],
			DatabaseEdition:  a["databaseEdition"],
			DeploymentOption: a["deploymentOption"],
			PreInstalledSW:   a["preInstalledSw"],
			CacheEngine:      a["cacheEngine"],
			Group:            a["group"],
			UsageFamily:      a["usageFamily"],
		}
	}
	label := p.describe(serviceCode, attrs)

	return models.RawRecordEntry{
		Sku:             sku,
		Tenancy:         orDefault(a["tenancy"], DefaultTenancy),
		InstanceType:    orDefault(a["instanceType"], usageType),
		Platform:        label,
		OperatingSystem: operatingSystem(a["operatingSystem"], label, serviceCode),
		Operation:       a["operation"],
		UsageType:       usageType,
		ServiceCode:     serviceCode,
		Region:          p.resolver.ResolveWithLocation(usageType, a["location"]),
		VCPU:            ParseVCPU(a["vcpu"]),
		Memory:          ParseMemory(a["memory"]),
	}
}

func (p *Parser) addTerm(result *Result, base models.RawRecordEntry, kind models.TermKind, term Term) {
	result.Rows++
	parseErr := func(field string, err error) {
		result.Errors = append(result.Errors, &models.ParseError{
			Sku:           base.Sku,
			OfferTermCode: term.OfferTermCode,
			Field:         field,
			Err:           err,
		})
	}

	entry := base
	entry.OfferTermCode = term.OfferTermCode
	entry.TermKind = kind

	if kind == models.Reserved {
		po, err := models.ParsePurchaseOption(term.TermAttributes["PurchaseOption"])
		if err != nil {
			parseErr("PurchaseOption", err)
			return
		}
		oc, err := models.ParseOfferingClass(term.TermAttributes["OfferingClass"])
		if err != nil {
			parseErr("OfferingClass", err)
			return
		}
		entry.PurchaseOption = po
		entry.OfferingClass = oc
		entry.LeaseYears = ParseLease(term.TermAttributes["LeaseContractLength"])
	}

	for _, rateCode := range sortedKeys(term.PriceDimensions) {
		dim := term.PriceDimensions[rateCode]
		price, err := ParsePrice(pickCurrency(dim.PricePerUnit))
		if err != nil {
			parseErr("pricePerUnit", fmt.Errorf("rate %s: %w", rateCode, err))
			continue
		}
		e := entry
		e.PricePerUnit = price
		e.Description = dim.Description
		result.Entries = append(result.Entries, e)
	}
}

// pickCurrency prefers USD, otherwise the lexically first currency
func pickCurrency(prices map[string]string) string {
	if v, ok := prices[preferredCurrency]; ok {
		return v
	}
	keys := sortedKeys(prices)
	if len(keys) == 0 {
		return ""
	}
	return prices[keys[0]]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
