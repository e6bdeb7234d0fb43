package models

import (
	"fmt"
	"strings"
)

// HoursPerYear is the number of billable hours in a lease year.
const HoursPerYear = 8760

// OnDemandKey is the grouping key carried by every on-demand entry.
const OnDemandKey = "OnDemand"

// TermKind distinguishes pay-as-you-go rates from term commitments
type TermKind int

const (
	OnDemand TermKind = iota
	Reserved
)

func (t TermKind) String() string {
	if t == Reserved {
		return "Reserved"
	}
	return "OnDemand"
}

// ParseTermKind maps the price list "TermType" value. Empty text defaults to OnDemand.
func ParseTermKind(s string) (TermKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ondemand":
		return OnDemand, nil
	case "reserved":
		return Reserved, nil
	default:
		return OnDemand, fmt.Errorf("unknown term type %q", s)
	}
}

// PurchaseOption is the payment structure of a commitment
type PurchaseOption int

const (
	PurchaseOnDemand PurchaseOption = iota
	NoUpfront
	PartialUpfront
	AllUpfront
	HeavyUtilization
	MediumUtilization
	LightUtilization
)

var purchaseOptionNames = [...]string{
	PurchaseOnDemand:  "OnDemand",
	NoUpfront:         "NoUpfront",
	PartialUpfront:    "PartialUpfront",
	AllUpfront:        "AllUpfront",
	HeavyUtilization:  "HeavyUtilization",
	MediumUtilization: "MediumUtilization",
	LightUtilization:  "LightUtilization",
}

func (p PurchaseOption) String() string {
	if int(p) < 0 || int(p) >= len(purchaseOptionNames) {
		return "Unknown"
	}
	return purchaseOptionNames[p]
}

// ParsePurchaseOption accepts both "No Upfront" and "NoUpfront" spellings.
// Empty text defaults to OnDemand.
func ParsePurchaseOption(s string) (PurchaseOption, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if norm == "" {
		return PurchaseOnDemand, nil
	}
	for i, name := range purchaseOptionNames {
		if strings.ToLower(name) == norm {
			return PurchaseOption(i), nil
		}
	}
	return PurchaseOnDemand, fmt.Errorf("unknown purchase option %q", s)
}

// OfferingClass is the flexibility class of a commitment
type OfferingClass int

const (
	Standard OfferingClass = iota
	Convertible
)

func (o OfferingClass) String() string {
	if o == Convertible {
		return "Convertible"
	}
	return "Standard"
}

// ParseOfferingClass maps the price list "OfferingClass" value. Empty text defaults to Standard.
func ParseOfferingClass(s string) (OfferingClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return Standard, nil
	case "convertible":
		return Convertible, nil
	default:
		return Standard, fmt.Errorf("unknown offering class %q", s)
	}
}

// RawRecordEntry is one parsed price dimension, the unit of work for reconciliation.
type RawRecordEntry struct {
	Sku             string
	OfferTermCode   string
	TermKind        TermKind
	LeaseYears      int
	PricePerUnit    float64
	PurchaseOption  PurchaseOption
	OfferingClass   OfferingClass
	Tenancy         string
	InstanceType    string
	Platform        string
	OperatingSystem string
	Operation       string
	UsageType       string
	ServiceCode     string
	Region          string
	Description     string
	VCPU            int
	Memory          float64
}

// Key returns the grouping key "{lease}::{purchaseOption}::{offeringClass}",
// or OnDemandKey for on-demand entries.
func (e *RawRecordEntry) Key() string {
	if e.TermKind == OnDemand {
		return OnDemandKey
	}
	return GroupKey(e.LeaseYears, e.PurchaseOption, e.OfferingClass)
}

// GroupKey formats a grouping key.
func GroupKey(lease int, po PurchaseOption, oc OfferingClass) string {
	return fmt.Sprintf("%d::%s::%s", lease, po, oc)
}

// ComparisonTerm is the output record comparing one commitment offering to the on-demand rate.
type ComparisonTerm struct {
	Sku                  string  `json:"sku"`
	OfferTermCode        string  `json:"offerTermCode"`
	Platform             string  `json:"platform"`
	Tenancy              string  `json:"tenancy"`
	Operation            string  `json:"operation"`
	UsageType            string  `json:"usageType"`
	Region               string  `json:"region"`
	Service              string  `json:"service"`
	InstanceType         string  `json:"instanceType"`
	OperatingSystem      string  `json:"operatingSystem"`
	AdjustedPricePerUnit float64 `json:"adjustedPricePerUnit"`
	OnDemandHourlyCost   float64 `json:"onDemandHourlyCost"`
	BreakevenPercentage  float64 `json:"breakevenPercentage"`
	UpfrontFee           float64 `json:"upfrontFee"`
	LeaseTerm            int     `json:"leaseTerm"`
	PurchaseOption       string  `json:"purchaseOption"`
	OfferingClass        string  `json:"offeringClass"`
	TermType             string  `json:"termType"`
	Key                  string  `json:"key"`
	ReservedInstanceCost float64 `json:"reservedInstanceCost"`
	OnDemandCostForTerm  float64 `json:"onDemandCostForTerm"`
	CostSavings          float64 `json:"costSavings"`
	PercentSavings       float64 `json:"percentSavings"`
	VCPU                 int     `json:"vCPU"`
	Memory               float64 `json:"memory"`
}
