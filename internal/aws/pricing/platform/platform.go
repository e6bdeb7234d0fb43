// Package platform derives the configuration label ("RDS MySQL Multi-AZ",
// "Windows BYOL with SQL Std", "ElastiCache Redis") for a price list product.
package platform

import (
	"strings"

	"riprice/internal/aws/pricing/models"
	"riprice/internal/aws/pricing/services"
)

// Unknown is returned when a product has no service code or no attributes.
const Unknown = "UNKNOWN"

const byolLicense = "bring your own license"

// Attributes holds the product attributes that feed the platform label
type Attributes struct {
	OperatingSystem  string
	LicenseModel     string
	DatabaseEngine   string
	DatabaseEdition  string
	DeploymentOption string
	PreInstalledSW   string
	CacheEngine      string
	Group            string
	UsageFamily      string
}

type strategy func(a *Attributes) string

var strategies = map[services.Tag]strategy{
	services.RelationalDatabase: relationalDatabase,
	services.Compute:            compute,
	services.InMemoryCache:      inMemoryCache,
	services.DocumentStore:      documentStore,
	services.AnalyticsWarehouse: analyticsWarehouse,
	services.SearchIndex:        searchIndex,
}

var editionSuffixes = map[string]string{
	"enterprise":   " EE",
	"standard":     " SE",
	"standard one": " SE1",
	"standard two": " SE2",
	"web":          " Web",
}

// Describer builds platform labels using a service registry
type Describer struct {
	registry *services.Registry
}

// NewDescriber creates a describer over the given registry
func NewDescriber(registry *services.Registry) *Describer {
	return &Describer{registry: registry}
}

// Describe returns the platform label. An unregistered service yields
// "UNKNOWN SERVICE <code>" together with a non-fatal *models.UnknownServiceError.
func (d *Describer) Describe(serviceCode string, attrs *Attributes) (string, error) {
	if serviceCode == "" || attrs == nil {
		return Unknown, nil
	}
	fn, ok := strategies[d.registry.TagOf(serviceCode)]
	if !ok {
		return "UNKNOWN SERVICE " + serviceCode, &models.UnknownServiceError{ServiceCode: serviceCode}
	}
	return fn(attrs), nil
}

var defaultDescriber = NewDescriber(services.DefaultRegistry)

// Describe labels a product using the default service registry
func Describe(serviceCode string, attrs *Attributes) (string, error) {
	return defaultDescriber.Describe(serviceCode, attrs)
}

func relationalDatabase(a *Attributes) string {
	var b strings.Builder
	b.WriteString("RDS ")
	b.WriteString(a.DatabaseEngine)
	b.WriteString(editionSuffixes[strings.ToLower(strings.TrimSpace(a.DatabaseEdition))])
	if isBYOL(a.LicenseModel) {
		b.WriteString(" BYOL")
	}
	if strings.EqualFold(strings.TrimSpace(a.DeploymentOption), "Multi-AZ") {
		b.WriteString(" Multi-AZ")
	}
	return b.String()
}

func compute(a *Attributes) string {
	var b strings.Builder
	b.WriteString(a.OperatingSystem)
	if isBYOL(a.LicenseModel) {
		b.WriteString(" BYOL")
	}
	if sw := strings.TrimSpace(a.PreInstalledSW); sw != "" && !strings.EqualFold(sw, "NA") {
		b.WriteString(" with ")
		b.WriteString(sw)
	}
	return b.String()
}

func inMemoryCache(a *Attributes) string {
	if a.CacheEngine == "" {
		return "ElastiCache"
	}
	return "ElastiCache " + a.CacheEngine
}

func documentStore(a *Attributes) string {
	if a.Group != "" {
		return a.Group
	}
	return "Amazon DynamoDB"
}

func analyticsWarehouse(a *Attributes) string {
	if a.UsageFamily != "" {
		return a.UsageFamily
	}
	return "Amazon Redshift"
}

func searchIndex(*Attributes) string {
	return "Amazon Elasticsearch"
}

func isBYOL(licenseModel string) bool {
	return strings.EqualFold(strings.TrimSpace(licenseModel), byolLicense)
}
