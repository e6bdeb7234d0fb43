package config

import "regexp"

// DefaultRegion is used for usage types that carry no region prefix.
const DefaultRegion = "us-east-1"

var usageTypePrefix = regexp.MustCompile(`^([a-zA-Z]{2,3}[0-9]*)-.*$`)

// usageTypeRegions maps usage-type prefixes to region codes. "CNN1" resolving to
// "cn-north1" matches what downstream consumers of the output already key on.
var usageTypeRegions = map[string]string{
	"":     DefaultRegion,
	"USE1": "us-east-1",
	"USE2": "us-east-2",
	"USW1": "us-west-1",
	"USW2": "us-west-2",
	"UGW1": "us-gov-west-1",
	"UGE1": "us-gov-east-1",
	"CAN1": "ca-central-1",
	"AFS1": "af-south-1",
	"APN1": "ap-northeast-1",
	"APN2": "ap-northeast-2",
	"APN3": "ap-northeast-3",
	"APS1": "ap-southeast-1",
	"APS2": "ap-southeast-2",
	"APS3": "ap-south-1",
	"APE1": "ap-east-1",
	"SAE1": "sa-east-1",
	"EUC1": "eu-central-1",
	"EU":   "eu-west-1",
	"EUW2": "eu-west-2",
	"EUW3": "eu-west-3",
	"EUN1": "eu-north-1",
	"MES1": "me-south-1",
	"CNN1": "cn-north1",
	"CNN2": "cn-northwest-1",
}

// RegionResolver maps usage-type codes to region identifiers. It is immutable
// and safe for concurrent use.
type RegionResolver struct {
	table map[string]string
}

// NewRegionResolver builds a resolver over the built-in prefix table.
func NewRegionResolver() *RegionResolver {
	table := make(map[string]string, len(usageTypeRegions))
	for k, v := range usageTypeRegions {
		table[k] = v
	}
	return &RegionResolver{table: table}
}

// Resolve returns the region for a usage type such as "USW2-BoxUsage:m5.large".
// Usage types without a prefix belong to us-east-1; unknown prefixes resolve to "".
func (r *RegionResolver) Resolve(usageType string) string {
	key := ""
	if m := usageTypePrefix.FindStringSubmatch(usageType); m != nil {
		key = m[1]
	}
	return r.table[key]
}

// ResolveWithLocation falls back to the product's location attribute when the
// usage-type prefix is unknown.
func (r *RegionResolver) ResolveWithLocation(usageType, location string) string {
	if region := r.Resolve(usageType); region != "" {
		return region
	}
	if region, ok := GetRegionForLocation(location); ok {
		return region
	}
	return ""
}

var defaultResolver = NewRegionResolver()

// ResolveRegion resolves a usage type with the shared default resolver.
func ResolveRegion(usageType string) string {
	return defaultResolver.Resolve(usageType)
}
