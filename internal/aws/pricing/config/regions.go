package config

import "strings"

// RegionToLocation maps AWS region codes to the location names used by the price list
var RegionToLocation = map[string]string{
	// US Regions
	"us-gov-east-1": "AWS GovCloud (US-East)",
	"us-gov-west-1": "AWS GovCloud (US-West)",
	"us-east-1":     "US East (N. Virginia)",
	"us-east-2":     "US East (Ohio)",
	"us-west-1":     "US West (N. California)",
	"us-west-2":     "US West (Oregon)",

	// Canada
	"ca-central-1": "Canada (Central)",
	"ca-west-1":    "Canada West (Calgary)",

	// South America
	"sa-east-1": "South America (Sao Paulo)",

	// Europe
	"eu-central-1": "EU (Frankfurt)",
	"eu-central-2": "Europe (Zurich)",
	"eu-west-1":    "EU (Ireland)",
	"eu-west-2":    "EU (London)",
	"eu-west-3":    "EU (Paris)",
	"eu-south-1":   "EU (Milan)",
	"eu-south-2":   "Europe (Spain)",
	"eu-north-1":   "EU (Stockholm)",

	// Africa
	"af-south-1": "Africa (Cape Town)",

	// Middle East
	"me-south-1":   "Middle East (Bahrain)",
	"me-central-1": "Middle East (UAE)",
	"il-central-1": "Israel (Tel Aviv)",

	// Asia Pacific
	"ap-east-1":      "Asia Pacific (Hong Kong)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-south-2":     "Asia Pacific (Hyderabad)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-southeast-3": "Asia Pacific (Jakarta)",
	"ap-southeast-4": "Asia Pacific (Melbourne)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-northeast-3": "Asia Pacific (Osaka)",

	// China
	"cn-north-1":     "China (Beijing)",
	"cn-northwest-1": "China (Ningxia)",
}

var locationToRegion = buildLocationIndex()

// Newer price lists spell "EU (x)" as "Europe (x)"; both resolve.
func buildLocationIndex() map[string]string {
	idx := make(map[string]string, len(RegionToLocation)*2)
	for region, location := range RegionToLocation {
		key := strings.ToLower(location)
		idx[key] = region
		if strings.HasPrefix(key, "eu (") {
			idx["europe ("+strings.TrimPrefix(key, "eu (")] = region
		}
	}
	return idx
}

// GetLocationForRegion returns the location name for a given AWS region
func GetLocationForRegion(region string) (string, bool) {
	location, ok := RegionToLocation[region]
	return location, ok
}

// GetRegionForLocation returns the region code for a price list location name
func GetRegionForLocation(location string) (string, bool) {
	region, ok := locationToRegion[strings.ToLower(strings.TrimSpace(location))]
	return region, ok
}
