package services

import (
	"fmt"
	"sort"
	"strings"
)

// Tag identifies the family of a reservable service and selects its platform strategy
type Tag int

const (
	Unknown Tag = iota
	Compute
	RelationalDatabase
	InMemoryCache
	DocumentStore
	AnalyticsWarehouse
	SearchIndex
)

func (t Tag) String() string {
	switch t {
	case Compute:
		return "Compute"
	case RelationalDatabase:
		return "RelationalDatabase"
	case InMemoryCache:
		return "InMemoryCache"
	case DocumentStore:
		return "DocumentStore"
	case AnalyticsWarehouse:
		return "AnalyticsWarehouse"
	case SearchIndex:
		return "SearchIndex"
	default:
		return "Unknown"
	}
}

// Service describes one service with reserved capacity offerings
type Service struct {
	// Code is the price list service code, e.g. AmazonRDS
	Code string
	// Name is a human-readable label
	Name string
	Tag  Tag
	// InstanceBased services require an instance type on every reservable row
	InstanceBased bool
	// OptIn services are skipped unless explicitly requested
	OptIn bool
}

// Registry maintains the closed set of reservable services
type Registry struct {
	services map[string]Service
}

// NewRegistry creates an empty service registry
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// Register adds a service to the registry
func (r *Registry) Register(s Service) error {
	if s.Code == "" {
		return fmt.Errorf("service code is required")
	}
	key := strings.ToLower(s.Code)
	if _, exists := r.services[key]; exists {
		return fmt.Errorf("service '%s' already registered", s.Code)
	}
	r.services[key] = s
	return nil
}

// Lookup retrieves a service by code, case-insensitively
func (r *Registry) Lookup(code string) (Service, bool) {
	s, ok := r.services[strings.ToLower(strings.TrimSpace(code))]
	return s, ok
}

// Get is Lookup with an error for unknown codes
func (r *Registry) Get(code string) (Service, error) {
	if s, ok := r.Lookup(code); ok {
		return s, nil
	}
	return Service{}, fmt.Errorf("no reservable service found for code '%s'", code)
}

// TagOf returns the tag of a service code, Unknown if unregistered
func (r *Registry) TagOf(code string) Tag {
	s, _ := r.Lookup(code)
	return s.Tag
}

// IsInstanceBased reports whether rows of the service must carry an instance type
func (r *Registry) IsInstanceBased(code string) bool {
	s, _ := r.Lookup(code)
	return s.InstanceBased
}

// List returns all registered services sorted by code
func (r *Registry) List() []Service {
	out := make([]Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Codes returns the service codes to process. Opt-in services are included
// only when includeOptIn is set.
func (r *Registry) Codes(includeOptIn bool) []string {
	var codes []string
	for _, s := range r.List() {
		if s.OptIn && !includeOptIn {
			continue
		}
		codes = append(codes, s.Code)
	}
	return codes
}

// DefaultRegistry holds every service with reserved offerings in the price list.
// EC2 is opt-in because its offer file is large enough to need a dedicated run.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	for _, s := range []Service{
		{Code: "AmazonEC2", Name: "Amazon EC2", Tag: Compute, InstanceBased: true, OptIn: true},
		{Code: "AmazonRDS", Name: "Amazon RDS", Tag: RelationalDatabase, InstanceBased: true},
		{Code: "AmazonElastiCache", Name: "Amazon ElastiCache", Tag: InMemoryCache, InstanceBased: true},
		{Code: "AmazonRedshift", Name: "Amazon Redshift", Tag: AnalyticsWarehouse, InstanceBased: true},
		{Code: "AmazonDynamoDB", Name: "Amazon DynamoDB", Tag: DocumentStore},
		{Code: "AmazonES", Name: "Amazon Elasticsearch Service", Tag: SearchIndex, InstanceBased: true},
	} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}()
