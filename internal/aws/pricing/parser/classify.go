package parser

import (
	"regexp"

	"riprice/internal/aws/pricing/services"
)

// Usage types that can have reserved capacity:
// BoxUsage/HeavyUsage/DedicatedUsage/HostBoxUsage for EC2, InstanceUsage/Multi-AZUsage for RDS,
// NodeUsage for ElastiCache, Node for Redshift, Write/ReadCapacityUnit for DynamoDB.
var reservableUsage = regexp.MustCompile(`(?i)(?:\bBoxUsage\b|HeavyUsage|DedicatedUsage|NodeUsage|Multi-AZUsage|InstanceUsage|HostBoxUsage|\bNode\b|\bWriteCapacityUnit|\bReadCapacityUnit)`)

// Classifier decides whether a price row describes reservable usage
type Classifier struct {
	registry *services.Registry
}

// NewClassifier creates a classifier over the given registry
func NewClassifier(registry *services.Registry) *Classifier {
	return &Classifier{registry: registry}
}

// IsReservable reports whether the row is a candidate for reserved pricing.
// Instance-based services additionally need an instance type.
func (c *Classifier) IsReservable(operation, usageType, serviceCode, instanceType string) bool {
	if operation == "" || serviceCode == "" {
		return false
	}
	if !reservableUsage.MatchString(usageType) {
		return false
	}
	if c.registry.IsInstanceBased(serviceCode) && instanceType == "" {
		return false
	}
	return true
}
