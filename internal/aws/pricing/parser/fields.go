package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Matches "3,840 GiB" after commas are removed
var memoryPattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.?[0-9]+)?)\s+GiB\s*$`)

var leadingInt = regexp.MustCompile(`^\s*([0-9]+)`)

// ParseMemory returns the GiB amount of a memory attribute, 0 when it does not parse
func ParseMemory(s string) float64 {
	m := memoryPattern.FindStringSubmatch(strings.ReplaceAll(s, ",", ""))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseLease returns the leading year count of "1yr" or "3 yr", 0 otherwise
func ParseLease(s string) int {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

// ParseVCPU returns the vCPU count, 0 when absent or not an integer
func ParseVCPU(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// ParsePrice parses a unit price. Price list values such as "0.0000000000"
// carry more precision than float64 text round-trips, so they go through decimal.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %s", s)
	}
	return d.InexactFloat64(), nil
}
