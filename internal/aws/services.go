package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/pricing"
	"github.com/aws/aws-sdk-go/service/pricing/pricingiface"
)

// NewPricingClient creates a Price List query API client in the pricing region
func NewPricingClient(sess *session.Session) pricingiface.PricingAPI {
	return pricing.New(sess, aws.NewConfig().WithRegion(PricingRegion))
}

// DescribeServices returns the sorted service codes known to the Price List API
func DescribeServices(ctx context.Context, api pricingiface.PricingAPI) ([]string, error) {
	var codes []string

	err := api.DescribeServicesPagesWithContext(ctx, &pricing.DescribeServicesInput{
		FormatVersion: aws.String("aws_v1"),
	}, func(page *pricing.DescribeServicesOutput, lastPage bool) bool {
		for _, svc := range page.Services {
			if code := aws.StringValue(svc.ServiceCode); code != "" {
				codes = append(codes, code)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe price list services: %w", err)
	}

	sort.Strings(codes)
	return codes, nil
}
