package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/pricing"
	"github.com/aws/aws-sdk-go/service/pricing/pricingiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPricing struct {
	pricingiface.PricingAPI
	mock.Mock
}

func (m *mockPricing) DescribeServicesPagesWithContext(ctx aws.Context, in *pricing.DescribeServicesInput, fn func(*pricing.DescribeServicesOutput, bool) bool, opts ...request.Option) error {
	args := m.Called(ctx, in)
	if pages, ok := args.Get(0).([]*pricing.DescribeServicesOutput); ok {
		for i, page := range pages {
			if !fn(page, i == len(pages)-1) {
				break
			}
		}
	}
	return args.Error(1)
}

func servicePage(codes ...string) *pricing.DescribeServicesOutput {
	out := &pricing.DescribeServicesOutput{}
	for _, c := range codes {
		out.Services = append(out.Services, &pricing.Service{ServiceCode: aws.String(c)})
	}
	return out
}

func TestDescribeServices(t *testing.T) {
	api := &mockPricing{}
	api.On("DescribeServicesPagesWithContext", mock.Anything, mock.MatchedBy(func(in *pricing.DescribeServicesInput) bool {
		return aws.StringValue(in.FormatVersion) == "aws_v1"
	})).Return([]*pricing.DescribeServicesOutput{
		servicePage("AmazonRDS", "AmazonEC2"),
		servicePage("AmazonElastiCache", ""),
	}, nil)

	codes, err := DescribeServices(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, []string{"AmazonEC2", "AmazonElastiCache", "AmazonRDS"}, codes)
	api.AssertExpectations(t)
}

func TestDescribeServicesError(t *testing.T) {
	api := &mockPricing{}
	api.On("DescribeServicesPagesWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	_, err := DescribeServices(context.Background(), api)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

type mockSTS struct {
	stsiface.STSAPI
	mock.Mock
}

func (m *mockSTS) GetCallerIdentity(in *sts.GetCallerIdentityInput) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(in)
	out, _ := args.Get(0).(*sts.GetCallerIdentityOutput)
	return out, args.Error(1)
}

func TestResolveRoleARN(t *testing.T) {
	api := &mockSTS{}
	api.On("GetCallerIdentity", mock.Anything).Return(&sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil)

	arn, err := ResolveRoleARN(api, "PriceListUpload")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:role/PriceListUpload", arn)

	arn, err = ResolveRoleARN(api, "arn:aws:iam::210987654321:role/Other")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::210987654321:role/Other", arn)
	api.AssertNumberOfCalls(t, "GetCallerIdentity", 1)
}
