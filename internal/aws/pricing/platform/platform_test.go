package platform

import (
	"errors"
	"testing"

	"riprice/internal/aws/pricing/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name    string
		service string
		attrs   *Attributes
		want    string
	}{
		{
			name:    "rds oracle byol multi-az",
			service: "AmazonRDS",
			attrs: &Attributes{
				DatabaseEngine:   "Oracle",
				DatabaseEdition:  "Standard Two",
				LicenseModel:     "Bring your own license",
				DeploymentOption: "multi-az",
			},
			want: "RDS Oracle SE2 BYOL Multi-AZ",
		},
		{
			name:    "rds sql server web single-az",
			service: "AmazonRDS",
			attrs: &Attributes{
				DatabaseEngine:   "SQL Server",
				DatabaseEdition:  "Web",
				LicenseModel:     "License included",
				DeploymentOption: "Single-AZ",
			},
			want: "RDS SQL Server Web",
		},
		{
			name:    "rds mysql",
			service: "AmazonRDS",
			attrs:   &Attributes{DatabaseEngine: "MySQL"},
			want:    "RDS MySQL",
		},
		{
			name:    "ec2 windows with sql",
			service: "AmazonEC2",
			attrs:   &Attributes{OperatingSystem: "Windows", PreInstalledSW: "SQL Std"},
			want:    "Windows with SQL Std",
		},
		{
			name:    "ec2 linux na software",
			service: "AmazonEC2",
			attrs:   &Attributes{OperatingSystem: "Linux", PreInstalledSW: "NA"},
			want:    "Linux",
		},
		{
			name:    "ec2 byol",
			service: "AmazonEC2",
			attrs:   &Attributes{OperatingSystem: "Windows", LicenseModel: "Bring your own license", PreInstalledSW: "NA"},
			want:    "Windows BYOL",
		},
		{"elasticache redis", "AmazonElastiCache", &Attributes{CacheEngine: "Redis"}, "ElastiCache Redis"},
		{"elasticache bare", "AmazonElastiCache", &Attributes{}, "ElastiCache"},
		{"dynamodb group", "AmazonDynamoDB", &Attributes{Group: "DDB-WriteUnits"}, "DDB-WriteUnits"},
		{"dynamodb default", "AmazonDynamoDB", &Attributes{}, "Amazon DynamoDB"},
		{"redshift family", "AmazonRedshift", &Attributes{UsageFamily: "Dense Compute"}, "Dense Compute"},
		{"redshift default", "AmazonRedshift", &Attributes{}, "Amazon Redshift"},
		{"elasticsearch", "AmazonES", &Attributes{}, "Amazon Elasticsearch"},
		{"no service code", "", &Attributes{}, "UNKNOWN"},
		{"no attributes", "AmazonRDS", nil, "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Describe(tt.service, tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeUnknownService(t *testing.T) {
	got, err := Describe("AmazonS3", &Attributes{})
	assert.Equal(t, "UNKNOWN SERVICE AmazonS3", got)

	var use *models.UnknownServiceError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, "AmazonS3", use.ServiceCode)
}
