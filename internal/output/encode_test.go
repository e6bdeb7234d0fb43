package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riprice/internal/aws/pricing/models"
)

func sampleTerm() models.ComparisonTerm {
	return models.ComparisonTerm{
		Sku:                  "SKU1",
		OfferTermCode:        "4NA7Y494T4",
		Platform:             "Linux/UNIX",
		Tenancy:              "Shared",
		Operation:            "RunInstances",
		UsageType:            "BoxUsage:m5.large",
		Region:               "us-east-1",
		Service:              "AmazonEC2",
		InstanceType:         "m5.large",
		OperatingSystem:      "Linux",
		AdjustedPricePerUnit: 0.06,
		OnDemandHourlyCost:   0.1,
		BreakevenPercentage:  0.6,
		LeaseTerm:            1,
		PurchaseOption:       "No Upfront",
		OfferingClass:        "standard",
		TermType:             "Reserved",
		Key:                  "1::NoUpfront::standard",
		ReservedInstanceCost: 525.6,
		OnDemandCostForTerm:  876,
		CostSavings:          350.4,
		PercentSavings:       40,
		VCPU:                 2,
		Memory:               8,
	}
}

func TestWriteDelimited(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, []models.ComparisonTerm{sampleTerm()}, '|'))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Header, "|"), lines[0])
	assert.Equal(t,
		"SKU1|4NA7Y494T4|Linux/UNIX|Shared|RunInstances|BoxUsage:m5.large|us-east-1|AmazonEC2|m5.large|Linux|0.06|0.1|0.6|0|1|No Upfront|standard|Reserved|1::NoUpfront::standard|525.6|876|350.4|40|2|8",
		lines[1])
}

func TestWriteDelimitedQuotesDelimiter(t *testing.T) {
	term := sampleTerm()
	term.Platform = "Linux,SQL Web"

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, []models.ComparisonTerm{term}, ','))
	assert.Contains(t, buf.String(), `"Linux,SQL Web"`)
}

func TestHeaderMatchesRecord(t *testing.T) {
	assert.Len(t, Record(sampleTerm()), len(Header))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []models.ComparisonTerm{sampleTerm()}))

	var decoded []models.ComparisonTerm
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, sampleTerm(), decoded[0])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEncodeUnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, nil, Format("xml"), '|'))
}
