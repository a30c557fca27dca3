package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateConText = `RATE CONFIRMATION
Load #12345
From: Atlanta, GA
To: Chicago, IL
Pickup: 08/12/2025
Delivery: 08/14/2025
Weight: 42,000 lbs
Commodity: Frozen foods
Total Rate: $2,500.00
`

func TestRateConStrategy_DollarAmountToCents(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse(rateConText)

	data, ok := result.Data.(RateConData)
	require.True(t, ok)
	require.NotNil(t, data.RateCents)
	assert.Equal(t, int64(250000), *data.RateCents)
	assert.Equal(t, "Atlanta, GA", data.Origin)
	assert.Equal(t, "Chicago, IL", data.Destination)
	assert.True(t, result.Verified)
}

func TestRateConStrategy_VerifiedIgnoresConfidenceTier(t *testing.T) {
	s := NewRateConStrategy()

	// only the three core fields, nothing else that would raise the tier
	result := s.Parse("rate: $900\nfrom Atlanta, GA\nto Chicago, IL\n")

	data := result.Data.(RateConData)
	require.NotNil(t, data.RateCents)
	assert.NotEmpty(t, data.Origin)
	assert.NotEmpty(t, data.Destination)
	// verification holds regardless of where the score lands
	assert.True(t, result.Verified)
}

func TestRateConStrategy_NoRate_NotVerified(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse("From: Atlanta, GA\nTo: Chicago, IL\n")

	data := result.Data.(RateConData)
	assert.Nil(t, data.RateCents)
	assert.False(t, result.Verified)
	assert.Less(t, result.Confidence, MediumConfidenceThreshold)
}

func TestRateConStrategy_PicksHighestPlausibleAmount(t *testing.T) {
	s := NewRateConStrategy()

	// detention line amount must not shadow the linehaul rate
	result := s.Parse("Detention: $150.00\nTotal Rate: $2,500.00\n")

	data := result.Data.(RateConData)
	require.NotNil(t, data.RateCents)
	assert.Equal(t, int64(250000), *data.RateCents)
}

func TestRateConStrategy_RejectsImplausibleAmounts(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse("Total: $3\n")

	data := result.Data.(RateConData)
	assert.Nil(t, data.RateCents)
}

func TestRateConStrategy_DatesAndExtras(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse(rateConText)

	data := result.Data.(RateConData)
	require.NotNil(t, data.PickupDate)
	require.NotNil(t, data.DeliveryDate)
	assert.Equal(t, 12, data.PickupDate.Day())
	assert.Equal(t, 14, data.DeliveryDate.Day())
	require.NotNil(t, data.WeightLbs)
	assert.Equal(t, 42000.0, *data.WeightLbs)
	assert.NotEmpty(t, data.Commodity)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
}

func TestRateConStrategy_EmptyText_Floor(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse("")

	assert.Equal(t, FloorConfidence, result.Confidence)
	assert.False(t, result.Verified)
}

func TestRateConStrategy_OCRArtifactsInKeywords(t *testing.T) {
	s := NewRateConStrategy()

	result := s.Parse("0rigin: Houston, TX\ndestinat10n: Dallas, TX\nrate: $1,800\n")

	data := result.Data.(RateConData)
	assert.Equal(t, "Houston, TX", data.Origin)
	assert.Equal(t, "Dallas, TX", data.Destination)
	require.NotNil(t, data.RateCents)
	assert.Equal(t, int64(180000), *data.RateCents)
	assert.True(t, result.Verified)
}
