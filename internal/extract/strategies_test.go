package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loaddocs/internal/domain"
)

func TestRegistry_CoversEveryDocumentType(t *testing.T) {
	r := NewRegistry()
	for _, dt := range domain.AllDocumentTypes {
		s, err := r.Get(dt)
		require.NoError(t, err)
		assert.Equal(t, dt, s.Type())
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(domain.DocumentType("BOL"))
	assert.ErrorIs(t, err, domain.ErrUnknownDocumentType)
}

func TestAllStrategies_EmptyText_FloorAndBounds(t *testing.T) {
	r := NewRegistry()
	for _, dt := range domain.AllDocumentTypes {
		s, err := r.Get(dt)
		require.NoError(t, err)

		result := s.Parse("")
		assert.Equal(t, FloorConfidence, result.Confidence, string(dt))
		assert.False(t, result.Verified, string(dt))
		assert.NotNil(t, result.Data, string(dt))
	}
}

func TestAllStrategies_ConfidenceWithinBounds(t *testing.T) {
	inputs := []string{
		"",
		"garbage text with no structure at all",
		licenseText,
		rateConText,
		insuranceText,
		agreementText,
		deliveryText,
		invoiceText,
		lumperText,
	}
	r := NewRegistry()
	for _, dt := range domain.AllDocumentTypes {
		s, _ := r.Get(dt)
		for _, in := range inputs {
			result := s.Parse(in)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		}
	}
}

const insuranceText = `CERTIFICATE OF LIABILITY INSURANCE
Policy Number: PGR-9876543
Carrier: Progressive
General Liability: $1,000,000
Auto Liability: $1M
Effective: 01/01/2025
Expires: 01/01/2027
`

func TestInsuranceStrategy_FullCertificate(t *testing.T) {
	s := NewInsuranceStrategy()
	s.now = fixedClock(2025, time.June, 1)

	result := s.Parse(insuranceText)

	data, ok := result.Data.(InsuranceData)
	require.True(t, ok)
	assert.Equal(t, "PGR-9876543", data.PolicyNumber)
	assert.Contains(t, data.InsuranceCompany, "Progressive")
	require.NotNil(t, data.GeneralLiabilityCents)
	assert.Equal(t, int64(100_000_000), *data.GeneralLiabilityCents)
	require.NotNil(t, data.AutoLiabilityCents)
	assert.Equal(t, int64(100_000_000), *data.AutoLiabilityCents)
	require.NotNil(t, data.ExpirationDate)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
	assert.True(t, result.Verified)
}

func TestInsuranceStrategy_ExpiredPolicy_NotVerified(t *testing.T) {
	s := NewInsuranceStrategy()
	s.now = fixedClock(2027, time.March, 1)

	result := s.Parse(insuranceText)

	assert.False(t, result.Verified)
}

func TestInsuranceStrategy_SameDayExpiry_NotVerified(t *testing.T) {
	s := NewInsuranceStrategy()
	// coverage must outlast today, not merely reach it
	s.now = fixedClock(2027, time.January, 1)

	result := s.Parse(insuranceText)

	assert.False(t, result.Verified)
}

func TestInsuranceStrategy_PolicyWithoutAmount_CappedBelowMedium(t *testing.T) {
	s := NewInsuranceStrategy()

	result := s.Parse("Policy Number: PGR-9876543\nCarrier: Progressive\n")

	data := result.Data.(InsuranceData)
	assert.NotEmpty(t, data.PolicyNumber)
	assert.Nil(t, data.GeneralLiabilityCents)
	assert.Nil(t, data.AutoLiabilityCents)
	assert.Less(t, result.Confidence, MediumConfidenceThreshold)
	assert.False(t, result.Verified)
}

func TestInsuranceStrategy_AmountWithoutPolicy_CappedBelowMedium(t *testing.T) {
	s := NewInsuranceStrategy()

	result := s.Parse("Carrier: Progressive\nGeneral Liability: $1,000,000\nAuto Liability: $2,000,000\nEffective: 01/01/2025\n")

	data := result.Data.(InsuranceData)
	assert.Empty(t, data.PolicyNumber)
	assert.Less(t, result.Confidence, MediumConfidenceThreshold)
	assert.False(t, result.Verified)
}

const agreementText = `DRIVER AGREEMENT
I agree to the terms and conditions set forth in this contract.
Signature: John Driver
Date Signed: 03/15/2025
`

func TestAgreementStrategy_SignedAgreement_HighTier(t *testing.T) {
	s := NewAgreementStrategy()

	result := s.Parse(agreementText)

	data, ok := result.Data.(AgreementData)
	require.True(t, ok)
	assert.True(t, data.SignatureDetected)
	assert.NotEmpty(t, data.AgreementType)
	require.NotNil(t, data.SigningDate)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
	assert.True(t, result.Verified)
}

func TestAgreementStrategy_NoSignature_NotVerified(t *testing.T) {
	s := NewAgreementStrategy()

	result := s.Parse("Transportation Agreement\nliability coverage limit: $1,000,000\ntermination requires 30 days notice\n")

	data := result.Data.(AgreementData)
	assert.False(t, data.SignatureDetected)
	assert.Less(t, result.Confidence, HighConfidenceThreshold)
	assert.False(t, result.Verified)
}

func TestAgreementStrategy_VerificationRequiresHighTier(t *testing.T) {
	s := NewAgreementStrategy()

	// a lone signature mark without type or date stays below the high tier
	result := s.Parse("Signature: ____________\n")

	data := result.Data.(AgreementData)
	assert.True(t, data.SignatureDetected)
	assert.Less(t, result.Confidence, HighConfidenceThreshold)
	assert.False(t, result.Verified)
}

const deliveryText = `PROOF OF DELIVERY
Shipment delivered in full.
Received by: Jane Receiver
Delivery Date: 08/14/2025
Notes: Received in good condition at dock 5
`

func TestDeliveryStrategy_FullPOD(t *testing.T) {
	s := NewDeliveryStrategy()

	result := s.Parse(deliveryText)

	data, ok := result.Data.(DeliveryData)
	require.True(t, ok)
	assert.True(t, data.DeliveryConfirmed)
	assert.True(t, data.SignaturePresent)
	assert.Equal(t, "Jane Receiver", data.ReceiverName)
	require.NotNil(t, data.DeliveryDate)
	assert.NotEmpty(t, data.DeliveryNotes)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
	assert.True(t, result.Verified)
}

func TestDeliveryStrategy_MediumTierStillVerifies(t *testing.T) {
	s := NewDeliveryStrategy()

	result := s.Parse("Delivery confirmed.\nSigned by: Jane\n")

	data := result.Data.(DeliveryData)
	assert.True(t, data.DeliveryConfirmed)
	assert.InDelta(t, 0.75, result.Confidence, 0.001)
	assert.True(t, result.Verified)
}

func TestDeliveryStrategy_NoConfirmation_NotVerified(t *testing.T) {
	s := NewDeliveryStrategy()

	result := s.Parse("Received by: Jane Receiver\nDate: 08/14/2025\n")

	data := result.Data.(DeliveryData)
	assert.False(t, data.DeliveryConfirmed)
	assert.False(t, result.Verified)
}

const invoiceText = `INVOICE #: INV-2024-001
Invoice Date: 12/01/2024
Due Date: 12/31/2024
Remit To: Acme Logistics LLC
Bill To: Sunrise Produce Inc
Freight Charges $2,000.00
Fuel Surcharge $150.00
Subtotal: $2,150.00
Total: $2,150.00
`

func TestInvoiceStrategy_FullInvoice(t *testing.T) {
	s := NewInvoiceStrategy()

	result := s.Parse(invoiceText)

	data, ok := result.Data.(InvoiceData)
	require.True(t, ok)
	assert.Equal(t, "INV-2024-001", data.InvoiceNumber)
	require.NotNil(t, data.TotalCents)
	assert.Equal(t, int64(215000), *data.TotalCents)
	require.NotNil(t, data.SubtotalCents)
	require.NotNil(t, data.InvoiceDate)
	require.NotNil(t, data.DueDate)
	assert.NotEmpty(t, data.VendorName)
	assert.NotEmpty(t, data.CustomerName)
	require.Len(t, data.LineItems, 2)
	assert.Equal(t, int64(200000), data.LineItems[0].AmountCents)
	assert.Equal(t, int64(15000), data.LineItems[1].AmountCents)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
	assert.True(t, result.Verified)
}

func TestInvoiceStrategy_MultipleLineItemsBoost(t *testing.T) {
	s := NewInvoiceStrategy()

	one := s.Parse("Invoice #: 100\nTotal: $500.00\nFreight Charges $500.00\n")
	two := s.Parse("Invoice #: 100\nTotal: $650.00\nFreight Charges $500.00\nFuel Surcharge $150.00\n")

	assert.Greater(t, two.Confidence, one.Confidence)
}

func TestInvoiceStrategy_NumberAndTotalRequiredForVerification(t *testing.T) {
	s := NewInvoiceStrategy()

	result := s.Parse("Invoice Date: 12/01/2024\nBill To: Sunrise Produce Inc\n")

	assert.False(t, result.Verified)
}

const lumperText = `LUMPER RECEIPT
Receipt #: LR-4521
Date: 08/10/2025
Warehouse: Midwest Distribution Center
Driver: Bob Jones
Paid by: Cash
Total: $150.00
`

func TestLumperStrategy_FullReceipt(t *testing.T) {
	s := NewLumperStrategy()

	result := s.Parse(lumperText)

	data, ok := result.Data.(LumperReceiptData)
	require.True(t, ok)
	require.NotNil(t, data.AmountCents)
	assert.Equal(t, int64(15000), *data.AmountCents)
	assert.Equal(t, "LR-4521", data.ReceiptNumber)
	assert.Contains(t, data.FacilityName, "Midwest")
	assert.Equal(t, "Bob Jones", data.DriverName)
	assert.Equal(t, "cash", data.PaymentMethod)
	require.NotNil(t, data.ReceiptDate)
	assert.GreaterOrEqual(t, result.Confidence, HighConfidenceThreshold)
	assert.True(t, result.Verified)
}

func TestLumperStrategy_AmountAndDateRequiredForVerification(t *testing.T) {
	s := NewLumperStrategy()

	result := s.Parse("Receipt #: LR-4521\nDriver: Bob Jones\n")

	data := result.Data.(LumperReceiptData)
	assert.Nil(t, data.AmountCents)
	assert.False(t, result.Verified)
}

func TestStrategies_NeverReturnNilData(t *testing.T) {
	r := NewRegistry()
	for _, dt := range domain.AllDocumentTypes {
		s, _ := r.Get(dt)
		result := s.Parse("x")
		require.NotNil(t, result.Data, string(dt))
		assert.Equal(t, dt, result.Data.DocumentType(), string(dt))
	}
}
