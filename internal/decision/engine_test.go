package decision

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loaddocs/internal/domain"
	"loaddocs/internal/extract"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := date(year, month, day)
	return &t
}

func centsPtr(v int64) *int64 { return &v }

func testDriver(flags domain.DriverFlags) *domain.Driver {
	return &domain.Driver{ID: uuid.New(), FullName: "John Smith", DocFlags: flags}
}

func testLoad(flags domain.LoadFlags) *domain.Load {
	return &domain.Load{ID: uuid.New(), Flags: flags, Status: domain.LoadStatusInTransit}
}

func TestDecide_License_Verified(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeLicense,
		Data: extract.LicenseData{
			DriverName:     "John Smith",
			ExpirationDate: datePtr(2025, time.July, 16),
		},
		Confidence: 0.95,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	require.NotNil(t, outcome.DriverFlags)
	assert.True(t, outcome.DriverFlags.LicenseVerified)
	assert.Nil(t, outcome.LoadFlags)
	assert.False(t, outcome.EmitInvoiceReady)
}

func TestDecide_License_ExpiringWithinThirtyDays_NotSet(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeLicense,
		Data: extract.LicenseData{
			DriverName:     "John Smith",
			ExpirationDate: datePtr(2025, time.July, 16),
		},
		Confidence: 0.95,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.July, 6),
	})

	require.NoError(t, err)
	require.NotNil(t, outcome.DriverFlags)
	assert.False(t, outcome.DriverFlags.LicenseVerified)
}

func TestDecide_License_BoundaryIsCalendarDays(t *testing.T) {
	engine := NewEngine()
	driver := testDriver(domain.DriverFlags{})

	// expiring exactly 30 days out fails the strictly-greater check
	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeLicense,
		Data:       extract.LicenseData{DriverName: "John Smith", ExpirationDate: datePtr(2025, time.July, 1)},
		Confidence: 0.95,
		Driver:     driver,
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.False(t, outcome.DriverFlags.LicenseVerified)

	// one day more passes
	outcome, err = engine.Decide(Input{
		DocType:    domain.DocTypeLicense,
		Data:       extract.LicenseData{DriverName: "John Smith", ExpirationDate: datePtr(2025, time.July, 2)},
		Confidence: 0.95,
		Driver:     driver,
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.True(t, outcome.DriverFlags.LicenseVerified)
}

func TestDecide_License_DoesNotClearPriorFlag(t *testing.T) {
	engine := NewEngine()

	// a weak re-upload must not undo an earlier verification
	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeLicense,
		Data:       extract.LicenseData{},
		Confidence: 0.20,
		Driver:     testDriver(domain.DriverFlags{LicenseVerified: true, AgreementSigned: true}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.True(t, outcome.DriverFlags.LicenseVerified)
	assert.True(t, outcome.DriverFlags.AgreementSigned)
}

func TestDecide_License_MissingDriver(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Decide(Input{
		DocType: domain.DocTypeLicense,
		Data:    extract.LicenseData{},
		Today:   date(2025, time.June, 1),
	})

	assert.ErrorIs(t, err, domain.ErrMissingAssociation)
}

func TestDecide_Insurance_SameDayExpirationNotSet(t *testing.T) {
	engine := NewEngine()
	data := extract.InsuranceData{
		PolicyNumber:          "POL-2024-88421",
		GeneralLiabilityCents: centsPtr(100000000),
		ExpirationDate:        datePtr(2027, time.January, 1),
	}

	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeInsurance,
		Data:       data,
		Confidence: 0.95,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2027, time.January, 1),
	})
	require.NoError(t, err)
	assert.False(t, outcome.DriverFlags.InsuranceVerified)

	outcome, err = engine.Decide(Input{
		DocType:    domain.DocTypeInsurance,
		Data:       data,
		Confidence: 0.95,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2026, time.December, 31),
	})
	require.NoError(t, err)
	assert.True(t, outcome.DriverFlags.InsuranceVerified)
}

func TestDecide_Insurance_RequiresAnAmount(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeInsurance,
		Data: extract.InsuranceData{
			PolicyNumber:   "POL-2024-88421",
			ExpirationDate: datePtr(2027, time.January, 1),
		},
		Confidence: 0.65,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.False(t, outcome.DriverFlags.InsuranceVerified)
}

func TestDecide_Agreement_HighConfidenceSets(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeAgreement,
		Data:       extract.AgreementData{SignatureDetected: true},
		Confidence: 0.90,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.True(t, outcome.DriverFlags.AgreementSigned)

	outcome, err = engine.Decide(Input{
		DocType:    domain.DocTypeAgreement,
		Data:       extract.AgreementData{SignatureDetected: true},
		Confidence: 0.85,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.False(t, outcome.DriverFlags.AgreementSigned)
}

func TestDecide_RateCon_PresenceGateIgnoresConfidence(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeRateCon,
		Data: extract.RateConData{
			RateCents:   centsPtr(250000),
			Origin:      "Atlanta, GA",
			Destination: "Chicago, IL",
		},
		Confidence: 0.40,
		Load:       testLoad(domain.LoadFlags{}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	require.NotNil(t, outcome.LoadFlags)
	assert.True(t, outcome.LoadFlags.RateConVerified)
	assert.Nil(t, outcome.LoadStatus)
	assert.False(t, outcome.EmitInvoiceReady)
}

func TestDecide_RateCon_MissingDestinationNotSet(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeRateCon,
		Data: extract.RateConData{
			RateCents: centsPtr(250000),
			Origin:    "Atlanta, GA",
		},
		Confidence: 0.95,
		Load:       testLoad(domain.LoadFlags{}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.False(t, outcome.LoadFlags.RateConVerified)
}

func TestDecide_RateCon_MissingLoad(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Decide(Input{
		DocType: domain.DocTypeRateCon,
		Data:    extract.RateConData{},
		Today:   date(2025, time.June, 1),
	})

	assert.ErrorIs(t, err, domain.ErrMissingAssociation)
}

func TestDecide_Delivery_ConfirmsAndMarksDelivered(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeDelivery,
		Data:       extract.DeliveryData{DeliveryConfirmed: true},
		Confidence: 0.75,
		Load:       testLoad(domain.LoadFlags{}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.True(t, outcome.LoadFlags.DeliveryConfirmed)
	require.NotNil(t, outcome.LoadStatus)
	assert.Equal(t, domain.LoadStatusDelivered, *outcome.LoadStatus)
	assert.False(t, outcome.EmitInvoiceReady)
}

func TestDecide_Delivery_CompletesPairAndEmitsInvoiceReady(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeDelivery,
		Data:       extract.DeliveryData{DeliveryConfirmed: true},
		Confidence: 0.75,
		Load:       testLoad(domain.LoadFlags{RateConVerified: true}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.True(t, outcome.LoadFlags.RateConVerified)
	assert.True(t, outcome.LoadFlags.DeliveryConfirmed)
	assert.True(t, outcome.EmitInvoiceReady)
}

func TestDecide_Delivery_BelowMediumNotSet(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeDelivery,
		Data:       extract.DeliveryData{},
		Confidence: 0.69,
		Load:       testLoad(domain.LoadFlags{RateConVerified: true}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.False(t, outcome.LoadFlags.DeliveryConfirmed)
	assert.Nil(t, outcome.LoadStatus)
	assert.False(t, outcome.EmitInvoiceReady)
}

func TestDecide_InvoiceReadyEmitsOnlyOnTransition(t *testing.T) {
	engine := NewEngine()

	// second application over an already-complete pair stays silent
	outcome, err := engine.Decide(Input{
		DocType:    domain.DocTypeDelivery,
		Data:       extract.DeliveryData{DeliveryConfirmed: true},
		Confidence: 0.80,
		Load:       testLoad(domain.LoadFlags{RateConVerified: true, DeliveryConfirmed: true}),
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.True(t, outcome.LoadFlags.DeliveryConfirmed)
	assert.False(t, outcome.EmitInvoiceReady)

	outcome, err = engine.Decide(Input{
		DocType: domain.DocTypeRateCon,
		Data: extract.RateConData{
			RateCents:   centsPtr(250000),
			Origin:      "Atlanta, GA",
			Destination: "Chicago, IL",
		},
		Confidence: 0.95,
		Load:       testLoad(domain.LoadFlags{RateConVerified: true, DeliveryConfirmed: true}),
		Today:      date(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.False(t, outcome.EmitInvoiceReady)
}

func TestDecide_RateCon_CompletesPairAfterDelivery(t *testing.T) {
	engine := NewEngine()

	outcome, err := engine.Decide(Input{
		DocType: domain.DocTypeRateCon,
		Data: extract.RateConData{
			RateCents:   centsPtr(250000),
			Origin:      "Atlanta, GA",
			Destination: "Chicago, IL",
		},
		Confidence: 0.60,
		Load:       testLoad(domain.LoadFlags{DeliveryConfirmed: true}),
		Today:      date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.True(t, outcome.EmitInvoiceReady)
}

func TestDecide_SettlementTypesCarryNoGate(t *testing.T) {
	engine := NewEngine()

	for _, docType := range []domain.DocumentType{domain.DocTypeInvoice, domain.DocTypeLumper} {
		outcome, err := engine.Decide(Input{
			DocType:    docType,
			Confidence: 0.95,
			Today:      date(2025, time.June, 1),
		})
		require.NoError(t, err, docType)
		assert.Nil(t, outcome.DriverFlags, docType)
		assert.Nil(t, outcome.LoadFlags, docType)
		assert.False(t, outcome.EmitInvoiceReady, docType)
	}
}

func TestDecide_UnknownType(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Decide(Input{DocType: domain.DocumentType("W9"), Today: date(2025, time.June, 1)})

	assert.ErrorIs(t, err, domain.ErrUnknownDocumentType)
}

func TestDecide_Idempotent(t *testing.T) {
	engine := NewEngine()
	in := Input{
		DocType: domain.DocTypeLicense,
		Data: extract.LicenseData{
			DriverName:     "John Smith",
			ExpirationDate: datePtr(2026, time.July, 16),
		},
		Confidence: 0.95,
		Driver:     testDriver(domain.DriverFlags{}),
		Today:      date(2025, time.June, 1),
	}

	first, err := engine.Decide(in)
	require.NoError(t, err)

	// feed the outcome back in as the prior state
	in.Driver.DocFlags = *first.DriverFlags
	second, err := engine.Decide(in)
	require.NoError(t, err)

	assert.Equal(t, *first.DriverFlags, *second.DriverFlags)
}
