// Package decision maps parsed documents to verification flag mutations on
// driver and load records. The engine is a pure function over its input; it
// performs no I/O, so callers persist the outcome and emit any event.
package decision

import (
	"fmt"
	"time"

	"loaddocs/internal/domain"
	"loaddocs/internal/extract"
)

// Input carries everything the engine needs for one document outcome.
// Driver and Load are the current external records; either may be nil when
// the document type does not require it.
type Input struct {
	DocType    domain.DocumentType
	Data       extract.TypedData
	Confidence float64
	Verified   bool
	Driver     *domain.Driver
	Load       *domain.Load
	Today      time.Time
}

// Outcome is the intended new state. Flags are full replacements computed
// with set-if-condition-holds semantics: a condition that does not hold
// leaves the prior flag value untouched, so applying the same outcome twice
// is a no-op the second time.
type Outcome struct {
	DriverFlags *domain.DriverFlags
	LoadFlags   *domain.LoadFlags
	LoadStatus  *domain.LoadStatus
	// EmitInvoiceReady is set when this decision completes the
	// rate-confirmation + delivery pair for the load. The caller is
	// responsible for at-most-once delivery.
	EmitInvoiceReady bool
}

// Engine decides flag mutations per document type.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Decide computes the flag mutations for a parsed document.
//
// Gate conditions per type:
//
//	LICENSE    name and expiration present, expiration > today + 30 days
//	INSURANCE  policy number, an amount, and a future expiration present
//	AGREEMENT  confidence at the high tier
//	RATE_CON   rate, origin and destination present (never confidence-gated)
//	DELIVERY   confidence at the medium tier; also moves the load to delivered
//	INVOICE    no flag; settlement documents do not gate anything
//	LUMPER     no flag
//
// Comparisons on expiration dates use calendar days, not timestamps.
func (e *Engine) Decide(in Input) (*Outcome, error) {
	switch in.DocType {
	case domain.DocTypeLicense:
		data, driver, err := driverSide[extract.LicenseData](in)
		if err != nil {
			return nil, err
		}
		flags := driver.DocFlags
		if licenseGate(data, in.Today) {
			flags.LicenseVerified = true
		}
		return &Outcome{DriverFlags: &flags}, nil

	case domain.DocTypeInsurance:
		data, driver, err := driverSide[extract.InsuranceData](in)
		if err != nil {
			return nil, err
		}
		flags := driver.DocFlags
		if insuranceGate(data, in.Today) {
			flags.InsuranceVerified = true
		}
		return &Outcome{DriverFlags: &flags}, nil

	case domain.DocTypeAgreement:
		_, driver, err := driverSide[extract.AgreementData](in)
		if err != nil {
			return nil, err
		}
		flags := driver.DocFlags
		if in.Confidence >= extract.HighConfidenceThreshold {
			flags.AgreementSigned = true
		}
		return &Outcome{DriverFlags: &flags}, nil

	case domain.DocTypeRateCon:
		data, load, err := loadSide[extract.RateConData](in)
		if err != nil {
			return nil, err
		}
		flags := load.Flags
		if data.RateCents != nil && data.Origin != "" && data.Destination != "" {
			flags.RateConVerified = true
		}
		outcome := &Outcome{LoadFlags: &flags}
		outcome.EmitInvoiceReady = invoiceReady(load.Flags, flags)
		return outcome, nil

	case domain.DocTypeDelivery:
		_, load, err := loadSide[extract.DeliveryData](in)
		if err != nil {
			return nil, err
		}
		flags := load.Flags
		outcome := &Outcome{LoadFlags: &flags}
		if in.Confidence >= extract.MediumConfidenceThreshold {
			flags.DeliveryConfirmed = true
			delivered := domain.LoadStatusDelivered
			outcome.LoadStatus = &delivered
		}
		outcome.EmitInvoiceReady = invoiceReady(load.Flags, flags)
		return outcome, nil

	case domain.DocTypeInvoice, domain.DocTypeLumper:
		// settlement paperwork carries no verification gate
		return &Outcome{}, nil

	default:
		return nil, fmt.Errorf("decide %q: %w", in.DocType, domain.ErrUnknownDocumentType)
	}
}

// invoiceReady reports whether this decision is what completed the
// rate-confirmation + delivery pair. Emitting only on the transition keeps
// repeated applications from re-announcing readiness.
func invoiceReady(prior, next domain.LoadFlags) bool {
	nowReady := next.RateConVerified && next.DeliveryConfirmed
	wasReady := prior.RateConVerified && prior.DeliveryConfirmed
	return nowReady && !wasReady
}

func licenseGate(data extract.LicenseData, today time.Time) bool {
	if data.DriverName == "" || data.ExpirationDate == nil {
		return false
	}
	cutoff := calendarDate(today).AddDate(0, 0, 30)
	return calendarDate(*data.ExpirationDate).After(cutoff)
}

func insuranceGate(data extract.InsuranceData, today time.Time) bool {
	if data.PolicyNumber == "" || data.ExpirationDate == nil {
		return false
	}
	if data.GeneralLiabilityCents == nil && data.AutoLiabilityCents == nil {
		return false
	}
	// same-day rule: expiring later than today is enough
	return calendarDate(*data.ExpirationDate).After(calendarDate(today))
}

func driverSide[T extract.TypedData](in Input) (T, *domain.Driver, error) {
	var data T
	if in.Driver == nil {
		return data, nil, fmt.Errorf("document type %s requires a driver record: %w", in.DocType, domain.ErrMissingAssociation)
	}
	data, _ = in.Data.(T)
	return data, in.Driver, nil
}

func loadSide[T extract.TypedData](in Input) (T, *domain.Load, error) {
	var data T
	if in.Load == nil {
		return data, nil, fmt.Errorf("document type %s requires a load record: %w", in.DocType, domain.ErrMissingAssociation)
	}
	data, _ = in.Data.(T)
	return data, in.Load, nil
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
