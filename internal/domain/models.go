package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DriverFlags holds the verification flags owned by a driver record.
type DriverFlags struct {
	LicenseVerified   bool `json:"license_verified"`
	InsuranceVerified bool `json:"insurance_verified"`
	AgreementSigned   bool `json:"agreement_signed"`
}

// LoadFlags holds the verification flags owned by a load record.
type LoadFlags struct {
	RateConVerified   bool `json:"ratecon_verified"`
	DeliveryConfirmed bool `json:"delivery_confirmed"`
}

// SetBits returns only the flags that are set, keyed by their JSONB column
// keys. Flag writes are monotone merges of these bits so a concurrent writer's
// flag is never overwritten back to false.
func (f DriverFlags) SetBits() map[string]bool {
	bits := make(map[string]bool, 3)
	if f.LicenseVerified {
		bits["license_verified"] = true
	}
	if f.InsuranceVerified {
		bits["insurance_verified"] = true
	}
	if f.AgreementSigned {
		bits["agreement_signed"] = true
	}
	return bits
}

// SetBits returns only the flags that are set, keyed by their JSONB column keys.
func (f LoadFlags) SetBits() map[string]bool {
	bits := make(map[string]bool, 2)
	if f.RateConVerified {
		bits["ratecon_verified"] = true
	}
	if f.DeliveryConfirmed {
		bits["delivery_confirmed"] = true
	}
	return bits
}

// Value implements driver.Valuer so flags persist as JSONB.
func (f DriverFlags) Value() (driver.Value, error) { return json.Marshal(f) }

// Scan implements sql.Scanner for JSONB flag columns.
func (f *DriverFlags) Scan(src interface{}) error { return scanJSON(src, f) }

func (f LoadFlags) Value() (driver.Value, error) { return json.Marshal(f) }

func (f *LoadFlags) Scan(src interface{}) error { return scanJSON(src, f) }

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}

// Driver represents a freight driver whose documents are verified by the pipeline.
type Driver struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	FullName    string       `db:"full_name" json:"full_name"`
	PhoneNumber string       `db:"phone_number" json:"phone_number"`
	Language    string       `db:"language" json:"language"`
	DocFlags    DriverFlags  `db:"doc_flags" json:"doc_flags"`
	Status      DriverStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Load represents a freight load to which rate confirmations and deliveries attach.
type Load struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Origin           *string    `db:"origin" json:"origin"`
	Destination      *string    `db:"destination" json:"destination"`
	RateCents        *int64     `db:"rate_cents" json:"rate_cents"`
	AssignedDriverID *uuid.UUID `db:"assigned_driver_id" json:"assigned_driver_id"`
	Flags            LoadFlags  `db:"flags" json:"flags"`
	Status           LoadStatus `db:"status" json:"status"`
	InvoiceReadyAt   *time.Time `db:"invoice_ready_at" json:"invoice_ready_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Document represents a submitted freight document and its processing outcome.
type Document struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DriverID        uuid.UUID       `db:"driver_id" json:"driver_id"`
	LoadID          *uuid.UUID      `db:"load_id" json:"load_id"`
	Type            DocumentType    `db:"type" json:"type"`
	URL             string          `db:"url" json:"url"`
	Status          DocumentStatus  `db:"status" json:"status"`
	Confidence      *float64        `db:"confidence" json:"confidence"`
	ParsedData      json.RawMessage `db:"parsed_data" json:"parsed_data"`
	Verified        *bool           `db:"verified" json:"verified"`
	ProcessingError string          `db:"processing_error" json:"processing_error"`
	ProcessAttempts int             `db:"process_attempts" json:"process_attempts"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
