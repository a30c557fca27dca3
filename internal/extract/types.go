package extract

import (
	"time"

	"loaddocs/internal/domain"
)

// LicenseData holds the fields extracted from a driver's license scan.
type LicenseData struct {
	DriverName     string     `json:"driver_name,omitempty"`
	LicenseNumber  string     `json:"license_number,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	LicenseClass   string     `json:"license_class,omitempty"`
	Address        string     `json:"address,omitempty"`
	State          string     `json:"state,omitempty"`
}

func (LicenseData) DocumentType() domain.DocumentType { return domain.DocTypeLicense }

// InsuranceData holds the fields extracted from a certificate of insurance.
type InsuranceData struct {
	PolicyNumber          string     `json:"policy_number,omitempty"`
	InsuranceCompany      string     `json:"insurance_company,omitempty"`
	GeneralLiabilityCents *int64     `json:"general_liability_cents,omitempty"`
	AutoLiabilityCents    *int64     `json:"auto_liability_cents,omitempty"`
	EffectiveDate         *time.Time `json:"effective_date,omitempty"`
	ExpirationDate        *time.Time `json:"expiration_date,omitempty"`
}

func (InsuranceData) DocumentType() domain.DocumentType { return domain.DocTypeInsurance }

// AgreementData holds signature evidence found on a signed agreement.
type AgreementData struct {
	SignatureDetected bool       `json:"signature_detected"`
	AgreementType     string     `json:"agreement_type,omitempty"`
	SigningDate       *time.Time `json:"signing_date,omitempty"`
	KeyTerms          []string   `json:"key_terms,omitempty"`
}

func (AgreementData) DocumentType() domain.DocumentType { return domain.DocTypeAgreement }

// RateConData holds the fields extracted from a rate confirmation.
type RateConData struct {
	RateCents    *int64     `json:"rate_cents,omitempty"`
	Origin       string     `json:"origin,omitempty"`
	Destination  string     `json:"destination,omitempty"`
	PickupDate   *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	WeightLbs    *float64   `json:"weight_lbs,omitempty"`
	Commodity    string     `json:"commodity,omitempty"`
}

func (RateConData) DocumentType() domain.DocumentType { return domain.DocTypeRateCon }

// DeliveryData holds the fields extracted from a proof-of-delivery.
type DeliveryData struct {
	DeliveryConfirmed bool       `json:"delivery_confirmed"`
	SignaturePresent  bool       `json:"signature_present"`
	DeliveryDate      *time.Time `json:"delivery_date,omitempty"`
	ReceiverName      string     `json:"receiver_name,omitempty"`
	DeliveryNotes     string     `json:"delivery_notes,omitempty"`
}

func (DeliveryData) DocumentType() domain.DocumentType { return domain.DocTypeDelivery }

// InvoiceLineItem is one billed line on a freight invoice.
type InvoiceLineItem struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// InvoiceData holds the fields extracted from a freight invoice.
type InvoiceData struct {
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time        `json:"invoice_date,omitempty"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	TotalCents    *int64            `json:"total_cents,omitempty"`
	SubtotalCents *int64            `json:"subtotal_cents,omitempty"`
	VendorName    string            `json:"vendor_name,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	LineItems     []InvoiceLineItem `json:"line_items,omitempty"`
}

func (InvoiceData) DocumentType() domain.DocumentType { return domain.DocTypeInvoice }

// LumperReceiptData holds the fields extracted from a lumper receipt.
type LumperReceiptData struct {
	AmountCents   *int64     `json:"amount_cents,omitempty"`
	FacilityName  string     `json:"facility_name,omitempty"`
	ReceiptDate   *time.Time `json:"receipt_date,omitempty"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	DriverName    string     `json:"driver_name,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
}

func (LumperReceiptData) DocumentType() domain.DocumentType { return domain.DocTypeLumper }
