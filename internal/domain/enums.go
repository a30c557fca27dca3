package domain

// DocumentType identifies the kind of freight document submitted for processing.
type DocumentType string

const (
	DocTypeLicense   DocumentType = "LICENSE"
	DocTypeInsurance DocumentType = "INSURANCE"
	DocTypeAgreement DocumentType = "AGREEMENT"
	DocTypeRateCon   DocumentType = "RATE_CON"
	DocTypeDelivery  DocumentType = "DELIVERY"
	DocTypeInvoice   DocumentType = "INVOICE"
	DocTypeLumper    DocumentType = "LUMPER"
)

// AllDocumentTypes lists every supported document type.
var AllDocumentTypes = []DocumentType{
	DocTypeLicense,
	DocTypeInsurance,
	DocTypeAgreement,
	DocTypeRateCon,
	DocTypeDelivery,
	DocTypeInvoice,
	DocTypeLumper,
}

// ParseDocumentType validates a raw document type string.
func ParseDocumentType(s string) (DocumentType, bool) {
	dt := DocumentType(s)
	for _, known := range AllDocumentTypes {
		if dt == known {
			return dt, true
		}
	}
	return "", false
}

// DocumentStatus represents the processing lifecycle of a submitted document.
type DocumentStatus string

const (
	DocStatusQueued     DocumentStatus = "queued"
	DocStatusProcessing DocumentStatus = "processing"
	DocStatusParsed     DocumentStatus = "parsed"
	DocStatusFailed     DocumentStatus = "failed"
)

// LoadStatus represents the lifecycle of a freight load.
type LoadStatus string

const (
	LoadStatusAvailable LoadStatus = "available"
	LoadStatusAssigned  LoadStatus = "assigned"
	LoadStatusInTransit LoadStatus = "in_transit"
	LoadStatusDelivered LoadStatus = "delivered"
	LoadStatusInvoiced  LoadStatus = "invoiced"
)

// DriverStatus represents a driver's onboarding state.
type DriverStatus string

const (
	DriverStatusPending  DriverStatus = "pending"
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWEBP FileType = "webp"
	FileTypeTIFF FileType = "tiff"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/jpg":       FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWEBP,
	"image/tiff":      FileTypeTIFF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"webp": FileTypeWEBP,
	"tiff": FileTypeTIFF,
	"tif":  FileTypeTIFF,
}
