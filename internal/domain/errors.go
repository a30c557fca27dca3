package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrLoadNotFound        = errors.New("load not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDownloadFailed      = errors.New("file download failed")

	// ErrMissingAssociation is raised by the decision stage when the driver or
	// load a document refers to cannot be located. A lost flag update is a
	// business-correctness bug, so this surfaces instead of being skipped.
	ErrMissingAssociation = errors.New("required associated record not found")
)
