package citegraph

import "errors"

var (
	// ErrDecisionNotFound is returned when a decision id does not exist.
	ErrDecisionNotFound = errors.New("citegraph: decision not found")

	// ErrUnsupportedFormat is returned for unrecognized document formats.
	ErrUnsupportedFormat = errors.New("citegraph: unsupported document format")

	// ErrExtractionFailed is returned when document text extraction fails.
	ErrExtractionFailed = errors.New("citegraph: text extraction failed")

	// ErrEmptyDocument is returned when an ingested document yields no text.
	ErrEmptyDocument = errors.New("citegraph: document has no extractable text")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("citegraph: invalid configuration")
)
