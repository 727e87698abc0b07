package ingestion

import "fmt"

// UnsupportedFormatError is returned for files whose extension has no extractor.
type UnsupportedFormatError struct {
	Filename string
	Ext      string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported file format for %s: no extension", e.Filename)
	}
	return fmt.Sprintf("unsupported file format for %s: %s", e.Filename, e.Ext)
}

// ExtractionError is returned when a supported file cannot be converted to text.
type ExtractionError struct {
	Filename string
	Format   Format
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract %s text from %s: %v", e.Format, e.Filename, e.Cause)
	}
	return fmt.Sprintf("failed to extract %s text from %s", e.Format, e.Filename)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ArchiveError is returned when an uploaded archive cannot be opened.
type ArchiveError struct {
	Message string
	Cause   error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("archive error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("archive error: %s", e.Message)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}
