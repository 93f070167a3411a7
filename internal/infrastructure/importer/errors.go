package importer

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	ErrCodeRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeMalformedRow      = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeRejected          = "ERR_IMPORT_REJECTED"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
)

// MissingColumnsError lists required columns absent from the header
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %v", e.Columns)
}

// RowError is a problem with one cell or row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection keeps up to maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	failedRows map[int]struct{}
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection. maxErrors <= 0 means 100.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors, failedRows: make(map[int]struct{})}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	ec.failedRows[err.Row] = struct{}{}
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Addf records an error built from its parts
func (ec *ErrorCollection) Addf(row int, column, code, format string, args ...any) {
	ec.Add(RowError{Row: row, Column: column, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the kept errors
func (ec *ErrorCollection) Errors() []RowError {
	out := make([]RowError, len(ec.errors))
	copy(out, ec.errors)
	return out
}

// HasErrors reports whether anything was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// Count returns how many errors were recorded, kept or not
func (ec *ErrorCollection) Count() int {
	return ec.totalCount
}

// Truncated reports whether errors were dropped beyond the limit
func (ec *ErrorCollection) Truncated() bool {
	return ec.totalCount > len(ec.errors)
}

// RowFailed reports whether any error was recorded for a row
func (ec *ErrorCollection) RowFailed(row int) bool {
	_, ok := ec.failedRows[row]
	return ok
}
