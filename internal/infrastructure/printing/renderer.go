package printing

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PaperSize is a supported output paper size
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeLetter PaperSize = "LETTER" // 216mm x 279mm
)

// ParsePaperSize accepts a case-insensitive paper size name; empty means A4
func ParsePaperSize(s string) (PaperSize, error) {
	p := PaperSize(strings.ToUpper(strings.TrimSpace(s)))
	if p == "" {
		return PaperSizeA4, nil
	}
	if !p.IsValid() {
		return "", NewRenderError(ErrCodeInvalidInput, "unsupported paper size: "+s, nil)
	}
	return p, nil
}

// IsValid checks if the PaperSize is supported
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	default:
		return 210, 297
	}
}

// Margins are page margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns 10mm on every side
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	Title     string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// FooterHTML is printed on every page, e.g. page numbers
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer renders HTML documents to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
)

// RenderError represents an error while producing a document
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// IsRenderError reports whether err is a RenderError with the given code
func IsRenderError(err error, code string) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Code == code
}

// estimatePageCount counts page objects in the PDF body
func estimatePageCount(pdf []byte) int {
	n := strings.Count(string(pdf), "/Type /Page") - strings.Count(string(pdf), "/Type /Pages")
	if n < 1 {
		n = 1
	}
	return n
}
