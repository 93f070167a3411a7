// Package importer reads spreadsheet uploads (CSV) into validated rows,
// collecting per-row errors instead of stopping at the first one.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a CSV file with a header row. Header names are matched
// case-insensitively.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	reader     *csv.Reader
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes toggles lenient quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// NewCSVParser strips a UTF-8 BOM and rejects content that is not UTF-8
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	bom, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	if err := validateUTF8(br); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(br)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = p.lazyQuotes
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return ErrEmptyFile
	}
	// The peek window may end inside a multi-byte rune.
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax-1 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.headers = make([]string, len(record))
	for i, h := range record {
		name := normalizeHeader(h)
		p.headers[i] = name
		if name != "" {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1
	return nil
}

// Headers returns the normalized header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether a column is present
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[normalizeHeader(name)]
	return ok
}

// MissingHeaders returns the required columns that are absent
func (p *CSVParser) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by normalized header name
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the trimmed value of a column, empty when absent
func (r *Row) Get(column string) string {
	return r.Data[normalizeHeader(column)]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next row or io.EOF
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			p.currentRow = perr.StartLine
		} else {
			p.currentRow++
		}
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	// csv.Reader skips blank lines, so take the line from the reader.
	p.currentRow, _ = p.reader.FieldPos(0)
	row := &Row{LineNumber: p.currentRow, Data: make(map[string]string, len(p.headers))}
	for i, h := range p.headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row.Data[h] = strings.TrimSpace(record[i])
		} else {
			row.Data[h] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping blank ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// normalizeHeader lower-cases a header and drops spaces, dashes and underscores,
// so "Unit Cost", "unit_cost" and "unitCost" all match.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(h)))
}
