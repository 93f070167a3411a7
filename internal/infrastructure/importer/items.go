package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Mode decides what happens to rows whose code already exists
type Mode string

const (
	// ModeInsert skips existing codes
	ModeInsert Mode = "insert"
	// ModeUpsert updates existing codes
	ModeUpsert Mode = "upsert"
)

// ParseMode accepts insert (the default when empty) or upsert
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInsert:
		return ModeInsert, nil
	case ModeUpsert:
		return ModeUpsert, nil
	}
	return "", fmt.Errorf("unsupported import mode %q", s)
}

// Item columns. Only code and name are required.
const (
	ColCode         = "code"
	ColName         = "name"
	ColDescription  = "description"
	ColUnit         = "unit"
	ColUnitCost     = "unitCost"
	ColQuantity     = "quantity"
	ColReorderLevel = "reorderLevel"
	ColLocation     = "location"
	ColCategoryID   = "categoryId"
	ColSupplierID   = "supplierId"
)

// ItemColumns lists every recognised item column in template order
var ItemColumns = []string{
	ColCode, ColName, ColDescription, ColUnit, ColUnitCost, ColQuantity,
	ColReorderLevel, ColLocation, ColCategoryID, ColSupplierID,
}

// ItemRow is a validated item import row. Optional fields are nil when the
// cell is blank or the column is absent; on update they keep the stored value.
type ItemRow struct {
	Line         int
	Code         string
	Name         string
	Description  *string
	Unit         *string
	UnitCost     *decimal.Decimal
	Quantity     *int
	ReorderLevel *int
	Location     *string
	CategoryID   *uint
	SupplierID   *uint
}

// ItemSheet is the result of reading an item CSV
type ItemSheet struct {
	Total  int
	Rows   []ItemRow
	Errors *ErrorCollection
}

// ReadItems parses and validates an item CSV. Rows with errors are left out
// of Rows; file-level problems (encoding, header) are returned as err.
func ReadItems(r io.Reader, maxErrors int) (*ItemSheet, error) {
	p, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := p.MissingHeaders(ColCode, ColName); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	sheet := &ItemSheet{Errors: NewErrorCollection(maxErrors)}
	seen := make(map[string]int)
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			sheet.Total++
			sheet.Errors.Addf(p.currentRow, "", ErrCodeMalformedRow, "%v", err)
			continue
		}
		if row.IsEmpty() {
			continue
		}
		sheet.Total++

		item, ok := parseItemRow(row, sheet.Errors)
		if !ok {
			continue
		}
		if first, dup := seen[item.Code]; dup {
			sheet.Errors.Addf(row.LineNumber, ColCode, ErrCodeDuplicateInFile,
				"code %s already appears on row %d", item.Code, first)
			continue
		}
		seen[item.Code] = row.LineNumber
		sheet.Rows = append(sheet.Rows, item)
	}
	if sheet.Total == 0 {
		return nil, ErrNoDataRows
	}
	return sheet, nil
}

func parseItemRow(row *Row, errs *ErrorCollection) (ItemRow, bool) {
	line := row.LineNumber
	before := errs.Count()

	item := ItemRow{
		Line:        line,
		Code:        strings.ToUpper(row.Get(ColCode)),
		Name:        row.Get(ColName),
		Description: optionalText(row.Get(ColDescription)),
		Unit:        optionalText(row.Get(ColUnit)),
		Location:    optionalText(row.Get(ColLocation)),
	}

	requireText(errs, line, ColCode, item.Code, 50)
	requireText(errs, line, ColName, item.Name, 200)
	if item.Unit != nil {
		maxLength(errs, line, ColUnit, *item.Unit, 20)
	}
	if item.Location != nil {
		maxLength(errs, line, ColLocation, *item.Location, 100)
	}

	if v := row.Get(ColUnitCost); v != "" {
		d, err := decimal.NewFromString(v)
		switch {
		case err != nil:
			errs.Add(RowError{Row: line, Column: ColUnitCost, Code: ErrCodeInvalidType, Message: "unitCost must be a number", Value: v})
		case d.IsNegative():
			errs.Add(RowError{Row: line, Column: ColUnitCost, Code: ErrCodeInvalidRange, Message: "unitCost cannot be negative", Value: v})
		default:
			item.UnitCost = &d
		}
	}
	if v := row.Get(ColQuantity); v != "" {
		if n, ok := nonNegativeInt(errs, line, ColQuantity, v); ok {
			item.Quantity = &n
		}
	}
	if v := row.Get(ColReorderLevel); v != "" {
		if n, ok := nonNegativeInt(errs, line, ColReorderLevel, v); ok {
			item.ReorderLevel = &n
		}
	}
	item.CategoryID = optionalID(errs, line, ColCategoryID, row.Get(ColCategoryID))
	item.SupplierID = optionalID(errs, line, ColSupplierID, row.Get(ColSupplierID))

	return item, errs.Count() == before
}

func optionalText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func requireText(errs *ErrorCollection, line int, col, v string, max int) {
	if v == "" {
		errs.Addf(line, col, ErrCodeRequiredField, "%s is required", col)
		return
	}
	maxLength(errs, line, col, v, max)
}

func maxLength(errs *ErrorCollection, line int, col, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		errs.Add(RowError{Row: line, Column: col, Code: ErrCodeInvalidLength,
			Message: fmt.Sprintf("%s cannot exceed %d characters", col, max), Value: v})
	}
}

func nonNegativeInt(errs *ErrorCollection, line int, col, v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.Add(RowError{Row: line, Column: col, Code: ErrCodeInvalidType, Message: col + " must be a whole number", Value: v})
		return 0, false
	}
	if n < 0 {
		errs.Add(RowError{Row: line, Column: col, Code: ErrCodeInvalidRange, Message: col + " cannot be negative", Value: v})
		return 0, false
	}
	return n, true
}

func optionalID(errs *ErrorCollection, line int, col, v string) *uint {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		errs.Add(RowError{Row: line, Column: col, Code: ErrCodeInvalidType, Message: col + " must be a positive integer", Value: v})
		return nil
	}
	id := uint(n)
	return &id
}
