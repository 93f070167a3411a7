package common

import (
	"context"

	"github.com/doorsets/backend/internal/infrastructure/printing"
)

// DocumentPrinter renders printable documents
type DocumentPrinter interface {
	Print(ctx context.Context, doc printing.Document, opts printing.PrintOptions) (*printing.PrintOutput, error)
}

// PrintQuery is the query string of the Print actions
type PrintQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=pdf html PDF HTML"`
	Store  bool   `form:"store"`
}

// Options converts the query into print options
func (q PrintQuery) Options() (printing.PrintOptions, error) {
	f, err := printing.ParseFormat(q.Format)
	if err != nil {
		return printing.PrintOptions{}, err
	}
	return printing.PrintOptions{Format: f, Store: q.Store}, nil
}
