package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Format is the output format of a printed document
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat accepts pdf or html; empty means pdf
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", NewRenderError(ErrCodeInvalidInput, "unsupported print format: "+s, nil)
}

// PrintOptions selects how a document is delivered
type PrintOptions struct {
	Format Format
	// Store uploads the PDF to object storage instead of returning its bytes
	Store bool
}

// PrintOutput is a rendered document. Stored documents carry Key and URL
// and no Content.
type PrintOutput struct {
	FileName    string
	ContentType string
	Content     []byte
	Key         string
	URL         string
	ExpiresAt   time.Time
}

// DocumentConfig holds the printing settings documents need
type DocumentConfig struct {
	CompanyName string
	PaperSize   PaperSize
	Timeout     time.Duration
	// LinkExpiry is how long a stored document's download URL stays valid
	LinkExpiry time.Duration
}

// DocumentService renders documents and optionally stores the PDFs
type DocumentService struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	store    storage.ObjectStorage
	config   DocumentConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentService wires the template engine with a renderer and a store.
// renderer may be nil when PDF output is disabled; store may be nil when
// documents are never kept.
func NewDocumentService(engine *TemplateEngine, renderer PDFRenderer, store storage.ObjectStorage, config DocumentConfig, logger *zap.Logger) *DocumentService {
	if engine == nil {
		engine = NewTemplateEngine()
	}
	if config.PaperSize == "" {
		config.PaperSize = PaperSizeA4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		engine:   engine,
		renderer: renderer,
		store:    store,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Print renders doc in the requested format
func (s *DocumentService) Print(ctx context.Context, doc Document, opts PrintOptions) (*PrintOutput, error) {
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.Store && opts.Format != FormatPDF {
		return nil, NewRenderError(ErrCodeInvalidInput, "only PDF documents can be stored", nil)
	}

	title := documentTitle(doc)
	html, err := s.engine.Render(doc.Kind, Page{
		Title:     title,
		Company:   s.config.CompanyName,
		PrintedAt: s.now(),
		Doc:       doc.Data,
	})
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatHTML {
		return &PrintOutput{
			FileName:    doc.Number + ".html",
			ContentType: "text/html; charset=utf-8",
			Content:     []byte(html),
		}, nil
	}

	if s.renderer == nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "PDF rendering is disabled", nil)
	}
	result, err := s.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      title,
		PaperSize:  s.config.PaperSize,
		Margins:    DefaultMargins(),
		FooterHTML: pageNumberFooter,
		Timeout:    s.config.Timeout,
	})
	if err != nil {
		return nil, err
	}
	out := &PrintOutput{
		FileName:    doc.Number + ".pdf",
		ContentType: "application/pdf",
		Content:     result.PDFData,
	}
	if !opts.Store {
		return out, nil
	}
	return s.storeOutput(ctx, doc, out)
}

func (s *DocumentService) storeOutput(ctx context.Context, doc Document, out *PrintOutput) (*PrintOutput, error) {
	if s.store == nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "document storage is not configured", nil)
	}
	key := StorageKey(doc, s.now())
	if err := s.store.Upload(ctx, key, out.Content, out.ContentType); err != nil {
		return nil, fmt.Errorf("store %s: %w", doc.Number, err)
	}
	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, key, s.config.LinkExpiry)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Document stored",
		zap.String("kind", doc.Kind),
		zap.String("number", doc.Number),
		zap.String("key", key),
		zap.Int("bytes", len(out.Content)))
	return &PrintOutput{
		FileName:    out.FileName,
		ContentType: out.ContentType,
		Key:         key,
		URL:         url,
		ExpiresAt:   expiresAt,
	}, nil
}

// StorageKey places a document under its kind and month, e.g.
// pick-list/2026/10/PL-000001-<uuid>.pdf
func StorageKey(doc Document, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s.pdf", doc.Kind, now.UTC().Format("2006/01"), doc.Number, uuid.NewString())
}

func documentTitle(doc Document) string {
	switch doc.Kind {
	case KindPickList:
		return "Pick List " + doc.Number
	case KindPurchaseOrder:
		return "Purchase Order " + doc.Number
	}
	return doc.Number
}

const pageNumberFooter = `<div style="font-size:8px;width:100%;text-align:right;padding-right:10mm;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`
