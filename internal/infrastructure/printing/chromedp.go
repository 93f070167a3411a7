package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools websocket URL of a running Chrome. When
	// empty a local headless browser is launched.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Scale     float64
	Logger    *zap.Logger
}

// ChromedpRenderer renders HTML to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)

// NewChromedpRenderer creates the browser allocator. The browser itself
// starts on the first Render.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: config, logger: logger}
	r.initAllocator()
	return r, nil
}

func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render converts HTML content to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRenderRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Stop the browser tab when the caller's deadline passes.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	doc := buildCompleteHTML(req)
	params := r.buildPrintParams(req)

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithScale(params.scale).
				WithLandscape(params.landscape).
				WithDisplayHeaderFooter(params.displayFooter).
				WithHeaderTemplate("<span></span>").
				WithFooterTemplate(params.footerTemplate).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(start),
	}
	r.logger.Info("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// Close stops the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func validateRenderRequest(req *RenderRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeInvalidInput, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return NewRenderError(ErrCodeInvalidInput, "HTML content is empty", nil)
	}
	if req.PaperSize == "" {
		req.PaperSize = PaperSizeA4
	}
	if !req.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidInput, "invalid paper size: "+string(req.PaperSize), nil)
	}
	return nil
}

type printParams struct {
	paperWidth     float64
	paperHeight    float64
	marginTop      float64
	marginRight    float64
	marginBottom   float64
	marginLeft     float64
	scale          float64
	landscape      bool
	displayFooter  bool
	footerTemplate string
}

// buildPrintParams converts the request into Chrome's inch-based print parameters
func (r *ChromedpRenderer) buildPrintParams(req *RenderRequest) *printParams {
	width, height := req.PaperSize.Dimensions()
	p := &printParams{
		paperWidth:   mmToInches(float64(width)),
		paperHeight:  mmToInches(float64(height)),
		marginTop:    mmToInches(float64(req.Margins.Top)),
		marginRight:  mmToInches(float64(req.Margins.Right)),
		marginBottom: mmToInches(float64(req.Margins.Bottom)),
		marginLeft:   mmToInches(float64(req.Margins.Left)),
		scale:        r.config.Scale,
		landscape:    req.Landscape,
	}
	if req.FooterHTML != "" {
		p.displayFooter = true
		p.footerTemplate = req.FooterHTML
		if p.marginBottom < mmToInches(12) {
			p.marginBottom = mmToInches(12)
		}
	}
	return p
}

// buildCompleteHTML wraps a fragment in a full document
func buildCompleteHTML(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>" + html.EscapeString(req.Title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
