package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer returns the HTML it was given wrapped as a PDF body
type fakeRenderer struct {
	last *RenderRequest
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.7\n" + req.Title), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error { return nil }

func samplePickList() PickListView {
	due := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	return PickListView{
		Number:         "PL-000012",
		Status:         "in_production",
		Title:          "Oak door set, Flat 4",
		OrderReference: "CUST-77",
		Customer:       Party{Name: "Harbour Builders", ContactName: "Ana", Phone: "0123"},
		DueDate:        &due,
		Lines: []PickListLineView{
			{ItemCode: "HNG-100", ItemName: "Hinge <brass>", Quantity: 6, InStock: 10},
			{ItemCode: "LCK-200", ItemName: "Mortice lock", Quantity: 2, InStock: 1, Shortfall: 1, Warning: true},
		},
		HasWarnings: true,
	}
}

func samplePurchaseOrder() PurchaseOrderView {
	return PurchaseOrderView{
		Number:   "PO-000003",
		Status:   "ordered",
		Supplier: Party{Name: "Ironmongery Direct", Email: "orders@example.com"},
		PickList: "PL-000012",
		Lines: []PurchaseOrderLineView{
			{ItemCode: "LCK-200", ItemName: "Mortice lock", Quantity: 1000, UnitCost: decimal.RequireFromString("12.5"), LineTotal: decimal.RequireFromString("12500")},
		},
		Total: decimal.RequireFromString("12500"),
	}
}

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()
	printed := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	t.Run("pick list", func(t *testing.T) {
		out, err := e.Render(KindPickList, Page{Title: "Pick List PL-000012", Company: "DoorSets", PrintedAt: printed, Doc: samplePickList()})
		require.NoError(t, err)
		assert.Contains(t, out, "Pick List PL-000012")
		assert.Contains(t, out, "In Production")
		assert.Contains(t, out, "2026-11-02")
		assert.Contains(t, out, "Hinge &lt;brass&gt;")
		assert.Contains(t, out, `class="warning"`)
		assert.Contains(t, out, "Printed 2026-10-19 09:30")
	})

	t.Run("purchase order", func(t *testing.T) {
		out, err := e.Render(KindPurchaseOrder, Page{Title: "Purchase Order PO-000003", PrintedAt: printed, Doc: samplePurchaseOrder()})
		require.NoError(t, err)
		assert.Contains(t, out, "12.50")
		assert.Contains(t, out, "12,500.00")
		assert.Contains(t, out, "Ordered")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := e.Render("invoice", Page{})
		assert.True(t, IsRenderError(err, ErrCodeInvalidInput))
	})
}

func TestTemplateHelpers(t *testing.T) {
	assert.Equal(t, "Partially Received", titleCase("partially_received"))
	assert.Equal(t, "1,234,567.89", formatMoney(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-5.00", formatMoney(decimal.NewFromInt(-5)))
	assert.Equal(t, "0.00", formatMoney(decimal.Zero))

	var nilTime *time.Time
	assert.Equal(t, "", formatDate(nilTime))
	assert.Equal(t, "", formatDate(time.Time{}))
}

func TestDocumentService_Print(t *testing.T) {
	ctx := context.Background()

	t.Run("html", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, DocumentConfig{CompanyName: "DoorSets"}, nil)
		out, err := svc.Print(ctx, PickListDocument(samplePickList()), PrintOptions{Format: FormatHTML})
		require.NoError(t, err)
		assert.Equal(t, "PL-000012.html", out.FileName)
		assert.True(t, strings.HasPrefix(out.ContentType, "text/html"))
		assert.Contains(t, string(out.Content), "DoorSets")
	})

	t.Run("pdf", func(t *testing.T) {
		r := &fakeRenderer{}
		svc := NewDocumentService(nil, r, nil, DocumentConfig{Timeout: 5 * time.Second}, nil)
		out, err := svc.Print(ctx, PurchaseOrderDocument(samplePurchaseOrder()), PrintOptions{})
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", out.ContentType)
		assert.Equal(t, "PO-000003.pdf", out.FileName)
		assert.Equal(t, "Purchase Order PO-000003", r.last.Title)
		assert.Equal(t, PaperSizeA4, r.last.PaperSize)
		assert.Equal(t, 5*time.Second, r.last.Timeout)
	})

	t.Run("pdf without renderer", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, DocumentConfig{}, nil)
		_, err := svc.Print(ctx, PickListDocument(samplePickList()), PrintOptions{Format: FormatPDF})
		assert.True(t, IsRenderError(err, ErrCodeRenderFailed))
	})

	t.Run("renderer timeout passes through", func(t *testing.T) {
		r := &fakeRenderer{err: NewRenderError(ErrCodeRenderTimeout, "too slow", nil)}
		svc := NewDocumentService(nil, r, nil, DocumentConfig{}, nil)
		_, err := svc.Print(ctx, PickListDocument(samplePickList()), PrintOptions{})
		assert.True(t, IsRenderError(err, ErrCodeRenderTimeout))
	})

	t.Run("store", func(t *testing.T) {
		store := storage.NewMemoryObjectStorage()
		svc := NewDocumentService(nil, &fakeRenderer{}, store, DocumentConfig{}, nil)
		svc.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }

		out, err := svc.Print(ctx, PickListDocument(samplePickList()), PrintOptions{Store: true})
		require.NoError(t, err)
		assert.Empty(t, out.Content)
		assert.True(t, strings.HasPrefix(out.Key, "pick-list/2026/10/PL-000012-"))
		assert.Contains(t, out.URL, out.Key)

		obj, ok := store.Object(out.Key)
		require.True(t, ok)
		assert.Equal(t, "application/pdf", obj.ContentType)
	})

	t.Run("store html is rejected", func(t *testing.T) {
		svc := NewDocumentService(nil, &fakeRenderer{}, storage.NewMemoryObjectStorage(), DocumentConfig{}, nil)
		_, err := svc.Print(ctx, PickListDocument(samplePickList()), PrintOptions{Format: FormatHTML, Store: true})
		assert.True(t, IsRenderError(err, ErrCodeInvalidInput))
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("HTML")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = ParseFormat("docx")
	assert.True(t, IsRenderError(err, ErrCodeInvalidInput))
}
