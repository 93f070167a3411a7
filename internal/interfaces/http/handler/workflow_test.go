package handler_test

import (
	"net/http"
	"testing"

	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	productionapp "github.com/doorsets/backend/internal/application/production"
	purchasingapp "github.com/doorsets/backend/internal/application/purchasing"
	"github.com/doorsets/backend/internal/application/reporting"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickListToPurchaseOrderWorkflow(t *testing.T) {
	a := newAPI(t)
	supplier := a.createSupplier(t, "Ironmongery Ltd")
	customer := a.createCustomer(t, "Harbour Builders")
	hinge := a.createItem(t, "HNG-100", 2, &supplier.ID)
	lock := a.createItem(t, "LCK-200", 10, nil)

	var pl productionapp.PickListResponse
	code, env := a.call(t, http.MethodPost, "/PickList/Create", map[string]any{
		"customerId":     customer.ID,
		"orderReference": "ORD-77",
		"title":          "Flat 4 doors",
		"lines": []map[string]any{
			{"itemId": hinge.ID, "quantity": 5},
			{"itemId": lock.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Messages)
	env.Into(t, &pl)
	require.Len(t, pl.Lines, 2)
	assert.Equal(t, "Harbour Builders", pl.CustomerName)
	assert.Equal(t, "open", pl.Status)
	assert.Equal(t, 6, pl.TotalQuantity)
	hingeLine := pl.Lines[0]
	require.Equal(t, hinge.ID, hingeLine.ItemID)

	t.Run("stock check flags the shortfall", func(t *testing.T) {
		var report productionapp.StockCheckResponse
		a.mustCall(t, http.MethodGet, path("/PickList/CheckStock/%d", pl.ID), nil, &report)
		assert.True(t, report.HasWarnings)
		assert.False(t, report.CanComplete)
		assert.Equal(t, 3, report.TotalShortfall)
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, "HNG-100", report.Warnings[0].ItemCode)
	})

	t.Run("completion is refused while short", func(t *testing.T) {
		code, env := a.call(t, http.MethodPost, path("/PickList/Complete/%d", pl.ID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, env.Code)
	})

	t.Run("dashboard counts the warning", func(t *testing.T) {
		var sum reporting.SummaryResponse
		a.mustCall(t, http.MethodGet, "/Dashboard/Summary", nil, &sum)
		assert.EqualValues(t, 1, sum.OpenPickLists)
		assert.EqualValues(t, 1, sum.PickListsWithWarnings)
	})

	var po purchasingapp.PurchaseOrderResponse
	t.Run("purchase orders are raised for the shortfall", func(t *testing.T) {
		var res purchasingapp.CreateFromPickListResponse
		code, env := a.call(t, http.MethodPost, path("/PurchaseOrder/CreateFromPickList/%d", pl.ID), nil)
		require.Equal(t, http.StatusCreated, code, env.Messages)
		env.Into(t, &res)
		require.Len(t, res.PurchaseOrders, 1)
		assert.Equal(t, []uint{hingeLine.ID}, res.LinkedLineIDs)
		assert.Empty(t, res.SkippedItemIDs)

		po = res.PurchaseOrders[0]
		assert.Equal(t, supplier.ID, po.SupplierID)
		assert.Equal(t, "draft", po.Status)
		require.Len(t, po.Lines, 1)
		assert.Equal(t, 3, po.Lines[0].Quantity)

		var got productionapp.PickListResponse
		a.mustCall(t, http.MethodGet, path("/PickList/GetById/%d", pl.ID), nil, &got)
		require.NotNil(t, got.Lines[0].PurchaseOrderID)
		assert.Equal(t, po.ID, *got.Lines[0].PurchaseOrderID)
		assert.True(t, got.Lines[0].Ordered)
	})

	t.Run("receiving before placing is refused", func(t *testing.T) {
		code, env := a.call(t, http.MethodPost, path("/PurchaseOrder/Receive/%d", po.ID), map[string]any{
			"lines": []map[string]any{{"lineId": po.Lines[0].ID, "quantity": 3}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeInvalidState, env.Code)
	})

	t.Run("place and receive", func(t *testing.T) {
		var placed purchasingapp.PurchaseOrderResponse
		a.mustCall(t, http.MethodPost, path("/PurchaseOrder/Place/%d", po.ID), nil, &placed)
		assert.Equal(t, "ordered", placed.Status)
		assert.NotNil(t, placed.OrderDate)

		var received purchasingapp.PurchaseOrderResponse
		a.mustCall(t, http.MethodPost, path("/PurchaseOrder/Receive/%d", po.ID), map[string]any{
			"lines": []map[string]any{{"lineId": po.Lines[0].ID, "quantity": 3}},
		}, &received)
		assert.Equal(t, "received", received.Status)
		assert.Equal(t, 0, received.TotalRemaining)

		var item catalogapp.ItemResponse
		a.mustCall(t, http.MethodGet, path("/Item/GetById/%d", hinge.ID), nil, &item)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("over receipt is rejected", func(t *testing.T) {
		code, _ := a.call(t, http.MethodPost, path("/PurchaseOrder/Receive/%d", po.ID), map[string]any{
			"lines": []map[string]any{{"lineId": po.Lines[0].ID, "quantity": 1}},
		})
		assert.GreaterOrEqual(t, code, http.StatusBadRequest)
	})

	t.Run("production and completion deduct stock", func(t *testing.T) {
		var started productionapp.PickListResponse
		a.mustCall(t, http.MethodPost, path("/PickList/StartProduction/%d", pl.ID), nil, &started)
		assert.Equal(t, "in_production", started.Status)

		var done productionapp.PickListResponse
		a.mustCall(t, http.MethodPost, path("/PickList/Complete/%d", pl.ID), nil, &done)
		assert.Equal(t, "completed", done.Status)
		assert.NotNil(t, done.CompletedAt)

		var item catalogapp.ItemResponse
		a.mustCall(t, http.MethodGet, path("/Item/GetById/%d", hinge.ID), nil, &item)
		assert.Equal(t, 0, item.Quantity)
		a.mustCall(t, http.MethodGet, path("/Item/GetById/%d", lock.ID), nil, &item)
		assert.Equal(t, 9, item.Quantity)

		var page shared.Paginated[catalogapp.MovementResponse]
		a.mustCall(t, http.MethodGet, path("/Item/Movements/%d?reason=production", hinge.ID), nil, &page)
		require.Len(t, page.Items, 1)
		assert.Equal(t, -5, page.Items[0].Delta)
	})

	t.Run("completed pick lists are read only", func(t *testing.T) {
		code, env := a.call(t, http.MethodPost, path("/PickList/AddLine/%d", pl.ID), map[string]any{"itemId": lock.ID, "quantity": 1})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeInvalidState, env.Code)

		code, _ = a.call(t, http.MethodPost, path("/PickList/Cancel/%d", pl.ID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})
}

func TestPickListLineEndpoints(t *testing.T) {
	a := newAPI(t)
	customer := a.createCustomer(t, "Harbour Builders")
	hinge := a.createItem(t, "HNG-100", 1, nil)
	lock := a.createItem(t, "LCK-200", 10, nil)

	var asm catalogapp.AssemblyResponse
	a.mustCall(t, http.MethodPost, "/Assembly/Create", map[string]any{
		"code": "DS-STD", "name": "Standard doorset",
		"components": []map[string]any{{"itemId": hinge.ID, "quantity": 3}, {"itemId": lock.ID, "quantity": 1}},
	}, &asm)

	var pl productionapp.PickListResponse
	a.mustCall(t, http.MethodPost, "/PickList/Create", map[string]any{"customerId": customer.ID, "title": "Block B"}, &pl)

	t.Run("missing customer is NOT_FOUND", func(t *testing.T) {
		code, env := a.call(t, http.MethodPost, "/PickList/Create", map[string]any{"customerId": 999, "title": "Nobody"})
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, dto.ErrCodeNotFound, env.Code)
	})

	t.Run("add assembly expands components", func(t *testing.T) {
		var got productionapp.PickListResponse
		a.mustCall(t, http.MethodPost, path("/PickList/AddAssembly/%d", pl.ID), map[string]any{"assemblyId": asm.ID, "units": 2}, &got)
		require.Len(t, got.Lines, 2)
		assert.Equal(t, 8, got.TotalQuantity)
		for _, l := range got.Lines {
			require.NotNil(t, l.AssemblyID)
			assert.Equal(t, asm.ID, *l.AssemblyID)
		}
		pl = got
	})

	require.NotEmpty(t, pl.Lines)
	line := pl.Lines[0]
	t.Run("update line", func(t *testing.T) {
		var got productionapp.PickListResponse
		a.mustCall(t, http.MethodPut, path("/PickList/UpdateLine/%d/%d", pl.ID, line.ID), map[string]any{"quantity": 2}, &got)
		assert.Equal(t, 2, got.Lines[0].Quantity)
	})

	t.Run("made order suppresses the warning", func(t *testing.T) {
		var report productionapp.StockCheckResponse
		a.mustCall(t, http.MethodGet, path("/PickList/CheckStock/%d", pl.ID), nil, &report)
		require.True(t, report.HasWarnings)

		var got productionapp.PickListResponse
		a.mustCall(t, http.MethodPut, path("/PickList/SetMadeOrder/%d/%d", pl.ID, line.ID), map[string]any{"madeOrder": true}, &got)
		assert.True(t, got.Lines[0].MadeOrder)

		a.mustCall(t, http.MethodGet, path("/PickList/CheckStock/%d", pl.ID), nil, &report)
		assert.False(t, report.HasWarnings)
		assert.False(t, report.CanComplete, "made order lines still need stock to complete")
	})

	t.Run("made order is required", func(t *testing.T) {
		code, env := a.call(t, http.MethodPut, path("/PickList/SetMadeOrder/%d/%d", pl.ID, line.ID), map[string]any{})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, env.Messages, "madeOrder is required")
	})

	t.Run("unknown line", func(t *testing.T) {
		code, _ := a.call(t, http.MethodDelete, path("/PickList/RemoveLine/%d/%d", pl.ID, 999), nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("remove line", func(t *testing.T) {
		var got productionapp.PickListResponse
		a.mustCall(t, http.MethodDelete, path("/PickList/RemoveLine/%d/%d", pl.ID, line.ID), nil, &got)
		assert.Len(t, got.Lines, 1)
	})

	t.Run("list filters by status", func(t *testing.T) {
		var page shared.Paginated[productionapp.PickListResponse]
		a.mustCall(t, http.MethodGet, "/PickList/GetAll?status=open", nil, &page)
		assert.EqualValues(t, 1, page.TotalCount)

		code, env := a.call(t, http.MethodGet, "/PickList/GetAll?status=shipped", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeValidation, env.Code)
	})

	t.Run("delete needs admin", func(t *testing.T) {
		code, _ := a.call(t, http.MethodDelete, path("/PickList/Delete/%d", pl.ID), nil)
		assert.Equal(t, http.StatusForbidden, code)
		code, env := a.callAs(t, a.admin, http.MethodDelete, path("/PickList/Delete/%d", pl.ID), nil)
		assert.Equal(t, http.StatusOK, code, env.Messages)
	})
}

func TestPrintAndExportDocuments(t *testing.T) {
	a := newAPI(t)
	customer := a.createCustomer(t, "Harbour Builders")
	supplier := a.createSupplier(t, "Ironmongery Ltd")
	hinge := a.createItem(t, "HNG-100", 10, &supplier.ID)

	var pl productionapp.PickListResponse
	a.mustCall(t, http.MethodPost, "/PickList/Create", map[string]any{
		"customerId": customer.ID, "title": "Flat 4",
		"lines": []map[string]any{{"itemId": hinge.ID, "quantity": 2}},
	}, &pl)

	var po purchasingapp.PurchaseOrderResponse
	a.mustCall(t, http.MethodPost, "/PurchaseOrder/Create", map[string]any{
		"supplierId": supplier.ID,
		"lines":      []map[string]any{{"itemId": hinge.ID, "quantity": 4}},
	}, &po)
	assert.Equal(t, "draft", po.Status)

	get := func(p string) (int, string, string) {
		w := testutil.Do(t, a.engine, testutil.Request{Method: http.MethodGet, Path: "/api" + p, Token: a.staff})
		return w.Code, w.Header().Get("Content-Type"), w.Body.String()
	}

	t.Run("pick list html", func(t *testing.T) {
		code, ct, body := get(path("/PickList/Print/%d?format=html", pl.ID))
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "text/html; charset=utf-8", ct)
		assert.Contains(t, body, pl.Number)
		assert.Contains(t, body, "HNG-100")
	})

	t.Run("purchase order html", func(t *testing.T) {
		code, _, body := get(path("/PurchaseOrder/Print/%d?format=html", po.ID))
		require.Equal(t, http.StatusOK, code, body)
		assert.Contains(t, body, po.Number)
		assert.Contains(t, body, "Ironmongery Ltd")
	})

	t.Run("pdf without a renderer", func(t *testing.T) {
		code, env := a.call(t, http.MethodGet, path("/PickList/Print/%d", pl.ID), nil)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, dto.ErrCodeRenderFailed, env.Code)
	})

	t.Run("only pdf can be stored", func(t *testing.T) {
		code, env := a.call(t, http.MethodGet, path("/PickList/Print/%d?format=html&store=true", pl.ID), nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeInvalidInput, env.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		code, env := a.call(t, http.MethodGet, path("/PickList/Print/%d?format=docx", pl.ID), nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeValidation, env.Code)
	})

	for _, p := range []string{"/PickList/Export", "/PurchaseOrder/Export", "/Customer/Export", "/Supplier/Export", "/Assembly/Export"} {
		t.Run("export "+p, func(t *testing.T) {
			code, ct, body := get(p + "?format=csv")
			require.Equal(t, http.StatusOK, code, body)
			assert.Equal(t, "text/csv; charset=utf-8", ct)
			assert.NotEmpty(t, body)
		})
	}
}

func TestPartnerEndpoints(t *testing.T) {
	a := newAPI(t)
	customer := a.createCustomer(t, "Harbour Builders")

	t.Run("update customer", func(t *testing.T) {
		var got partnerapp.CustomerResponse
		a.mustCall(t, http.MethodPut, path("/Customer/Update/%d", customer.ID), map[string]any{
			"name": "Harbour Builders Ltd", "email": "office@harbour.example",
		}, &got)
		assert.Equal(t, "Harbour Builders Ltd", got.Name)
		assert.Equal(t, "office@harbour.example", got.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		code, env := a.call(t, http.MethodPost, "/Supplier/Create", map[string]any{"name": "Bad", "email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeValidation, env.Code)
	})

	t.Run("customer in use", func(t *testing.T) {
		a.mustCall(t, http.MethodPost, "/PickList/Create", map[string]any{"customerId": customer.ID, "title": "Flat 1"}, nil)
		code, env := a.callAs(t, a.admin, http.MethodDelete, path("/Customer/Delete/%d", customer.ID), nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, dto.ErrCodeInUse, env.Code)
	})

	t.Run("supplier delete", func(t *testing.T) {
		s := a.createSupplier(t, "Unused Supplies")
		code, env := a.callAs(t, a.admin, http.MethodDelete, path("/Supplier/Delete/%d", s.ID), nil)
		assert.Equal(t, http.StatusOK, code, env.Messages)

		var page shared.Paginated[partnerapp.SupplierResponse]
		a.mustCall(t, http.MethodGet, "/Supplier/GetAll", nil, &page)
		assert.EqualValues(t, 0, page.TotalCount)
	})
}
