package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/doorsets/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
)

const (
	entityItem          = "Item"
	entityAssembly      = "Assembly"
	entityCustomer      = "Customer"
	entitySupplier      = "Supplier"
	entityPickList      = "PickList"
	entityPurchaseOrder = "PurchaseOrder"
)

// embeddedIn lists the entities whose responses carry names of another one
var embeddedIn = map[string][]string{
	entityItem:     {entityAssembly, entityPickList, entityPurchaseOrder},
	entityCustomer: {entityPickList},
	entitySupplier: {entityPurchaseOrder},
}

// resource is the CRUD surface every entity shares. Reads go through the
// client cache; writes drop the entity's cached entries.
type resource[Req, Resp any] struct {
	c      *Client
	entity string
}

func newResource[Req, Resp any](c *Client, entity string) *resource[Req, Resp] {
	return &resource[Req, Resp]{c: c, entity: entity}
}

func (r *resource[Req, Resp]) path(action string, ids ...uint) string {
	p := "/" + r.entity + "/" + action
	for _, id := range ids {
		p += "/" + strconv.FormatUint(uint64(id), 10)
	}
	return p
}

func (r *resource[Req, Resp]) listKey(q url.Values) string {
	return fmt.Sprintf("%slist:%016x", cache.EntityPrefix(r.entity), xxhash.Sum64String(q.Encode()))
}

func (r *resource[Req, Resp]) detailKey(id uint) string {
	return fmt.Sprintf("%sid:%d", cache.EntityPrefix(r.entity), id)
}

// cached serves key from the client cache, calling the API on a miss
func (r *resource[Req, Resp]) cached(ctx context.Context, key string, req request, out any) error {
	if raw, ok, err := r.c.cache.Get(ctx, key); err == nil && ok {
		if json.Unmarshal(raw, out) == nil {
			return nil
		}
	}
	data, err := r.c.send(ctx, req)
	if err != nil {
		return err
	}
	if err := decodeData(data, out); err != nil {
		return err
	}
	_ = r.c.cache.Set(ctx, key, data, r.c.cacheTTL)
	return nil
}

// invalidate drops the cached entries of this entity, of the entities that
// embed it and of also
func (r *resource[Req, Resp]) invalidate(ctx context.Context, also ...string) {
	_ = r.c.cache.InvalidatePrefix(ctx, cache.EntityPrefix(r.entity))
	for _, e := range append(embeddedIn[r.entity], also...) {
		_ = r.c.cache.InvalidatePrefix(ctx, cache.EntityPrefix(e))
	}
}

// write runs a mutating call and invalidates afterwards, even on failure,
// since a conflict means the cached copy is stale.
func (r *resource[Req, Resp]) write(ctx context.Context, req request, out any, also ...string) error {
	defer r.invalidate(ctx, also...)
	return r.c.call(ctx, req, out)
}

// GetAll returns one page of the entity list
func (r *resource[Req, Resp]) GetAll(ctx context.Context, opts ListOptions) (*Page[Resp], error) {
	q := opts.values()
	var out Page[Resp]
	if err := r.cached(ctx, r.listKey(q), request{method: http.MethodGet, path: r.path("GetAll"), query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns one entity
func (r *resource[Req, Resp]) GetByID(ctx context.Context, id uint) (*Resp, error) {
	var out Resp
	if err := r.cached(ctx, r.detailKey(id), request{method: http.MethodGet, path: r.path("GetById", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *resource[Req, Resp]) Create(ctx context.Context, req Req) (*Resp, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Create"), body: req})
}

func (r *resource[Req, Resp]) Update(ctx context.Context, id uint, req Req) (*Resp, error) {
	return r.mutate(ctx, request{method: http.MethodPut, path: r.path("Update", id), body: req})
}

// Delete removes an entity; admin only
func (r *resource[Req, Resp]) Delete(ctx context.Context, id uint) error {
	return r.write(ctx, request{method: http.MethodDelete, path: r.path("Delete", id)}, nil)
}

func (r *resource[Req, Resp]) mutate(ctx context.Context, req request, also ...string) (*Resp, error) {
	var out Resp
	if err := r.write(ctx, req, &out, also...); err != nil {
		return nil, err
	}
	return &out, nil
}

// export downloads the filtered list as xlsx or csv
func (r *resource[Req, Resp]) export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	q := opts.values()
	q.Del("page")
	q.Del("pageSize")
	if format != "" {
		q.Set("format", format)
	}
	return r.c.download(ctx, r.path("Export"), q)
}

type CategoryResource struct {
	*resource[CategoryRequest, Category]
}

type CustomerResource struct {
	*resource[ContactRequest, Customer]
}

func (r *CustomerResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

type SupplierResource struct {
	*resource[SupplierRequest, Supplier]
}

func (r *SupplierResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

type ItemResource struct {
	*resource[ItemRequest, Item]
}

// AdjustStock sets the on-hand quantity of an item; admin only
func (r *ItemResource) AdjustStock(ctx context.Context, id uint, quantity int, note string) (*Item, error) {
	return r.mutate(ctx, request{
		method: http.MethodPost,
		path:   r.path("AdjustStock", id),
		body:   map[string]any{"quantity": quantity, "note": note},
	})
}

// Movements returns the stock history of an item. reason may be empty.
func (r *ItemResource) Movements(ctx context.Context, id uint, reason string, opts ListOptions) (*Page[Movement], error) {
	q := opts.values()
	if reason != "" {
		q.Set("reason", reason)
	}
	var out Page[Movement]
	if err := r.c.call(ctx, request{method: http.MethodGet, path: r.path("Movements", id), query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LowStock lists items at or below their reorder level
func (r *ItemResource) LowStock(ctx context.Context) ([]LowStockItem, error) {
	var out []LowStockItem
	if err := r.c.call(ctx, request{method: http.MethodGet, path: r.path("LowStock")}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ItemResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

// Import uploads a CSV of items. mode is insert (default) or upsert.
func (r *ItemResource) Import(ctx context.Context, fileName string, csv io.Reader, mode string) (*ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	q := url.Values{}
	if mode != "" {
		q.Set("mode", mode)
	}
	var out ImportResult
	err = r.write(ctx, request{
		method:      http.MethodPost,
		path:        r.path("Import"),
		query:       q,
		payload:     buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type AssemblyResource struct {
	*resource[AssemblyRequest, Assembly]
}

// Expand returns the component requirements of units assemblies against stock
func (r *AssemblyResource) Expand(ctx context.Context, id uint, units int) (*Expansion, error) {
	var out Expansion
	err := r.c.call(ctx, request{
		method: http.MethodGet,
		path:   r.path("Expand", id),
		query:  url.Values{"units": {strconv.Itoa(units)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AssemblyResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

type PickListResource struct {
	*resource[PickListRequest, PickList]
}

func (r *PickListResource) AddLine(ctx context.Context, id uint, line PickLine) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("AddLine", id), body: line})
}

// AddAssembly expands an assembly into lines of the pick list
func (r *PickListResource) AddAssembly(ctx context.Context, id uint, a PickAssembly) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("AddAssembly", id), body: a})
}

func (r *PickListResource) UpdateLine(ctx context.Context, id, lineID uint, quantity int) (*PickList, error) {
	return r.mutate(ctx, request{
		method: http.MethodPut,
		path:   r.path("UpdateLine", id, lineID),
		body:   map[string]int{"quantity": quantity},
	})
}

func (r *PickListResource) RemoveLine(ctx context.Context, id, lineID uint) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodDelete, path: r.path("RemoveLine", id, lineID)})
}

// SetMadeOrder marks a line as ordered outside the system
func (r *PickListResource) SetMadeOrder(ctx context.Context, id, lineID uint, madeOrder bool) (*PickList, error) {
	return r.mutate(ctx, request{
		method: http.MethodPut,
		path:   r.path("SetMadeOrder", id, lineID),
		body:   map[string]bool{"madeOrder": madeOrder},
	})
}

// LinkPurchaseOrder attaches lines to a purchase order
func (r *PickListResource) LinkPurchaseOrder(ctx context.Context, id, purchaseOrderID uint, lineIDs ...uint) (*PickList, error) {
	return r.mutate(ctx, request{
		method: http.MethodPost,
		path:   r.path("LinkPurchaseOrder", id),
		body:   map[string]any{"purchaseOrderId": purchaseOrderID, "lineIds": lineIDs},
	}, entityPurchaseOrder)
}

// CheckStock reconciles the pick list against stock on hand. It is never
// cached.
func (r *PickListResource) CheckStock(ctx context.Context, id uint) (*StockCheck, error) {
	var out StockCheck
	if err := r.c.call(ctx, request{method: http.MethodGet, path: r.path("CheckStock", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PickListResource) StartProduction(ctx context.Context, id uint) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("StartProduction", id)})
}

// Complete consumes the stock of every line
func (r *PickListResource) Complete(ctx context.Context, id uint) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Complete", id)}, entityItem)
}

func (r *PickListResource) Cancel(ctx context.Context, id uint) (*PickList, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Cancel", id)})
}

// Print renders the pick list; format is pdf (default) or html
func (r *PickListResource) Print(ctx context.Context, id uint, format string) (*File, error) {
	return r.c.download(ctx, r.path("Print", id), printQuery(format, false))
}

// PrintToStorage renders the pick list into object storage and returns a link
func (r *PickListResource) PrintToStorage(ctx context.Context, id uint) (*StoredDocument, error) {
	var out StoredDocument
	err := r.c.call(ctx, request{method: http.MethodGet, path: r.path("Print", id), query: printQuery("pdf", true)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PickListResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

type PurchaseOrderResource struct {
	*resource[PurchaseOrderRequest, PurchaseOrder]
}

// Create drafts an order. Orders raised for a pick list change its lines, so
// the pick list cache is dropped too.
func (r *PurchaseOrderResource) Create(ctx context.Context, req PurchaseOrderRequest) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Create"), body: req}, entityPickList)
}

// Delete removes a draft or cancelled order. The server unlinks the pick
// list lines that referenced it.
func (r *PurchaseOrderResource) Delete(ctx context.Context, id uint) error {
	return r.write(ctx, request{method: http.MethodDelete, path: r.path("Delete", id)}, nil, entityPickList)
}

func (r *PurchaseOrderResource) AddLine(ctx context.Context, id uint, line OrderLine) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("AddLine", id), body: line})
}

func (r *PurchaseOrderResource) UpdateLine(ctx context.Context, id, lineID uint, quantity int, unitCost decimal.Decimal) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{
		method: http.MethodPut,
		path:   r.path("UpdateLine", id, lineID),
		body:   map[string]any{"quantity": quantity, "unitCost": unitCost},
	})
}

func (r *PurchaseOrderResource) RemoveLine(ctx context.Context, id, lineID uint) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{method: http.MethodDelete, path: r.path("RemoveLine", id, lineID)})
}

// Place sends a draft order to the supplier
func (r *PurchaseOrderResource) Place(ctx context.Context, id uint) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Place", id)}, entityPickList)
}

// Receive books delivered quantities into stock
func (r *PurchaseOrderResource) Receive(ctx context.Context, id uint, receipts ...Receipt) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{
		method: http.MethodPost,
		path:   r.path("Receive", id),
		body:   map[string]any{"lines": receipts},
	}, entityItem, entityPickList)
}

func (r *PurchaseOrderResource) Cancel(ctx context.Context, id uint) (*PurchaseOrder, error) {
	return r.mutate(ctx, request{method: http.MethodPost, path: r.path("Cancel", id)}, entityPickList)
}

// CreateFromPickList drafts one order per supplier for the unordered
// shortfall of a pick list and links the covered lines
func (r *PurchaseOrderResource) CreateFromPickList(ctx context.Context, pickListID uint) (*Replenishment, error) {
	var out Replenishment
	err := r.write(ctx, request{method: http.MethodPost, path: r.path("CreateFromPickList", pickListID)}, &out, entityPickList)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseOrderResource) Print(ctx context.Context, id uint, format string) (*File, error) {
	return r.c.download(ctx, r.path("Print", id), printQuery(format, false))
}

func (r *PurchaseOrderResource) PrintToStorage(ctx context.Context, id uint) (*StoredDocument, error) {
	var out StoredDocument
	err := r.c.call(ctx, request{method: http.MethodGet, path: r.path("Print", id), query: printQuery("pdf", true)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseOrderResource) Export(ctx context.Context, format string, opts ListOptions) (*File, error) {
	return r.export(ctx, format, opts)
}

func printQuery(format string, store bool) url.Values {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	if store {
		q.Set("store", "true")
	}
	return q
}
