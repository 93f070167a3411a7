package handler

import (
	purchasingapp "github.com/doorsets/backend/internal/application/purchasing"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchasingapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *purchasingapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

func (h *PurchaseOrderHandler) run(c *gin.Context, action func(id uint) (*purchasingapp.PurchaseOrderResponse, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	po, err := action(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

func (h *PurchaseOrderHandler) runLine(c *gin.Context, action func(id, lineID uint) (*purchasingapp.PurchaseOrderResponse, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseID(c, "lineId")
	if !ok {
		return
	}
	po, err := action(id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// GetAll godoc
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, number, status, orderDate, expectedDate, supplierId, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Param        supplierId query int false "Supplier ID"
// @Param        pickListId query int false "Pick list ID"
// @Param        status query string false "Status" Enums(draft, ordered, partially_received, received, cancelled)
// @Success      200 {object} dto.Response{data=shared.Paginated[purchasing.PurchaseOrderResponse]}
// @Security     BearerAuth
// @Router       /PurchaseOrder/GetAll [get]
func (h *PurchaseOrderHandler) GetAll(c *gin.Context) {
	var q purchasingapp.PurchaseOrderListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orderService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/GetById/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		return h.orderService.GetByID(c.Request.Context(), id)
	})
}

// Create godoc
// @Summary      Create purchase order
// @Description  Creates a draft. Lines without a unit cost use the item's cost.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body purchasing.PurchaseOrderRequest true "Purchase order"
// @Success      201 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Create [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req purchasingapp.PurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	po, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// Update godoc
// @Summary      Update purchase order header
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Param        request body purchasing.PurchaseOrderRequest true "Purchase order"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Update/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	var req purchasingapp.PurchaseOrderRequest
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.orderService.Update(c.Request.Context(), id, req)
	})
}

// Delete godoc
// @Summary      Delete purchase order
// @Description  Only drafts and cancelled orders can be deleted.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Delete/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Purchase order deleted")
}

// AddLine godoc
// @Summary      Add line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Param        request body purchasing.LineRequest true "Line"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/AddLine/{id} [post]
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	var req purchasingapp.LineRequest
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.orderService.AddLine(c.Request.Context(), id, req)
	})
}

// UpdateLine godoc
// @Summary      Change line quantity or cost
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Param        lineId path int true "Line ID"
// @Param        request body purchasing.UpdateLineRequest true "Line"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/UpdateLine/{id}/{lineId} [put]
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	var req purchasingapp.UpdateLineRequest
	h.runLine(c, func(id, lineID uint) (*purchasingapp.PurchaseOrderResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.orderService.UpdateLine(c.Request.Context(), id, lineID, req)
	})
}

// RemoveLine godoc
// @Summary      Remove line
// @Tags         purchase-orders
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Param        lineId path int true "Line ID"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/RemoveLine/{id}/{lineId} [delete]
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
	h.runLine(c, func(id, lineID uint) (*purchasingapp.PurchaseOrderResponse, error) {
		return h.orderService.RemoveLine(c.Request.Context(), id, lineID)
	})
}

// Place godoc
// @Summary      Place order
// @Description  Moves a draft with at least one line to ordered and sets the order date.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Place/{id} [post]
func (h *PurchaseOrderHandler) Place(c *gin.Context) {
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		return h.orderService.Place(c.Request.Context(), id)
	})
}

// Receive godoc
// @Summary      Receive goods
// @Description  Adds the received quantities to item stock in one transaction.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Param        request body purchasing.ReceiveRequest true "Received quantities per line"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Receive/{id} [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	var req purchasingapp.ReceiveRequest
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.orderService.Receive(c.Request.Context(), id, req)
	})
}

// Cancel godoc
// @Summary      Cancel purchase order
// @Description  Allowed before anything has been received.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path int true "Purchase order ID"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Cancel/{id} [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.run(c, func(id uint) (*purchasingapp.PurchaseOrderResponse, error) {
		return h.orderService.Cancel(c.Request.Context(), id)
	})
}

// CreateFromPickList godoc
// @Summary      Raise purchase orders for a pick list
// @Description  One draft per supplier for the unordered shortfalls of the pick list. The affected lines are linked to the new orders.
// @Tags         purchase-orders
// @Produce      json
// @Param        pickListId path int true "Pick list ID"
// @Success      201 {object} dto.Response{data=purchasing.CreateFromPickListResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/CreateFromPickList/{pickListId} [post]
func (h *PurchaseOrderHandler) CreateFromPickList(c *gin.Context) {
	pickListID, ok := h.parseID(c, "pickListId")
	if !ok {
		return
	}
	result, err := h.orderService.CreateFromPickList(c.Request.Context(), pickListID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Print godoc
// @Summary      Print purchase order
// @Description  PDF by default. With store=true the PDF is uploaded and a download link returned.
// @Tags         purchase-orders
// @Produce      application/pdf,text/html,json
// @Param        id path int true "Purchase order ID"
// @Param        format query string false "Output format" Enums(pdf, html) default(pdf)
// @Param        store query bool false "Upload to object storage"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response
// @Failure      504 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Print/{id} [get]
func (h *PurchaseOrderHandler) Print(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	opts, ok := h.printOptions(c)
	if !ok {
		return
	}
	out, err := h.orderService.Print(c.Request.Context(), id, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendPrint(c, out)
}

// Export godoc
// @Summary      Export purchase orders
// @Description  One row per line.
// @Tags         purchase-orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Param        supplierId query int false "Supplier ID"
// @Param        status query string false "Status"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /PurchaseOrder/Export [get]
func (h *PurchaseOrderHandler) Export(c *gin.Context) {
	var q purchasingapp.PurchaseOrderListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.orderService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}
