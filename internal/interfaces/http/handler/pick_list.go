package handler

import (
	productionapp "github.com/doorsets/backend/internal/application/production"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PickListHandler handles pick list endpoints
type PickListHandler struct {
	BaseHandler
	pickListService *productionapp.PickListService
}

// NewPickListHandler creates a new PickListHandler
func NewPickListHandler(pickListService *productionapp.PickListService) *PickListHandler {
	return &PickListHandler{pickListService: pickListService}
}

// run parses :id, calls action and answers with the pick list it returns
func (h *PickListHandler) run(c *gin.Context, action func(id uint) (*productionapp.PickListResponse, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	pl, err := action(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pl)
}

// runLine is run for actions that also address one line by :lineId
func (h *PickListHandler) runLine(c *gin.Context, action func(id, lineID uint) (*productionapp.PickListResponse, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseID(c, "lineId")
	if !ok {
		return
	}
	pl, err := action(id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pl)
}

// GetAll godoc
// @Summary      List pick lists
// @Description  Each pick list carries its stock warning flag.
// @Tags         pick-lists
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, number, title, status, dueDate, customerId, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Param        customerId query int false "Customer ID"
// @Param        status query string false "Status" Enums(open, in_production, completed, cancelled)
// @Success      200 {object} dto.Response{data=shared.Paginated[production.PickListResponse]}
// @Security     BearerAuth
// @Router       /PickList/GetAll [get]
func (h *PickListHandler) GetAll(c *gin.Context) {
	var q productionapp.PickListListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.pickListService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get pick list
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/GetById/{id} [get]
func (h *PickListHandler) GetByID(c *gin.Context) {
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		return h.pickListService.GetByID(c.Request.Context(), id)
	})
}

// Create godoc
// @Summary      Create pick list
// @Description  Lines and assemblies may be given up front.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        request body production.PickListRequest true "Pick list"
// @Success      201 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Create [post]
func (h *PickListHandler) Create(c *gin.Context) {
	var req productionapp.PickListRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pl, err := h.pickListService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pl)
}

// Update godoc
// @Summary      Update pick list header
// @Description  Lines in the body are ignored; use the line actions.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        request body production.PickListRequest true "Pick list"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Update/{id} [put]
func (h *PickListHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req productionapp.PickListRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pl, err := h.pickListService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pl)
}

// Delete godoc
// @Summary      Delete pick list
// @Description  Only open or cancelled pick lists can be deleted.
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Delete/{id} [delete]
func (h *PickListHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.pickListService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Pick list deleted")
}

// AddLine godoc
// @Summary      Add item line
// @Description  Merges into an existing line for the same item that did not come from an assembly.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        request body production.AddLineRequest true "Line"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/AddLine/{id} [post]
func (h *PickListHandler) AddLine(c *gin.Context) {
	var req productionapp.AddLineRequest
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.pickListService.AddLine(c.Request.Context(), id, req)
	})
}

// AddAssembly godoc
// @Summary      Add assembly
// @Description  Expands the assembly by units and merges the requirements per item and assembly.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        request body production.AddAssemblyRequest true "Assembly and units"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/AddAssembly/{id} [post]
func (h *PickListHandler) AddAssembly(c *gin.Context) {
	var req productionapp.AddAssemblyRequest
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.pickListService.AddAssembly(c.Request.Context(), id, req)
	})
}

// UpdateLine godoc
// @Summary      Change line quantity
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        lineId path int true "Line ID"
// @Param        request body production.UpdateLineRequest true "Quantity"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/UpdateLine/{id}/{lineId} [put]
func (h *PickListHandler) UpdateLine(c *gin.Context) {
	var req productionapp.UpdateLineRequest
	h.runLine(c, func(id, lineID uint) (*productionapp.PickListResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.pickListService.UpdateLine(c.Request.Context(), id, lineID, req)
	})
}

// RemoveLine godoc
// @Summary      Remove line
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        lineId path int true "Line ID"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/RemoveLine/{id}/{lineId} [delete]
func (h *PickListHandler) RemoveLine(c *gin.Context) {
	h.runLine(c, func(id, lineID uint) (*productionapp.PickListResponse, error) {
		return h.pickListService.RemoveLine(c.Request.Context(), id, lineID)
	})
}

// SetMadeOrder godoc
// @Summary      Mark line as ordered
// @Description  Clearing the flag also unlinks the purchase order.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        lineId path int true "Line ID"
// @Param        request body production.SetMadeOrderRequest true "Flag"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/SetMadeOrder/{id}/{lineId} [put]
func (h *PickListHandler) SetMadeOrder(c *gin.Context) {
	var req productionapp.SetMadeOrderRequest
	h.runLine(c, func(id, lineID uint) (*productionapp.PickListResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.pickListService.SetMadeOrder(c.Request.Context(), id, lineID, req)
	})
}

// LinkPurchaseOrder godoc
// @Summary      Link lines to a purchase order
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Param        request body production.LinkPurchaseOrderRequest true "Purchase order and lines"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/LinkPurchaseOrder/{id} [post]
func (h *PickListHandler) LinkPurchaseOrder(c *gin.Context) {
	var req productionapp.LinkPurchaseOrderRequest
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		if !h.bindJSON(c, &req) {
			return nil, errAnswered
		}
		return h.pickListService.LinkPurchaseOrder(c.Request.Context(), id, req)
	})
}

// CheckStock godoc
// @Summary      Stock check
// @Description  Allocates stock to lines in line order and reports shortfalls and warnings.
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=production.StockCheckResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/CheckStock/{id} [get]
func (h *PickListHandler) CheckStock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	report, err := h.pickListService.CheckStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// StartProduction godoc
// @Summary      Start production
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/StartProduction/{id} [post]
func (h *PickListHandler) StartProduction(c *gin.Context) {
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		return h.pickListService.StartProduction(c.Request.Context(), id)
	})
}

// Complete godoc
// @Summary      Complete pick list
// @Description  Deducts stock for every line. Fails with INSUFFICIENT_STOCK on any shortfall.
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Complete/{id} [post]
func (h *PickListHandler) Complete(c *gin.Context) {
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		return h.pickListService.Complete(c.Request.Context(), id)
	})
}

// Cancel godoc
// @Summary      Cancel pick list
// @Tags         pick-lists
// @Produce      json
// @Param        id path int true "Pick list ID"
// @Success      200 {object} dto.Response{data=production.PickListResponse}
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Cancel/{id} [post]
func (h *PickListHandler) Cancel(c *gin.Context) {
	h.run(c, func(id uint) (*productionapp.PickListResponse, error) {
		return h.pickListService.Cancel(c.Request.Context(), id)
	})
}

// Print godoc
// @Summary      Print pick list
// @Description  PDF by default. With store=true the PDF is uploaded and a download link returned.
// @Tags         pick-lists
// @Produce      application/pdf,text/html,json
// @Param        id path int true "Pick list ID"
// @Param        format query string false "Output format" Enums(pdf, html) default(pdf)
// @Param        store query bool false "Upload to object storage"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response
// @Failure      504 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Print/{id} [get]
func (h *PickListHandler) Print(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	opts, ok := h.printOptions(c)
	if !ok {
		return
	}
	out, err := h.pickListService.Print(c.Request.Context(), id, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendPrint(c, out)
}

// Export godoc
// @Summary      Export pick lists
// @Description  One row per line.
// @Tags         pick-lists
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Param        customerId query int false "Customer ID"
// @Param        status query string false "Status" Enums(open, in_production, completed, cancelled)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /PickList/Export [get]
func (h *PickListHandler) Export(c *gin.Context) {
	var q productionapp.PickListListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.pickListService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}
