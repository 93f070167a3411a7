package handler

import (
	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/application/reporting"
	"github.com/doorsets/backend/internal/infrastructure/importer"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportFileField is the multipart field carrying the CSV
const ImportFileField = "file"

// ItemHandler handles inventory item endpoints
type ItemHandler struct {
	BaseHandler
	itemService      *catalogapp.ItemService
	dashboardService *reporting.DashboardService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *catalogapp.ItemService, dashboardService *reporting.DashboardService) *ItemHandler {
	return &ItemHandler{itemService: itemService, dashboardService: dashboardService}
}

// GetAll godoc
// @Summary      List items
// @Description  Paged item list. Search matches code, name and description.
// @Tags         items
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, code, name, quantity, reorderLevel, unitCost, location, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Param        categoryId query int false "Category ID"
// @Param        supplierId query int false "Supplier ID"
// @Param        lowStock query bool false "Only items at or below their reorder level"
// @Param        isActive query bool false "Active flag"
// @Success      200 {object} dto.Response{data=shared.Paginated[catalog.ItemResponse]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/GetAll [get]
func (h *ItemHandler) GetAll(c *gin.Context) {
	var q catalogapp.ItemListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.itemService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/GetById/{id} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create godoc
// @Summary      Create item
// @Description  Creates an item. An opening quantity is recorded as an adjustment movement.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request body catalog.ItemRequest true "Item"
// @Success      201 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Create [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalogapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update godoc
// @Summary      Update item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path int true "Item ID"
// @Param        request body catalog.ItemRequest true "Item"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Update/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.itemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete item
// @Description  Fails with IN_USE while an assembly, pick list or purchase order references the item.
// @Tags         items
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Delete/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.itemService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Item deleted")
}

// AdjustStock godoc
// @Summary      Set stock on hand
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path int true "Item ID"
// @Param        request body catalog.AdjustStockRequest true "New quantity"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/AdjustStock/{id} [post]
func (h *ItemHandler) AdjustStock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.itemService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Movements godoc
// @Summary      Stock ledger of an item
// @Tags         items
// @Produce      json
// @Param        id path int true "Item ID"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        reason query string false "Movement reason" Enums(receipt, production, adjustment, import)
// @Success      200 {object} dto.Response{data=shared.Paginated[catalog.MovementResponse]}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Movements/{id} [get]
func (h *ItemHandler) Movements(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var q catalogapp.MovementListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.itemService.Movements(c.Request.Context(), id, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// LowStock godoc
// @Summary      Items due for reordering
// @Description  Active items at or below their reorder level, furthest below first, with a suggested order quantity.
// @Tags         items
// @Produce      json
// @Success      200 {object} dto.Response{data=[]reporting.LowStockItemResponse}
// @Security     BearerAuth
// @Router       /Item/LowStock [get]
func (h *ItemHandler) LowStock(c *gin.Context) {
	items, err := h.dashboardService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Export godoc
// @Summary      Export items
// @Description  Same filters as GetAll, without paging.
// @Tags         items
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Param        categoryId query int false "Category ID"
// @Param        supplierId query int false "Supplier ID"
// @Param        lowStock query bool false "Only low stock items"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Export [get]
func (h *ItemHandler) Export(c *gin.Context) {
	var q catalogapp.ItemListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.itemService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}

// Import godoc
// @Summary      Import items from CSV
// @Description  Header row required; code and name columns are mandatory. Mode insert skips existing codes, upsert updates them.
// @Tags         items
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Param        mode query string false "Import mode" Enums(insert, upsert) default(insert)
// @Success      200 {object} dto.Response{data=catalog.ImportResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Security     BearerAuth
// @Router       /Item/Import [post]
func (h *ItemHandler) Import(c *gin.Context) {
	mode, err := importer.ParseMode(c.Query("mode"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fh, err := c.FormFile(ImportFileField)
	if err != nil {
		h.bindError(c, err, "A CSV file is required in the \""+ImportFileField+"\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	result, err := h.itemService.Import(c.Request.Context(), f, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
