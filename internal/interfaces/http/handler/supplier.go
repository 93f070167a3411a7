package handler

import (
	"github.com/doorsets/backend/internal/application/common"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// GetAll godoc
// @Summary      List suppliers
// @Description  Search matches name, contact name and email.
// @Tags         suppliers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, name, contactName, email, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=shared.Paginated[partner.SupplierResponse]}
// @Security     BearerAuth
// @Router       /Supplier/GetAll [get]
func (h *SupplierHandler) GetAll(c *gin.Context) {
	var q common.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.supplierService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} dto.Response{data=partner.SupplierResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Supplier/GetById/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create godoc
// @Summary      Create supplier
// @Description  Only the name is required.
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partner.SupplierRequest true "Supplier"
// @Success      201 {object} dto.Response{data=partner.SupplierResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Supplier/Create [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update godoc
// @Summary      Update supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Param        request body partner.SupplierRequest true "Supplier"
// @Success      200 {object} dto.Response{data=partner.SupplierResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Supplier/Update/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete godoc
// @Summary      Delete supplier
// @Description  Fails with IN_USE while pick lists or purchase orders reference the supplier.
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Supplier/Delete/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Supplier deleted")
}

// Export godoc
// @Summary      Export suppliers
// @Tags         suppliers
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Supplier/Export [get]
func (h *SupplierHandler) Export(c *gin.Context) {
	var q common.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.supplierService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}
