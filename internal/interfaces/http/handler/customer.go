package handler

import (
	"github.com/doorsets/backend/internal/application/common"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// GetAll godoc
// @Summary      List customers
// @Description  Search matches name, contact name and email.
// @Tags         customers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, name, contactName, email, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=shared.Paginated[partner.CustomerResponse]}
// @Security     BearerAuth
// @Router       /Customer/GetAll [get]
func (h *CustomerHandler) GetAll(c *gin.Context) {
	var q common.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.customerService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} dto.Response{data=partner.CustomerResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Customer/GetById/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Create godoc
// @Summary      Create customer
// @Description  Only the name is required.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partner.CustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=partner.CustomerResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Customer/Create [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Update godoc
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path int true "Customer ID"
// @Param        request body partner.CustomerRequest true "Customer"
// @Success      200 {object} dto.Response{data=partner.CustomerResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Customer/Update/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete customer
// @Description  Fails with IN_USE while pick lists or purchase orders reference the customer.
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Customer/Delete/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Customer deleted")
}

// Export godoc
// @Summary      Export customers
// @Tags         customers
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Customer/Export [get]
func (h *CustomerHandler) Export(c *gin.Context) {
	var q common.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.customerService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}
