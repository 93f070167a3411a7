package handler

import (
	"github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AssemblyHandler handles assembly (bill of materials) endpoints
type AssemblyHandler struct {
	BaseHandler
	assemblyService *catalog.AssemblyService
}

// NewAssemblyHandler creates a new AssemblyHandler
func NewAssemblyHandler(assemblyService *catalog.AssemblyService) *AssemblyHandler {
	return &AssemblyHandler{assemblyService: assemblyService}
}

// GetAll godoc
// @Summary      List assemblies
// @Tags         assemblies
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, code, name, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Param        categoryId query int false "Category ID"
// @Success      200 {object} dto.Response{data=shared.Paginated[catalog.AssemblyResponse]}
// @Security     BearerAuth
// @Router       /Assembly/GetAll [get]
func (h *AssemblyHandler) GetAll(c *gin.Context) {
	var q catalog.AssemblyListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.assemblyService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get assembly
// @Tags         assemblies
// @Produce      json
// @Param        id path int true "Assembly ID"
// @Success      200 {object} dto.Response{data=catalog.AssemblyResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/GetById/{id} [get]
func (h *AssemblyHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	assembly, err := h.assemblyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assembly)
}

// Create godoc
// @Summary      Create assembly
// @Description  Components naming the same item are merged.
// @Tags         assemblies
// @Accept       json
// @Produce      json
// @Param        request body catalog.AssemblyRequest true "Assembly"
// @Success      201 {object} dto.Response{data=catalog.AssemblyResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/Create [post]
func (h *AssemblyHandler) Create(c *gin.Context) {
	var req catalog.AssemblyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	assembly, err := h.assemblyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, assembly)
}

// Update godoc
// @Summary      Update assembly
// @Description  The component list replaces the existing one.
// @Tags         assemblies
// @Accept       json
// @Produce      json
// @Param        id path int true "Assembly ID"
// @Param        request body catalog.AssemblyRequest true "Assembly"
// @Success      200 {object} dto.Response{data=catalog.AssemblyResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/Update/{id} [put]
func (h *AssemblyHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalog.AssemblyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	assembly, err := h.assemblyService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assembly)
}

// Delete godoc
// @Summary      Delete assembly
// @Tags         assemblies
// @Produce      json
// @Param        id path int true "Assembly ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/Delete/{id} [delete]
func (h *AssemblyHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.assemblyService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Assembly deleted")
}

// Expand godoc
// @Summary      Expand assembly
// @Description  Items needed to build some units of the assembly, against current stock.
// @Tags         assemblies
// @Produce      json
// @Param        id path int true "Assembly ID"
// @Param        units query int true "Units to build" minimum(1)
// @Success      200 {object} dto.Response{data=catalog.ExpandResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/Expand/{id} [get]
func (h *AssemblyHandler) Expand(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalog.ExpandRequest
	if !h.bindQuery(c, &req) {
		return
	}
	expansion, err := h.assemblyService.Expand(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expansion)
}

// Export godoc
// @Summary      Export assemblies
// @Description  One row per component.
// @Tags         assemblies
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "File format" Enums(xlsx, csv) default(xlsx)
// @Param        search query string false "Search term"
// @Param        categoryId query int false "Category ID"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Assembly/Export [get]
func (h *AssemblyHandler) Export(c *gin.Context) {
	var q catalog.AssemblyListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	file, err := h.assemblyService.Export(c.Request.Context(), q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, file)
}
