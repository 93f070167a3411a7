package handler

import (
	"github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalog.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetAll godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        sortBy query string false "Sort field" Enums(id, name, createdAt, updatedAt)
// @Param        sortDir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=shared.Paginated[catalog.CategoryResponse]}
// @Security     BearerAuth
// @Router       /Category/GetAll [get]
func (h *CategoryHandler) GetAll(c *gin.Context) {
	var q common.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.categoryService.GetAll(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetByID godoc
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        id path int true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /Category/GetById/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        request body catalog.CategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Category/Create [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalog.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update godoc
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id path int true "Category ID"
// @Param        request body catalog.CategoryRequest true "Category"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Category/Update/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalog.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete godoc
// @Summary      Delete category
// @Description  Fails with IN_USE while items or assemblies belong to the category.
// @Tags         categories
// @Produce      json
// @Param        id path int true "Category ID"
// @Success      200 {object} dto.Response{data=dto.IDResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Category/Delete/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IDResponse{ID: id}, "Category deleted")
}
