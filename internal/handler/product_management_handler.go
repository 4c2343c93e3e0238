package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/service"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// ProductManagementHandler handles product CRUD HTTP endpoints.
type ProductManagementHandler struct {
	productMgmtService *service.ProductManagementService
}

// NewProductManagementHandler constructs a ProductManagementHandler.
func NewProductManagementHandler(productMgmtService *service.ProductManagementService) *ProductManagementHandler {
	return &ProductManagementHandler{productMgmtService: productMgmtService}
}

// ListProducts handles GET /v1/admin/products
func (h *ProductManagementHandler) ListProducts(c *gin.Context) {
	filter := &repository.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	filter.Page, filter.Limit = pageParams(c)
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		filter.IsActive = &active
	}

	products, total, err := h.productMgmtService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved", products, filter.Page, filter.Limit, total)
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductManagementHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productMgmtService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	utils.Success(c, http.StatusCreated, "Product created successfully", product)
}

// GetProduct handles GET /v1/admin/products/:id
func (h *ProductManagementHandler) GetProduct(c *gin.Context) {
	product, err := h.productMgmtService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", product)
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *ProductManagementHandler) UpdateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productMgmtService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *ProductManagementHandler) DeleteProduct(c *gin.Context) {
	if err := h.productMgmtService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted successfully", nil)
}
