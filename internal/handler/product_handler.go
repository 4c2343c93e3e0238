package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/service"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// ProductHandler handles the storefront catalog endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts handles GET /v1/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	category := c.Query("category")
	search := c.Query("search")
	page, limit := pageParams(c)

	products, total, err := h.productService.GetProducts(c.Request.Context(), category, search, page, limit)
	if err != nil {
		respondError(c, err, "Failed to get products")
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", gin.H{
		"products": products,
	}, page, limit, total)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved successfully", product)
}

// Quote handles POST /v1/products/:id/quote
func (h *ProductHandler) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	quote, err := h.productService.Quote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to quote product")
		return
	}
	utils.Success(c, http.StatusOK, "Quote generated", quote)
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
