package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/service"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// OrderHandler handles order placement and the admin order lifecycle.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}
	stock := result.StockMeta()
	msg := "Order created successfully"
	if stock.Partial() {
		msg = "Order created; some stock counters were not adjusted"
	}
	utils.SuccessWithStock(c, http.StatusCreated, msg, result, stock)
}

// GetOrder handles GET /v1/orders/:id and GET /v1/admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved successfully", order)
}

// ListOrders handles GET /v1/admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req service.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}
	if req.Status != nil && !models.OrderStatus(*req.Status).Valid() {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown order status")
		return
	}

	result, err := h.orderService.ListOrders(&req)
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", result.Orders, result.Page, result.Limit, result.TotalItems)
}

// MarkPaid handles POST /v1/admin/orders/:id/pay
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	order, err := h.orderService.MarkPaid(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}
	utils.Success(c, http.StatusOK, "Order marked as paid", order)
}

// MarkDelivered handles POST /v1/admin/orders/:id/deliver
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	order, err := h.orderService.MarkDelivered(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}
	utils.Success(c, http.StatusOK, "Order marked as delivered", order)
}

// CancelOrder handles POST /v1/admin/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	result, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to cancel order")
		return
	}
	stock := result.StockMeta()
	msg := "Order cancelled"
	if stock.Partial() {
		msg = "Order cancelled; some stock counters were not restored"
	}
	utils.SuccessWithStock(c, http.StatusOK, msg, result, stock)
}
