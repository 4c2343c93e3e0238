package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Stock      *StockMeta  `json:"stock,omitempty"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// StockMeta summarises the stock ledger run behind an order write so the
// admin panel can flag partial adjustments without walking every node.
type StockMeta struct {
	Items       int `json:"items"`
	FailedItems int `json:"failedItems"`
	Applied     int `json:"applied"`
	Skipped     int `json:"skipped"`
}

// Partial reports whether any item or node was not adjusted.
func (m *StockMeta) Partial() bool {
	return m != nil && (m.FailedItems > 0 || m.Skipped > 0)
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	write(c, code, Response{Success: true, Message: message, Data: data})
}

// SuccessWithPagination writes a success response with pagination metadata.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	write(c, code, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta: Meta{Pagination: &Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: totalItems,
			TotalPages: (totalItems + limit - 1) / limit,
		}},
	})
}

// SuccessWithStock writes a success response carrying the ledger summary.
func SuccessWithStock(c *gin.Context, code int, message string, data interface{}, stock *StockMeta) {
	write(c, code, Response{Success: true, Message: message, Data: data, Meta: Meta{Stock: stock}})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithData(c, code, errCode, message, nil)
}

// ErrorWithData writes an error response that still carries a payload, such
// as the per-store report of a degraded health check.
func ErrorWithData(c *gin.Context, code int, errCode, message string, data interface{}) {
	write(c, code, Response{
		Message: message,
		Data:    data,
		Error:   &ErrorInfo{Code: errCode, Message: message},
	})
}

// ErrorFrom writes an error response using err's message as the API code.
func ErrorFrom(c *gin.Context, code int, err error, message string) {
	Error(c, code, err.Error(), message)
}

func write(c *gin.Context, code int, resp Response) {
	resp.Code = code
	resp.Meta.RequestID = requestID(c)
	resp.Meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	c.JSON(code, resp)
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
