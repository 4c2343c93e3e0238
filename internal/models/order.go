package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one line of an order. Variants and Addons are the customer's
// selection embedded verbatim so a cancellation can re-walk the same path.
type OrderItem struct {
	ProductID string            `json:"productId"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice float64           `json:"unitPrice"`
	Variants  []SelectedVariant `json:"variants"`
	Addons    []SelectedAddon   `json:"addons,omitempty"`
}

// OrderItems is stored as a JSONB column.
type OrderItems []OrderItem

// Value implements driver.Valuer.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner.
func (o *OrderItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("order items: unsupported column type")
	}
	return json.Unmarshal(data, o)
}

// Order captures a customer order and its status timestamps.
type Order struct {
	ID            string      `db:"id" json:"id"`
	CustomerName  string      `db:"customer_name" json:"customerName"`
	CustomerEmail string      `db:"customer_email" json:"customerEmail"`
	Items         OrderItems  `db:"items" json:"items"`
	TotalPrice    float64     `db:"total_price" json:"totalPrice"`
	Status        OrderStatus `db:"status" json:"status"`
	PaidAt        *time.Time  `db:"paid_at" json:"paidAt,omitempty"`
	DeliveredAt   *time.Time  `db:"delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt   *time.Time  `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsCancelled reports whether the order has reached the terminal state.
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
