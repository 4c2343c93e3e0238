package sse

import (
	"time"

	"github.com/atelierhq/storefront_api/internal/models"
)

// StockNotifier is the interface the stock ledger uses to emit events.
type StockNotifier interface {
	NotifyStockChanged(e *StockEvent)
}

// OrderNotifier is the interface the order service uses to emit events.
type OrderNotifier interface {
	NotifyOrderCreated(o *models.Order)
	NotifyOrderStatusChanged(o *models.Order)
}

// HubNotifier implements StockNotifier and OrderNotifier using the SSE Hub.
type HubNotifier struct {
	hub          *Hub
	lowThreshold int
}

// NewHubNotifier creates a notifier backed by the given Hub. A stock.low
// event follows stock.changed whenever a leaf ends at or below lowThreshold.
func NewHubNotifier(hub *Hub, lowThreshold int) *HubNotifier {
	return &HubNotifier{hub: hub, lowThreshold: lowThreshold}
}

func (n *HubNotifier) NotifyStockChanged(e *StockEvent) {
	if n.hub.ClientCount() == 0 {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Event = EventStockChanged
	n.hub.Broadcast(EventStockChanged, e)

	if e.Stock <= n.lowThreshold {
		low := *e
		low.Event = EventStockLow
		n.hub.Broadcast(EventStockLow, &low)
	}
}

func (n *HubNotifier) NotifyOrderCreated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(EventOrderCreated, orderToEvent(EventOrderCreated, o))
}

func (n *HubNotifier) NotifyOrderStatusChanged(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(EventOrderStatusChanged, orderToEvent(EventOrderStatusChanged, o))
}

func orderToEvent(eventType EventType, o *models.Order) *OrderEvent {
	return &OrderEvent{
		Event:      eventType,
		OrderID:    o.ID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		Items:      len(o.Items),
		Timestamp:  time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyStockChanged(e *StockEvent)         {}
func (n *NopNotifier) NotifyOrderCreated(o *models.Order)       {}
func (n *NopNotifier) NotifyOrderStatusChanged(o *models.Order) {}
