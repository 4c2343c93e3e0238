package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/sse"
	"github.com/atelierhq/storefront_api/internal/utils"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// OrderStore persists orders.
type OrderStore interface {
	Create(o *models.Order) error
	GetByID(id string) (*models.Order, error)
	List(filter *repository.OrderFilter) (*repository.OrderListResult, error)
	Transition(id string, to models.OrderStatus, from ...models.OrderStatus) (*models.Order, error)
	ListPendingBefore(cutoff time.Time, limit int) ([]models.Order, error)
}

// OrderService places orders and drives their status lifecycle.
type OrderService struct {
	orders      OrderStore
	products    *ProductService
	ledger      *StockLedgerService
	notifier    sse.OrderNotifier
	strictStock bool
}

// NewOrderService creates a new OrderService. With strictStock set, orders
// whose quoted availability is below the requested quantity are rejected
// before anything is written.
func NewOrderService(
	orders OrderStore,
	products *ProductService,
	ledger *StockLedgerService,
	notifier sse.OrderNotifier,
	strictStock bool,
) *OrderService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &OrderService{
		orders:      orders,
		products:    products,
		ledger:      ledger,
		notifier:    notifier,
		strictStock: strictStock,
	}
}

// OrderItemRequest is one line of a customer order.
type OrderItemRequest struct {
	ProductID        string                   `json:"productId" binding:"required"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants []models.SelectedVariant `json:"selectedVariants"`
	SelectedAddons   []models.SelectedAddon   `json:"selectedAddons"`
}

// CreateOrderRequest is the storefront checkout payload.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName" binding:"required"`
	CustomerEmail string             `json:"customerEmail" binding:"required,email"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderResult is an order plus the ledger outcome of the write that
// accompanied it.
type OrderResult struct {
	Order *models.Order `json:"order"`
	Stock []ItemResult  `json:"stock,omitempty"`
}

// StockMeta summarises Stock for the response envelope.
func (r *OrderResult) StockMeta() *utils.StockMeta {
	m := &utils.StockMeta{Items: len(r.Stock)}
	for _, item := range r.Stock {
		if !item.Success {
			m.FailedItems++
		}
		applied := item.Applied()
		m.Applied += applied
		m.Skipped += len(item.Nodes) - applied
	}
	return m
}

// CreateOrder prices every line server-side, persists the order and then
// reduces stock best-effort. Stock failures are reported, not fatal: the
// order has already been accepted.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResult, error) {
	if len(req.Items) == 0 {
		return nil, utils.ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for i, line := range req.Items {
		item, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
		total = total.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Items:         items,
		TotalPrice:    total.InexactFloat64(),
		Status:        models.OrderStatusPending,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.Info().
		Str("order_id", order.ID).
		Int("items", len(items)).
		Float64("total", order.TotalPrice).
		Msg("Order created")

	stock := s.ledger.ReduceStockForOrder(ctx, order.ID, order.Items)
	s.notifier.NotifyOrderCreated(order)
	return &OrderResult{Order: order, Stock: stock}, nil
}

// priceLine validates one line against its product and prices it.
func (s *OrderService) priceLine(ctx context.Context, line OrderItemRequest) (models.OrderItem, error) {
	if line.Quantity <= 0 {
		return models.OrderItem{}, utils.ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, line.ProductID)
	if err != nil {
		return models.OrderItem{}, err
	}

	cfg := p.Configuration(line.SelectedVariants, line.SelectedAddons)
	if v := variant.ValidateRequiredVariants(cfg); !v.IsValid {
		return models.OrderItem{}, fmt.Errorf("%w: %s", utils.ErrMissingVariants, strings.Join(v.MissingVariants, ", "))
	}
	if a := variant.ValidateRequiredAddons(cfg); !a.IsValid {
		return models.OrderItem{}, fmt.Errorf("%w: %s", utils.ErrMissingAddons, strings.Join(a.MissingAddons, ", "))
	}
	if s.strictStock && p.HasVariants() {
		if avail := variant.AvailableStock(cfg); avail < line.Quantity {
			return models.OrderItem{}, fmt.Errorf("%w: %s has %d available", utils.ErrInsufficientStock, p.Name, avail)
		}
	}

	return models.OrderItem{
		ProductID: p.ID.Hex(),
		Name:      p.Name,
		Quantity:  line.Quantity,
		UnitPrice: variant.FinalPrice(cfg),
		Variants:  line.SelectedVariants,
		Addons:    line.SelectedAddons,
	}, nil
}

// GetOrder returns an order by id.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrOrderNotFound
	}
	o, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListOrdersRequest holds request parameters for listing orders.
type ListOrdersRequest struct {
	Status        *string `form:"status"`
	CustomerEmail *string `form:"customerEmail"`
	StartDate     *string `form:"startDate"`
	EndDate       *string `form:"endDate"`
	Page          int     `form:"page"`
	Limit         int     `form:"limit"`
}

// ListOrders returns orders for the admin panel.
func (s *OrderService) ListOrders(req *ListOrdersRequest) (*repository.OrderListResult, error) {
	return s.orders.List(&repository.OrderFilter{
		Status:        req.Status,
		CustomerEmail: req.CustomerEmail,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Page:          req.Page,
		Limit:         req.Limit,
	})
}

// MarkPaid moves a pending order to paid.
func (s *OrderService) MarkPaid(id string) (*models.Order, error) {
	return s.transition(id, models.OrderStatusPaid, models.OrderStatusPending)
}

// MarkDelivered moves a paid order to delivered.
func (s *OrderService) MarkDelivered(id string) (*models.Order, error) {
	return s.transition(id, models.OrderStatusDelivered, models.OrderStatusPaid)
}

// CancelOrder cancels an order and restores its stock. The status flip is a
// guarded single-row update; only the caller whose update flipped the row
// restores, so concurrent or repeated cancels restore exactly once.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*OrderResult, error) {
	order, err := s.transition(id, models.OrderStatusCancelled,
		models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}

	stock := s.ledger.RestoreStockForCancelledOrder(ctx, order.ID, order.Items)
	log.Info().Str("order_id", order.ID).Int("items", len(order.Items)).Msg("Order cancelled, stock restored")
	return &OrderResult{Order: order, Stock: stock}, nil
}

func (s *OrderService) transition(id string, to models.OrderStatus, from ...models.OrderStatus) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrOrderNotFound
	}
	order, err := s.orders.Transition(id, to, from...)
	if err == nil {
		log.Info().Str("order_id", id).Str("status", string(to)).Msg("Order status changed")
		s.notifier.NotifyOrderStatusChanged(order)
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// The guard did not match: find out why.
	current, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() && to == models.OrderStatusCancelled {
		return nil, utils.ErrOrderAlreadyCancelled
	}
	return nil, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidStatusTransition, current.Status, to)
}

// ExpirePendingOrders cancels up to limit orders still pending at cutoff and
// restores their stock. Orders paid or cancelled in the meantime are
// skipped. It returns the number of orders it cancelled.
func (s *OrderService) ExpirePendingOrders(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.orders.ListPendingBefore(cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending orders: %w", err)
	}

	expired := 0
	for i := range stale {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		_, err := s.CancelOrder(ctx, stale[i].ID)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, utils.ErrOrderAlreadyCancelled), errors.Is(err, utils.ErrInvalidStatusTransition):
			log.Debug().Str("order_id", stale[i].ID).Msg("Pending order changed before expiry")
		default:
			log.Error().Err(err).Str("order_id", stale[i].ID).Msg("Failed to expire pending order")
		}
	}
	return expired, nil
}
