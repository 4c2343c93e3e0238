package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// memOrders mimics the guarded UPDATE ... WHERE status = ANY(...) of the
// Postgres repository.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[string]*models.Order)}
}

func (m *memOrders) Create(o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) List(filter *repository.OrderFilter) (*repository.OrderListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := &repository.OrderListResult{Page: 1, Limit: 50}
	for _, o := range m.orders {
		if filter.Status != nil && string(o.Status) != *filter.Status {
			continue
		}
		res.Orders = append(res.Orders, *o)
	}
	res.TotalItems = len(res.Orders)
	return res, nil
}

func (m *memOrders) Transition(id string, to models.OrderStatus, from ...models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = to
			now := time.Now()
			switch to {
			case models.OrderStatusPaid:
				o.PaidAt = &now
			case models.OrderStatusDelivered:
				o.DeliveredAt = &now
			case models.OrderStatusCancelled:
				o.CancelledAt = &now
			}
			cp := *o
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memOrders) ListPendingBefore(cutoff time.Time, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.Status == models.OrderStatusPending && o.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

type orderFixture struct {
	product *models.Product
	store   *memStore
	orders  *memOrders
	notes   *recordingNotifier
	svc     *OrderService
}

func newOrderFixture(t *testing.T, strict bool) *orderFixture {
	t.Helper()
	p := teeProduct(t)
	store := newMemStore(p)
	orders := newMemOrders()
	notes := &recordingNotifier{}
	products := NewProductService(store, nil)
	ledger := NewStockLedgerService(store, nil, notes, strict)
	return &orderFixture{
		product: p,
		store:   store,
		orders:  orders,
		notes:   notes,
		svc:     NewOrderService(orders, products, ledger, notes, strict),
	}
}

func (f *orderFixture) matteStock(t *testing.T) int {
	t.Helper()
	return f.store.stock(f.product.ID.Hex(), addressOf(t, f.product, blackLMatte()))
}

func (f *orderFixture) place(t *testing.T, qty int) *OrderResult {
	t.Helper()
	res, err := f.svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []OrderItemRequest{{
			ProductID:        f.product.ID.Hex(),
			Quantity:         qty,
			SelectedVariants: blackLMatte(),
			SelectedAddons:   []models.SelectedAddon{{AddonName: "Gift Wrap", OptionLabel: "Box", Quantity: 1}},
		}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return res
}

func TestOrderService_CreatePricesAndReducesStock(t *testing.T) {
	f := newOrderFixture(t, false)
	res := f.place(t, 2)

	if res.Order.Status != models.OrderStatusPending {
		t.Errorf("Status = %s, want pending", res.Order.Status)
	}
	if got := res.Order.Items[0].UnitPrice; got != 1400 {
		t.Errorf("UnitPrice = %v, want 1400", got)
	}
	if res.Order.TotalPrice != 2800 {
		t.Errorf("TotalPrice = %v, want 2800", res.Order.TotalPrice)
	}
	if len(res.Stock) != 1 || res.Stock[0].Applied() != 1 {
		t.Errorf("stock result = %+v", res.Stock)
	}
	if got := f.matteStock(t); got != 5 {
		t.Errorf("Matte stock = %d, want 5", got)
	}
	if len(f.notes.orders) != 1 {
		t.Errorf("order events = %d, want 1", len(f.notes.orders))
	}
	if m := res.StockMeta(); m.Items != 1 || m.Applied != 1 || m.FailedItems != 0 {
		t.Errorf("StockMeta = %+v", *m)
	}
}

func TestOrderResult_StockMeta(t *testing.T) {
	res := &OrderResult{Stock: []ItemResult{
		{Success: true, Nodes: []NodeResult{{Outcome: OutcomeApplied}, {Outcome: OutcomePathNotResolved}}},
		{Failure: FailureProductNotFound},
		{Success: true, Nodes: []NodeResult{{Outcome: OutcomeApplied}, {Outcome: OutcomeInsufficientStock}}},
	}}
	want := utils.StockMeta{Items: 3, FailedItems: 1, Applied: 2, Skipped: 2}
	m := res.StockMeta()
	if *m != want {
		t.Errorf("StockMeta = %+v, want %+v", *m, want)
	}
	if !m.Partial() {
		t.Error("Partial = false with skipped nodes")
	}
}

func TestOrderService_CancelTwiceRestoresOnce(t *testing.T) {
	f := newOrderFixture(t, false)
	id := f.place(t, 3).Order.ID

	if _, err := f.svc.CancelOrder(context.Background(), id); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := f.svc.CancelOrder(context.Background(), id); !errors.Is(err, utils.ErrOrderAlreadyCancelled) {
		t.Errorf("second cancel err = %v, want ErrOrderAlreadyCancelled", err)
	}
	if got := f.matteStock(t); got != 7 {
		t.Errorf("Matte stock = %d, want 7", got)
	}
}

func TestOrderService_ConcurrentCancelsRestoreOnce(t *testing.T) {
	f := newOrderFixture(t, false)
	id := f.place(t, 3).Order.ID

	const callers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := f.svc.CancelOrder(context.Background(), id); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("successful cancels = %d, want 1", succeeded)
	}
	if got := f.matteStock(t); got != 7 {
		t.Errorf("Matte stock = %d, want 7", got)
	}
}

func TestOrderService_StatusLifecycle(t *testing.T) {
	f := newOrderFixture(t, false)
	id := f.place(t, 1).Order.ID

	if _, err := f.svc.MarkDelivered(id); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Errorf("deliver pending err = %v, want ErrInvalidStatusTransition", err)
	}
	paid, err := f.svc.MarkPaid(id)
	if err != nil || paid.PaidAt == nil {
		t.Fatalf("MarkPaid = %+v, %v", paid, err)
	}
	if _, err := f.svc.MarkPaid(id); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Errorf("pay twice err = %v, want ErrInvalidStatusTransition", err)
	}
	delivered, err := f.svc.MarkDelivered(id)
	if err != nil || delivered.Status != models.OrderStatusDelivered {
		t.Fatalf("MarkDelivered = %+v, %v", delivered, err)
	}

	// Delivered orders can still be cancelled, e.g. after a return.
	if _, err := f.svc.CancelOrder(context.Background(), id); err != nil {
		t.Errorf("cancel delivered: %v", err)
	}
	if _, err := f.svc.MarkPaid(id); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Errorf("pay cancelled err = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestOrderService_UnknownOrder(t *testing.T) {
	f := newOrderFixture(t, false)
	for _, id := range []string{"not-a-uuid", "7f1c4c1e-5b0a-4d7e-9a57-0c1f3f5e2b10"} {
		if _, err := f.svc.GetOrder(id); !errors.Is(err, utils.ErrOrderNotFound) {
			t.Errorf("GetOrder(%q) err = %v, want ErrOrderNotFound", id, err)
		}
		if _, err := f.svc.CancelOrder(context.Background(), id); !errors.Is(err, utils.ErrOrderNotFound) {
			t.Errorf("CancelOrder(%q) err = %v, want ErrOrderNotFound", id, err)
		}
	}
}

func TestOrderService_CreateRejects(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItemRequest
		want  error
	}{
		{"empty", nil, utils.ErrEmptyOrder},
		{"zero quantity", []OrderItemRequest{{Quantity: 0}}, utils.ErrInvalidQuantity},
		{"unknown product", []OrderItemRequest{{ProductID: "000000000000000000000000", Quantity: 1}}, utils.ErrProductNotFound},
		{"missing required variant", []OrderItemRequest{{Quantity: 1}}, utils.ErrMissingVariants},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, false)
			for i := range tt.items {
				if tt.items[i].ProductID == "" {
					tt.items[i].ProductID = f.product.ID.Hex()
				}
			}
			_, err := f.svc.CreateOrder(context.Background(), &CreateOrderRequest{CustomerName: "A", CustomerEmail: "a@b.c", Items: tt.items})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(f.orders.orders) != 0 {
				t.Error("rejected order was persisted")
			}
		})
	}
}

func TestOrderService_StrictStockRejectsBeforeWriting(t *testing.T) {
	f := newOrderFixture(t, true)
	_, err := f.svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []OrderItemRequest{{ProductID: f.product.ID.Hex(), Quantity: 8, SelectedVariants: blackLMatte()}},
	})
	if !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := f.matteStock(t); got != 7 {
		t.Errorf("Matte stock = %d, want 7", got)
	}
}

func TestOrderService_ExpirePendingOrders(t *testing.T) {
	f := newOrderFixture(t, false)
	stale := f.place(t, 2).Order.ID
	paid := f.place(t, 1).Order.ID
	if _, err := f.svc.MarkPaid(paid); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if got := f.matteStock(t); got != 4 {
		t.Fatalf("Matte stock after orders = %d, want 4", got)
	}

	n, err := f.svc.ExpirePendingOrders(context.Background(), time.Now().Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("ExpirePendingOrders: %v", err)
	}
	if n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}
	if o, _ := f.svc.GetOrder(stale); !o.IsCancelled() {
		t.Errorf("stale order status = %s, want cancelled", o.Status)
	}
	if o, _ := f.svc.GetOrder(paid); o.Status != models.OrderStatusPaid {
		t.Errorf("paid order status = %s, want paid", o.Status)
	}
	if got := f.matteStock(t); got != 6 {
		t.Errorf("Matte stock = %d, want 6", got)
	}

	// Nothing is older than a cutoff in the past.
	if n, _ := f.svc.ExpirePendingOrders(context.Background(), time.Now().Add(-time.Hour), 10); n != 0 {
		t.Errorf("second pass expired = %d, want 0", n)
	}
}
