package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/sse"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// LedgerFailure is a terminal per-item failure. It is data in the result
// slice, not an error: other items in the same call still run.
type LedgerFailure string

const (
	FailureProductNotFound      LedgerFailure = "PRODUCT_NOT_FOUND"
	FailureNoVariantsSpecified  LedgerFailure = "NO_VARIANTS_SPECIFIED"
	FailureProductHasNoVariants LedgerFailure = "PRODUCT_HAS_NO_VARIANTS"
	FailureInvalidQuantity      LedgerFailure = "INVALID_QUANTITY"
	FailureLookupFailed         LedgerFailure = "LOOKUP_FAILED"
)

// NodeOutcome is what happened to one addressed stock counter.
type NodeOutcome string

const (
	OutcomeApplied           NodeOutcome = "applied"
	OutcomePathNotResolved   NodeOutcome = "path_not_resolved"
	OutcomeInsufficientStock NodeOutcome = "insufficient_stock"
	OutcomeStoreError        NodeOutcome = "store_error"
)

// NodeResult reports one traversal of an item's selection.
type NodeResult struct {
	Path    []string        `json:"path"`
	Address variant.Address `json:"address,omitempty"`
	Delta   int             `json:"delta"`
	Stock   *int            `json:"stock,omitempty"`
	Outcome NodeOutcome     `json:"outcome"`
	Error   string          `json:"error,omitempty"`
}

// ItemResult reports the ledger outcome for one order line. Success is true
// whenever the item got past the terminal checks, even if some nodes were
// skipped; callers wanting strictness inspect Nodes.
type ItemResult struct {
	ProductID string        `json:"productId"`
	Success   bool          `json:"success"`
	Failure   LedgerFailure `json:"failure,omitempty"`
	Message   string        `json:"message,omitempty"`
	Nodes     []NodeResult  `json:"nodes,omitempty"`
}

// Applied counts the nodes whose counter actually moved.
func (r ItemResult) Applied() int {
	n := 0
	for _, node := range r.Nodes {
		if node.Outcome == OutcomeApplied {
			n++
		}
	}
	return n
}

// StockStore is the product store the ledger mutates.
type StockStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	IncrementLeafStock(ctx context.Context, productID string, addr variant.Address, delta int, requireAvailable bool) (repository.StockWrite, error)
}

// ProductInvalidator drops cached product documents.
type ProductInvalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

type direction int

const (
	reduce  direction = -1
	restore direction = 1
)

func (d direction) String() string {
	if d == reduce {
		return "reduce"
	}
	return "restore"
}

// StockLedgerService decrements leaf stock on order placement and restores
// it on cancellation.
type StockLedgerService struct {
	store           StockStore
	cache           ProductInvalidator
	notifier        sse.StockNotifier
	preventOversell bool
}

// NewStockLedgerService creates a new StockLedgerService. cache may be nil.
func NewStockLedgerService(store StockStore, cache ProductInvalidator, notifier sse.StockNotifier, preventOversell bool) *StockLedgerService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &StockLedgerService{
		store:           store,
		cache:           cache,
		notifier:        notifier,
		preventOversell: preventOversell,
	}
}

// ReduceStockForOrder subtracts each item's quantity from the stock counter
// its selection addresses. There is no cross-item transaction: items that
// fail do not roll back items that succeeded.
func (s *StockLedgerService) ReduceStockForOrder(ctx context.Context, orderID string, items []models.OrderItem) []ItemResult {
	return s.apply(ctx, orderID, items, reduce)
}

// RestoreStockForCancelledOrder adds each item's quantity back. It must run
// at most once per order; calling it twice double-counts.
func (s *StockLedgerService) RestoreStockForCancelledOrder(ctx context.Context, orderID string, items []models.OrderItem) []ItemResult {
	return s.apply(ctx, orderID, items, restore)
}

func (s *StockLedgerService) apply(ctx context.Context, orderID string, items []models.OrderItem, dir direction) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		res := s.applyItem(ctx, orderID, item, dir)
		if !res.Success {
			log.Error().
				Str("order_id", orderID).
				Str("product_id", item.ProductID).
				Str("direction", dir.String()).
				Str("failure", string(res.Failure)).
				Msg(res.Message)
		}
		results = append(results, res)
	}
	return results
}

func (s *StockLedgerService) applyItem(ctx context.Context, orderID string, item models.OrderItem, dir direction) ItemResult {
	res := ItemResult{ProductID: item.ProductID}

	if item.Quantity <= 0 {
		res.Failure, res.Message = FailureInvalidQuantity, "quantity must be positive"
		return res
	}
	product, err := s.store.GetByID(ctx, item.ProductID)
	if err != nil {
		if repository.ErrNotFound(err) {
			res.Failure, res.Message = FailureProductNotFound, "product not found"
		} else {
			res.Failure, res.Message = FailureLookupFailed, err.Error()
		}
		return res
	}
	if len(item.Variants) == 0 {
		res.Failure, res.Message = FailureNoVariantsSpecified, "no variants specified"
		return res
	}
	if !product.HasVariants() {
		res.Failure, res.Message = FailureProductHasNoVariants, "product has no variants"
		return res
	}

	res.Success = true
	delta := int(dir) * item.Quantity
	guard := s.preventOversell && dir == reduce
	groups := variant.Tree(product.Variants)

	for _, sel := range variant.Selections(item.Variants) {
		for _, trace := range variant.Walk(groups, sel, variant.Fuzzy) {
			node := NodeResult{Path: trace.Path.Labels(), Delta: delta}
			if trace.Err != nil {
				node.Outcome, node.Error = OutcomePathNotResolved, trace.Err.Error()
				log.Warn().
					Str("order_id", orderID).
					Str("product_id", item.ProductID).
					Str("path", trace.Path.String()).
					Err(trace.Err).
					Msg("Stock node not resolved, skipping")
				res.Nodes = append(res.Nodes, node)
				continue
			}

			node.Address = trace.Path.Address()
			s.write(ctx, orderID, product, trace.Path, guard, &node)
			res.Nodes = append(res.Nodes, node)
		}
	}

	if res.Applied() > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, item.ProductID); err != nil {
			log.Warn().Err(err).Str("product_id", item.ProductID).Msg("Failed to invalidate product cache")
		}
	}
	return res
}

// write performs one atomic increment and records its outcome on node.
func (s *StockLedgerService) write(ctx context.Context, orderID string, product *models.Product, path variant.Path, guard bool, node *NodeResult) {
	productID := product.ID.Hex()
	w, err := s.store.IncrementLeafStock(ctx, productID, node.Address, node.Delta, guard)
	if err != nil {
		node.Outcome, node.Error = OutcomeStoreError, err.Error()
		log.Error().Err(err).
			Str("order_id", orderID).
			Str("product_id", productID).
			Str("path", path.String()).
			Msg("Stock increment failed")
		return
	}
	if !w.Applied {
		if guard {
			node.Outcome = OutcomeInsufficientStock
			node.Stock = &w.Stock
		} else {
			node.Outcome = OutcomePathNotResolved
			node.Error = "node no longer exists"
		}
		log.Warn().
			Str("order_id", orderID).
			Str("product_id", productID).
			Str("path", path.String()).
			Str("outcome", string(node.Outcome)).
			Int("delta", node.Delta).
			Msg("Stock increment not applied")
		return
	}

	node.Outcome = OutcomeApplied
	node.Stock = &w.Stock
	log.Debug().
		Str("order_id", orderID).
		Str("product_id", productID).
		Str("path", path.String()).
		Int("delta", node.Delta).
		Int("stock", w.Stock).
		Msg("Stock updated")

	s.notifier.NotifyStockChanged(&sse.StockEvent{
		ProductID: productID,
		Product:   product.Name,
		Path:      path.String(),
		Address:   node.Address,
		Delta:     node.Delta,
		Stock:     w.Stock,
		OrderID:   orderID,
		Timestamp: time.Now(),
	})
}
