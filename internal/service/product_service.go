package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/utils"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// ProductStore is the catalog store behind the product services.
type ProductStore interface {
	StockStore
	List(ctx context.Context, filter *repository.ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductCache is the read-through cache in front of ProductStore. A miss
// is (nil, nil).
type ProductCache interface {
	ProductInvalidator
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
}

// ProductService provides storefront catalog reads and configuration quotes.
type ProductService struct {
	store ProductStore
	cache ProductCache
}

// NewProductService constructs a ProductService. cache may be nil.
func NewProductService(store ProductStore, cache ProductCache) *ProductService {
	return &ProductService{store: store, cache: cache}
}

// GetProducts returns active products with filters and pagination. It also
// returns total items.
func (s *ProductService) GetProducts(ctx context.Context, category, search string, page, limit int) ([]models.Product, int, error) {
	active := true
	products, total, err := s.store.List(ctx, &repository.ProductFilter{
		Category: category,
		Search:   search,
		IsActive: &active,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return products, int(total), nil
}

// GetProduct returns an active product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, utils.ErrProductNotFound
	}
	return p, nil
}

// load reads through the cache. Cache failures degrade to a store read.
func (s *ProductService) load(ctx context.Context, id string) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("Product cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if repository.ErrNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("Product cache write failed")
		}
	}
	return p, nil
}

// QuoteRequest is a customer's configuration of one product.
type QuoteRequest struct {
	SelectedVariants []models.SelectedVariant `json:"selectedVariants"`
	SelectedAddons   []models.SelectedAddon   `json:"selectedAddons"`
	Quantity         int                      `json:"quantity"`
}

// Quote is the priced, validated view of a configuration.
type Quote struct {
	ProductID      string                    `json:"productId"`
	Name           string                    `json:"name"`
	Quantity       int                       `json:"quantity"`
	UnitPrice      float64                   `json:"unitPrice"`
	Total          float64                   `json:"total"`
	InStock        bool                      `json:"inStock"`
	Summary        variant.Summary           `json:"summary"`
	Variants       variant.VariantValidation `json:"variantValidation"`
	Addons         variant.AddonValidation   `json:"addonValidation"`
	Image          string                    `json:"image,omitempty"`
	Specifications map[string]interface{}    `json:"specifications,omitempty"`
	Unresolved     []string                  `json:"unresolved,omitempty"`
}

// Quote prices a configuration. It never fails on selection problems: they
// show up in the validation and Unresolved fields instead.
func (s *ProductService) Quote(ctx context.Context, productID string, req QuoteRequest) (*Quote, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return quoteFor(p, req), nil
}

func quoteFor(p *models.Product, req QuoteRequest) *Quote {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	cfg := p.Configuration(req.SelectedVariants, req.SelectedAddons)
	summary := variant.GenerateSummary(cfg)

	q := &Quote{
		ProductID:      p.ID.Hex(),
		Name:           p.Name,
		Quantity:       req.Quantity,
		UnitPrice:      summary.TotalPrice,
		Total:          lineTotal(summary.TotalPrice, req.Quantity),
		Summary:        summary,
		Variants:       variant.ValidateRequiredVariants(cfg),
		Addons:         variant.ValidateRequiredAddons(cfg),
		Image:          variant.VariantImage(cfg),
		Specifications: variant.CombinedSpecifications(cfg),
	}
	if q.Image == "" && len(p.Images) > 0 {
		q.Image = p.Images[0]
	}
	// Products without variants have no per-node stock to check.
	q.InStock = !p.HasVariants() || summary.AvailableStock >= req.Quantity
	for _, err := range variant.Unresolved(cfg) {
		q.Unresolved = append(q.Unresolved, err.Error())
	}
	return q
}

// lineTotal multiplies a unit price by a quantity without float drift.
func lineTotal(unit float64, qty int) float64 {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(qty))).InexactFloat64()
}
