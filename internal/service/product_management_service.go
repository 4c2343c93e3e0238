package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// ProductManagementService handles admin product CRUD operations.
type ProductManagementService struct {
	store ProductStore
	cache ProductInvalidator
}

// NewProductManagementService constructs a ProductManagementService. cache may be nil.
func NewProductManagementService(store ProductStore, cache ProductInvalidator) *ProductManagementService {
	return &ProductManagementService{store: store, cache: cache}
}

// ProductRequest is the admin payload for creating or replacing a product.
// Node ids sent back from a previous read are preserved; new nodes get
// fresh ids.
type ProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	BasePrice   float64          `json:"basePrice"`
	Images      []string         `json:"images"`
	Variants    []models.Variant `json:"variants"`
	Addons      []models.Addon   `json:"addons"`
	IsActive    *bool            `json:"isActive"`
}

// GetProduct returns a product by id, including inactive ones.
func (s *ProductManagementService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if repository.ErrNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListProducts returns products for the admin panel.
func (s *ProductManagementService) ListProducts(ctx context.Context, filter *repository.ProductFilter) ([]models.Product, int, error) {
	products, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, int(total), nil
}

// CreateProduct validates and stores a new product.
func (s *ProductManagementService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	p := &models.Product{IsActive: true}
	applyProductRequest(p, req)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.AssignIDs()

	if err := s.store.Create(ctx, p); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: slug %q already exists", utils.ErrInvalidProduct, p.Slug)
		}
		return nil, err
	}
	log.Info().Str("product_id", p.ID.Hex()).Str("slug", p.Slug).Msg("Product created")
	return p, nil
}

// UpdateProduct replaces a product's content and drops its cache entry.
func (s *ProductManagementService) UpdateProduct(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductRequest(p, req)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.AssignIDs()

	if err := s.store.Update(ctx, p); err != nil {
		if repository.ErrNotFound(err) {
			return nil, utils.ErrProductNotFound
		}
		if repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: slug %q already exists", utils.ErrInvalidProduct, p.Slug)
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	log.Info().Str("product_id", id).Msg("Product updated")
	return p, nil
}

// DeleteProduct removes a product.
func (s *ProductManagementService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if repository.ErrNotFound(err) {
			return utils.ErrProductNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	log.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

func (s *ProductManagementService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("product_id", id).Msg("Failed to invalidate product cache")
	}
}

func applyProductRequest(p *models.Product, req *ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Slug = slug.Make(req.Slug)
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	p.Description = req.Description
	p.Category = req.Category
	p.BasePrice = req.BasePrice
	p.Images = req.Images
	p.Variants = req.Variants
	p.Addons = req.Addons
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

// validateProduct checks the shape the engine relies on: named groups with
// unique names among siblings, options with a value, known variant types
// and non-negative prices.
func validateProduct(p *models.Product) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", utils.ErrInvalidProduct, fmt.Sprintf(format, args...))
	}

	if p.Name == "" {
		return invalid("name is required")
	}
	if p.Slug == "" {
		return invalid("slug is required when the name has no letters or digits")
	}
	if p.BasePrice < 0 {
		return invalid("basePrice must be >= 0")
	}

	seen := map[string]bool{}
	for _, v := range p.Variants {
		if err := checkGroup(seen, v.Name, v.Type, len(v.Options)); err != nil {
			return invalid("variant %q: %v", v.Name, err)
		}
		for _, o := range v.Options {
			if err := checkOption(o.Label, o.Value); err != nil {
				return invalid("variant %q: %v", v.Name, err)
			}
			subSeen := map[string]bool{}
			for _, sv := range o.SubVariants {
				if err := checkGroup(subSeen, sv.Name, sv.Type, len(sv.Options)); err != nil {
					return invalid("%s=%s > %q: %v", v.Name, o.Value, sv.Name, err)
				}
				for _, so := range sv.Options {
					if err := checkOption(so.Label, so.Value); err != nil {
						return invalid("%s=%s > %q: %v", v.Name, o.Value, sv.Name, err)
					}
					subSubSeen := map[string]bool{}
					for _, ssv := range so.SubSubVariants {
						if err := checkGroup(subSubSeen, ssv.Name, ssv.Type, len(ssv.Options)); err != nil {
							return invalid("%s=%s > %s=%s > %q: %v", v.Name, o.Value, sv.Name, so.Value, ssv.Name, err)
						}
						for _, sso := range ssv.Options {
							if err := checkOption(sso.Label, sso.Value); err != nil {
								return invalid("%s=%s > %s=%s > %q: %v", v.Name, o.Value, sv.Name, so.Value, ssv.Name, err)
							}
						}
					}
				}
			}
		}
	}

	addonSeen := map[string]bool{}
	for _, a := range p.Addons {
		if a.Name == "" {
			return invalid("addon name is required")
		}
		if addonSeen[a.Name] {
			return invalid("duplicate addon %q", a.Name)
		}
		addonSeen[a.Name] = true
		for _, o := range a.Options {
			if o.Label == "" {
				return invalid("addon %q: option label is required", a.Name)
			}
			if o.Price < 0 {
				return invalid("addon %q: option %q price must be >= 0", a.Name, o.Label)
			}
		}
	}
	return nil
}

func checkGroup(seen map[string]bool, name string, typ models.VariantType, options int) error {
	switch {
	case name == "":
		return fmt.Errorf("name is required")
	case seen[name]:
		return fmt.Errorf("duplicate name")
	case !typ.Valid():
		return fmt.Errorf("unknown type %q", typ)
	case options == 0:
		return fmt.Errorf("at least one option is required")
	}
	seen[name] = true
	return nil
}

// checkOption accepts negative stock: an oversold leaf must stay editable.
func checkOption(label, value string) error {
	if value == "" {
		return fmt.Errorf("option %q: value is required", label)
	}
	return nil
}
