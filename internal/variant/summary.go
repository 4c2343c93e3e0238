package variant

import "github.com/atelierhq/storefront_api/internal/models"

// SummaryStep is one resolved level of a selection.
type SummaryStep struct {
	Group         string  `json:"group"`
	Label         string  `json:"label"`
	Value         string  `json:"value"`
	PriceModifier float64 `json:"priceModifier"`
	SKU           string  `json:"sku,omitempty"`
}

// SummaryVariant describes one top-level selection for display.
type SummaryVariant struct {
	Name     string        `json:"name"`
	Steps    []SummaryStep `json:"steps"`
	Stock    int           `json:"stock"`
	Resolved bool          `json:"resolved"`
}

// SummaryAddon describes one selected add-on for display.
type SummaryAddon struct {
	Name      string  `json:"name"`
	Option    string  `json:"option"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Summary is the display-ready projection of a configuration.
type Summary struct {
	Variants       []SummaryVariant `json:"variants"`
	Addons         []SummaryAddon   `json:"addons"`
	TotalPrice     float64          `json:"totalPrice"`
	AvailableStock int              `json:"availableStock"`
}

// GenerateSummary builds the display projection of cfg.
func GenerateSummary(cfg models.ProductConfiguration) Summary {
	groups := Tree(cfg.Variants)
	s := Summary{
		Variants:       []SummaryVariant{},
		Addons:         []SummaryAddon{},
		TotalPrice:     FinalPrice(cfg),
		AvailableStock: AvailableStock(cfg),
	}

	for _, sel := range Selections(cfg.SelectedVariants) {
		sv := SummaryVariant{Name: sel.Group, Steps: []SummaryStep{}}
		traces, ok := resolved(groups, sel)
		sv.Resolved = ok
		if ok {
			seen := make(map[*Node]bool)
			for _, t := range traces {
				for _, step := range t.Path {
					if seen[step.Option] {
						continue
					}
					seen[step.Option] = true
					sv.Steps = append(sv.Steps, SummaryStep{
						Group:         step.Group.Name,
						Label:         step.Option.Label,
						Value:         step.Option.Value,
						PriceModifier: step.Option.PriceModifier,
						SKU:           step.Option.SKU,
					})
				}
			}
			sv.Stock, _ = selectionStock(groups, sel)
		} else {
			sv.Steps = append(sv.Steps, SummaryStep{Group: sel.Group, Label: sel.Label, Value: sel.Value})
		}
		s.Variants = append(s.Variants, sv)
	}

	for _, sa := range cfg.SelectedAddons {
		opt := findAddonOption(cfg.Addons, sa)
		if opt == nil {
			continue
		}
		qty := sa.Quantity
		if qty <= 0 {
			qty = 1
		}
		s.Addons = append(s.Addons, SummaryAddon{
			Name:      sa.AddonName,
			Option:    opt.Label,
			Quantity:  qty,
			UnitPrice: opt.Price,
			Total:     opt.Price * float64(qty),
		})
	}
	return s
}

// VariantImage returns the image of the deepest selected node that has one,
// taking selections in order. It returns "" when no selected node has an image.
func VariantImage(cfg models.ProductConfiguration) string {
	groups := Tree(cfg.Variants)
	for _, sel := range Selections(cfg.SelectedVariants) {
		traces, ok := resolved(groups, sel)
		if !ok {
			continue
		}
		for _, t := range traces {
			for i := len(t.Path) - 1; i >= 0; i-- {
				if img := t.Path[i].Option.Image; img != "" {
					return img
				}
			}
		}
	}
	return ""
}

// CombinedSpecifications merges the custom properties of every selected
// node. Deeper levels override shallower ones and later selections override
// earlier ones.
func CombinedSpecifications(cfg models.ProductConfiguration) map[string]interface{} {
	groups := Tree(cfg.Variants)
	specs := make(map[string]interface{})
	for _, sel := range Selections(cfg.SelectedVariants) {
		traces, ok := resolved(groups, sel)
		if !ok {
			continue
		}
		for _, t := range traces {
			for _, step := range t.Path {
				for k, v := range step.Option.CustomProperties {
					specs[k] = v
				}
			}
		}
	}
	return specs
}
