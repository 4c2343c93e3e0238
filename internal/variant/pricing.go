package variant

import (
	"github.com/shopspring/decimal"

	"github.com/atelierhq/storefront_api/internal/models"
)

// FinalPrice returns the base price plus the modifier of every node visited
// by each resolved selection plus selected add-ons, floored at zero.
// Selections that do not resolve contribute nothing.
func FinalPrice(cfg models.ProductConfiguration) float64 {
	groups := Tree(cfg.Variants)
	total := decimal.NewFromFloat(cfg.BasePrice)

	for _, sel := range Selections(cfg.SelectedVariants) {
		total = total.Add(selectionModifier(groups, sel))
	}
	total = total.Add(addonsTotal(cfg.Addons, cfg.SelectedAddons))

	if total.IsNegative() {
		return 0
	}
	return total.InexactFloat64()
}

// selectionModifier sums the modifiers of the distinct nodes on every trace
// of sel. Shared prefixes are counted once.
func selectionModifier(groups []*Group, sel Selection) decimal.Decimal {
	traces, ok := resolved(groups, sel)
	if !ok {
		return decimal.Zero
	}
	seen := make(map[*Node]bool)
	sum := decimal.Zero
	for _, t := range traces {
		for _, step := range t.Path {
			if seen[step.Option] {
				continue
			}
			seen[step.Option] = true
			sum = sum.Add(decimal.NewFromFloat(step.Option.PriceModifier))
		}
	}
	return sum
}

// addonsTotal adds price × quantity for every selected add-on whose name and
// option label resolve. A non-positive quantity counts as one.
func addonsTotal(addons []models.Addon, selected []models.SelectedAddon) decimal.Decimal {
	sum := decimal.Zero
	for _, sa := range selected {
		opt := findAddonOption(addons, sa)
		if opt == nil {
			continue
		}
		qty := sa.Quantity
		if qty <= 0 {
			qty = 1
		}
		sum = sum.Add(decimal.NewFromFloat(opt.Price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return sum
}

func findAddonOption(addons []models.Addon, sa models.SelectedAddon) *models.AddonOption {
	for i := range addons {
		if addons[i].Name != sa.AddonName {
			continue
		}
		for j := range addons[i].Options {
			if addons[i].Options[j].Label == sa.OptionLabel {
				return &addons[i].Options[j]
			}
		}
		return nil
	}
	return nil
}
