package variant

import "github.com/atelierhq/storefront_api/internal/models"

// AvailableStock returns how many units of the configuration can be sold.
// With no selection it is zero. Otherwise every top-level selection is an
// independent constraint and the result is the minimum over them; within a
// selection only the node resolution stopped at counts. Selections that do
// not resolve impose no constraint, and if none resolve the result is zero.
func AvailableStock(cfg models.ProductConfiguration) int {
	if len(cfg.SelectedVariants) == 0 {
		return 0
	}
	groups := Tree(cfg.Variants)

	available, constrained := 0, false
	for _, sel := range Selections(cfg.SelectedVariants) {
		stock, ok := selectionStock(groups, sel)
		if !ok {
			continue
		}
		if !constrained || stock < available {
			available = stock
			constrained = true
		}
	}
	if !constrained || available < 0 {
		return 0
	}
	return available
}

// selectionStock is the minimum leaf stock across the traces of sel.
func selectionStock(groups []*Group, sel Selection) (int, bool) {
	traces, ok := resolved(groups, sel)
	if !ok {
		return 0, false
	}
	stock := traces[0].Path.Leaf().Stock
	for _, t := range traces[1:] {
		if s := t.Path.Leaf().Stock; s < stock {
			stock = s
		}
	}
	return stock, true
}

// Unresolved returns the selections that drop out of the read path. Callers
// that must not sell against an unconstrained selection can reject on it.
func Unresolved(cfg models.ProductConfiguration) []error {
	groups := Tree(cfg.Variants)
	var errs []error
	for _, sel := range Selections(cfg.SelectedVariants) {
		for _, t := range Walk(groups, sel, ExactValue) {
			if t.Err != nil {
				errs = append(errs, t.Err)
			}
		}
	}
	return errs
}
