package variant

import "github.com/atelierhq/storefront_api/internal/models"

// VariantValidation lists required top-level variants missing from a selection.
type VariantValidation struct {
	IsValid         bool     `json:"isValid"`
	MissingVariants []string `json:"missingVariants"`
}

// AddonValidation lists required add-ons missing from a selection.
type AddonValidation struct {
	IsValid       bool     `json:"isValid"`
	MissingAddons []string `json:"missingAddons"`
}

// ValidateRequiredVariants checks that every required top-level variant has
// a selection with the same name. Required flags on sub-levels are not
// enforced here.
func ValidateRequiredVariants(cfg models.ProductConfiguration) VariantValidation {
	selected := make(map[string]bool, len(cfg.SelectedVariants))
	for _, sv := range cfg.SelectedVariants {
		selected[sv.VariantName] = true
	}
	missing := []string{}
	for _, v := range cfg.Variants {
		if v.Required && !selected[v.Name] {
			missing = append(missing, v.Name)
		}
	}
	return VariantValidation{IsValid: len(missing) == 0, MissingVariants: missing}
}

// ValidateRequiredAddons checks that every required add-on is selected.
func ValidateRequiredAddons(cfg models.ProductConfiguration) AddonValidation {
	selected := make(map[string]bool, len(cfg.SelectedAddons))
	for _, sa := range cfg.SelectedAddons {
		selected[sa.AddonName] = true
	}
	missing := []string{}
	for _, a := range cfg.Addons {
		if a.Required && !selected[a.Name] {
			missing = append(missing, a.Name)
		}
	}
	return AddonValidation{IsValid: len(missing) == 0, MissingAddons: missing}
}
