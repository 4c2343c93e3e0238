package service

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// teeProduct is a three-level product:
//
//	Color: Black (9) -> Size: L (+150, 2) -> Finish: Matte (+50, 7) | Gloss (+80, 1)
//	                    Size: M (+100, 4)
//	Color: White (+20, 6)
func teeProduct(t *testing.T) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:        primitive.NewObjectID(),
		Name:      "Heavy Tee",
		Slug:      "heavy-tee",
		BasePrice: 1000,
		IsActive:  true,
		Variants: []models.Variant{{
			Name: "Color", Type: models.VariantTypeColor, Required: true,
			Options: []models.VariantOption{
				{
					Label: "Black", Value: "black", Stock: 9,
					SubVariants: []models.SubVariant{{
						Name: "Size", Type: models.VariantTypeSize,
						Options: []models.SubVariantOption{
							{
								Label: "L", Value: "L", PriceModifier: 150, Stock: 2,
								SubSubVariants: []models.SubSubVariant{{
									Name: "Finish", Type: models.VariantTypeDropdown,
									Options: []models.SubSubVariantOption{
										{Label: "Matte", Value: "matte", PriceModifier: 50, Stock: 7},
										{Label: "Gloss", Value: "gloss", PriceModifier: 80, Stock: 1},
									},
								}},
							},
							{Label: "M", Value: "M", PriceModifier: 100, Stock: 4},
						},
					}},
				},
				{Label: "White", Value: "white", PriceModifier: 20, Stock: 6},
			},
		}},
		Addons: []models.Addon{{
			Name: "Gift Wrap",
			Options: []models.AddonOption{
				{Label: "Box", Price: 200},
			},
		}},
	}
	p.AssignIDs()
	return p
}

func blackLFinish(finishLabel string) []models.SelectedVariant {
	return []models.SelectedVariant{{
		VariantName: "Color", OptionValue: "black",
		SubVariants: []models.SelectedSubVariant{{
			SubVariantName: "Size", OptionValue: "L",
			SubSubVariants: []models.SelectedSubSubVariant{{
				SubSubVariantName: "Finish", OptionLabel: finishLabel,
			}},
		}},
	}}
}

// addressOf resolves labels to the stored ids, failing the test if the
// fixture does not contain them.
func addressOf(t *testing.T, p *models.Product, selected []models.SelectedVariant) variant.Address {
	t.Helper()
	sel := variant.Selections(selected)[0]
	traces := variant.Walk(variant.Tree(p.Variants), sel, variant.Fuzzy)
	if len(traces) != 1 || traces[0].Err != nil {
		t.Fatalf("fixture selection does not resolve: %+v", traces)
	}
	return traces[0].Path.Address()
}

// blackLMatte selects the Matte leaf by value and label, so it resolves on
// both the read path and in the ledger.
func blackLMatte() []models.SelectedVariant {
	sel := blackLFinish("Matte")
	sel[0].SubVariants[0].SubSubVariants[0].OptionValue = "matte"
	return sel
}
