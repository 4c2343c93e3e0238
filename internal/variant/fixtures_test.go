package variant

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/atelierhq/storefront_api/internal/models"
)

func oid() primitive.ObjectID { return primitive.NewObjectID() }

// colorBlueConfig is a single-level Color variant plus a Gift Wrap add-on.
func colorBlueConfig() models.ProductConfiguration {
	return models.ProductConfiguration{
		BasePrice: 1000,
		Variants: []models.Variant{{
			ID: oid(), Name: "Color", Type: models.VariantTypeColor, Required: true,
			Options: []models.VariantOption{
				{ID: oid(), Label: "Blue", Value: "blue", Stock: 3, Image: "blue.jpg"},
				{ID: oid(), Label: "Red", Value: "red", Stock: 8, PriceModifier: 50},
			},
		}},
		Addons: []models.Addon{{
			ID: oid(), Name: "Gift Wrap",
			Options: []models.AddonOption{{ID: oid(), Label: "Box", Price: 200}},
		}},
		SelectedVariants: []models.SelectedVariant{{VariantName: "Color", OptionValue: "blue"}},
		SelectedAddons:   []models.SelectedAddon{{AddonName: "Gift Wrap", OptionLabel: "Box", Quantity: 1}},
	}
}

// threeLevelVariants is Color→Black→Size→L→Finish→Matte/Gloss.
func threeLevelVariants() []models.Variant {
	return []models.Variant{{
		ID: oid(), Name: "Color", Type: models.VariantTypeColor, Required: true,
		Options: []models.VariantOption{{
			ID: oid(), Label: "Black", Value: "black", Stock: 9, Image: "black.jpg",
			CustomProperties: map[string]interface{}{"material": "cotton", "fit": "regular"},
			SubVariants: []models.SubVariant{{
				ID: oid(), Name: "Size", Type: models.VariantTypeSize,
				Options: []models.SubVariantOption{
					{
						ID: oid(), Label: "L", Value: "L", PriceModifier: 150, Stock: 2,
						CustomProperties: map[string]interface{}{"fit": "relaxed"},
						SubSubVariants: []models.SubSubVariant{{
							ID: oid(), Name: "Finish", Type: models.VariantTypeDropdown,
							Options: []models.SubSubVariantOption{
								{ID: oid(), Label: "Matte", Value: "matte", PriceModifier: 50, Stock: 7, Image: "matte.jpg"},
								{ID: oid(), Label: "Gloss", Value: "gloss", PriceModifier: 80, Stock: 1},
							},
						}},
					},
					{ID: oid(), Label: "M", Value: "M", PriceModifier: 100, Stock: 4},
				},
			}},
		}},
	}}
}

func blackLMatte() models.SelectedVariant {
	return models.SelectedVariant{
		VariantName: "Color", OptionValue: "black",
		SubVariants: []models.SelectedSubVariant{{
			SubVariantName: "Size", OptionValue: "L",
			SubSubVariants: []models.SelectedSubSubVariant{{SubSubVariantName: "Finish", OptionValue: "matte"}},
		}},
	}
}
