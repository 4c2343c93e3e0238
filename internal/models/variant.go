package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// VariantType enumerates how a variant is rendered to the customer.
type VariantType string

const (
	VariantTypeColor    VariantType = "color"
	VariantTypeSize     VariantType = "size"
	VariantTypeText     VariantType = "text"
	VariantTypeDropdown VariantType = "dropdown"
)

// Valid reports whether t is one of the supported variant types.
func (t VariantType) Valid() bool {
	switch t {
	case VariantTypeColor, VariantTypeSize, VariantTypeText, VariantTypeDropdown:
		return true
	}
	return false
}

// Variant is a top-level configurable dimension of a product, e.g. "Color".
// Name is what customer selections are matched against.
type Variant struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Type     VariantType        `bson:"type" json:"type"`
	Required bool               `bson:"required" json:"required"`
	Options  []VariantOption    `bson:"options" json:"options"`
}

// VariantOption is a choice within a Variant. It is a leaf unless SubVariants
// is populated, in which case its own Stock is not authoritative.
type VariantOption struct {
	ID               primitive.ObjectID     `bson:"_id" json:"id"`
	Label            string                 `bson:"label" json:"label"`
	Value            string                 `bson:"value" json:"value"`
	PriceModifier    float64                `bson:"priceModifier" json:"priceModifier"`
	Stock            int                    `bson:"stock" json:"stock"`
	Image            string                 `bson:"image,omitempty" json:"image,omitempty"`
	SKU              string                 `bson:"sku,omitempty" json:"sku,omitempty"`
	CustomProperties map[string]interface{} `bson:"customProperties,omitempty" json:"customProperties,omitempty"`
	SubVariants      []SubVariant           `bson:"subVariants,omitempty" json:"subVariants,omitempty"`
}

// SubVariant is the second tree level, e.g. "Size" under Color=Black.
type SubVariant struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Type     VariantType        `bson:"type" json:"type"`
	Required bool               `bson:"required" json:"required"`
	Options  []SubVariantOption `bson:"options" json:"options"`
}

// SubVariantOption is a leaf unless SubSubVariants is populated.
type SubVariantOption struct {
	ID               primitive.ObjectID     `bson:"_id" json:"id"`
	Label            string                 `bson:"label" json:"label"`
	Value            string                 `bson:"value" json:"value"`
	PriceModifier    float64                `bson:"priceModifier" json:"priceModifier"`
	Stock            int                    `bson:"stock" json:"stock"`
	Image            string                 `bson:"image,omitempty" json:"image,omitempty"`
	SKU              string                 `bson:"sku,omitempty" json:"sku,omitempty"`
	CustomProperties map[string]interface{} `bson:"customProperties,omitempty" json:"customProperties,omitempty"`
	SubSubVariants   []SubSubVariant        `bson:"subSubVariants,omitempty" json:"subSubVariants,omitempty"`
}

// SubSubVariant is the terminal tree level, e.g. "Finish".
type SubSubVariant struct {
	ID       primitive.ObjectID    `bson:"_id" json:"id"`
	Name     string                `bson:"name" json:"name"`
	Type     VariantType           `bson:"type" json:"type"`
	Required bool                  `bson:"required" json:"required"`
	Options  []SubSubVariantOption `bson:"options" json:"options"`
}

// SubSubVariantOption is always a leaf.
type SubSubVariantOption struct {
	ID               primitive.ObjectID     `bson:"_id" json:"id"`
	Label            string                 `bson:"label" json:"label"`
	Value            string                 `bson:"value" json:"value"`
	PriceModifier    float64                `bson:"priceModifier" json:"priceModifier"`
	Stock            int                    `bson:"stock" json:"stock"`
	Image            string                 `bson:"image,omitempty" json:"image,omitempty"`
	SKU              string                 `bson:"sku,omitempty" json:"sku,omitempty"`
	CustomProperties map[string]interface{} `bson:"customProperties,omitempty" json:"customProperties,omitempty"`
}

// Addon is an optional extra sold with a product, e.g. "Gift Wrap".
type Addon struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Required bool               `bson:"required" json:"required"`
	Options  []AddonOption      `bson:"options" json:"options"`
}

// AddonOption is a priced choice within an Addon.
type AddonOption struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Label string             `bson:"label" json:"label"`
	Price float64            `bson:"price" json:"price"`
}

// SelectedVariant is a customer's choice for one top-level variant. SubVariants
// is only populated when the chosen option branches.
type SelectedVariant struct {
	VariantName string               `bson:"variantName" json:"variantName"`
	OptionValue string               `bson:"optionValue" json:"optionValue"`
	OptionLabel string               `bson:"optionLabel,omitempty" json:"optionLabel,omitempty"`
	SubVariants []SelectedSubVariant `bson:"subVariants,omitempty" json:"subVariants,omitempty"`
}

// SelectedSubVariant mirrors SelectedVariant one level down.
type SelectedSubVariant struct {
	SubVariantName string                  `bson:"subVariantName" json:"subVariantName"`
	OptionValue    string                  `bson:"optionValue" json:"optionValue"`
	OptionLabel    string                  `bson:"optionLabel,omitempty" json:"optionLabel,omitempty"`
	SubSubVariants []SelectedSubSubVariant `bson:"subSubVariants,omitempty" json:"subSubVariants,omitempty"`
}

// SelectedSubSubVariant is the terminal selection level.
type SelectedSubSubVariant struct {
	SubSubVariantName string `bson:"subSubVariantName" json:"subSubVariantName"`
	OptionValue       string `bson:"optionValue" json:"optionValue"`
	OptionLabel       string `bson:"optionLabel,omitempty" json:"optionLabel,omitempty"`
}

// SelectedAddon is a customer's choice for one add-on.
type SelectedAddon struct {
	AddonName   string `bson:"addonName" json:"addonName"`
	OptionLabel string `bson:"optionLabel" json:"optionLabel"`
	Quantity    int    `bson:"quantity" json:"quantity"`
}

// ProductConfiguration is the read-only input to pricing and stock calculation.
type ProductConfiguration struct {
	BasePrice        float64           `json:"basePrice"`
	Variants         []Variant         `json:"variants"`
	SelectedVariants []SelectedVariant `json:"selectedVariants"`
	Addons           []Addon           `json:"addons"`
	SelectedAddons   []SelectedAddon   `json:"selectedAddons"`
}
