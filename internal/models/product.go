package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog document stored in MongoDB. The variant tree is
// embedded so stock counters can be addressed with array filters.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	BasePrice   float64            `bson:"basePrice" json:"basePrice"`
	Images      []string           `bson:"images" json:"images"`
	Variants    []Variant          `bson:"variants" json:"variants"`
	Addons      []Addon            `bson:"addons" json:"addons"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasVariants reports whether the product defines any variant tree.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Configuration builds the pricing input for a customer selection.
func (p *Product) Configuration(selected []SelectedVariant, addons []SelectedAddon) ProductConfiguration {
	return ProductConfiguration{
		BasePrice:        p.BasePrice,
		Variants:         p.Variants,
		SelectedVariants: selected,
		Addons:           p.Addons,
		SelectedAddons:   addons,
	}
}

// AssignIDs gives every variant, option, add-on and nested node an ObjectID
// if it does not have one yet. Existing ids are preserved so stored order
// selections keep addressing the same nodes.
func (p *Product) AssignIDs() {
	for i := range p.Variants {
		v := &p.Variants[i]
		ensureID(&v.ID)
		for j := range v.Options {
			o := &v.Options[j]
			ensureID(&o.ID)
			for k := range o.SubVariants {
				sv := &o.SubVariants[k]
				ensureID(&sv.ID)
				for l := range sv.Options {
					so := &sv.Options[l]
					ensureID(&so.ID)
					for m := range so.SubSubVariants {
						ssv := &so.SubSubVariants[m]
						ensureID(&ssv.ID)
						for n := range ssv.Options {
							ensureID(&ssv.Options[n].ID)
						}
					}
				}
			}
		}
	}
	for i := range p.Addons {
		ensureID(&p.Addons[i].ID)
		for j := range p.Addons[i].Options {
			ensureID(&p.Addons[i].Options[j].ID)
		}
	}
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}
