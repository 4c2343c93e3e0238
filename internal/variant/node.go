// Package variant implements the nested variant engine: it turns a product's
// three-level variant tree into a generic node tree and resolves customer
// selections against it for pricing, availability and stock mutation.
package variant

import "github.com/atelierhq/storefront_api/internal/models"

// MaxDepth is the number of tree levels a selection can descend:
// Variant→Option, SubVariant→SubOption, SubSubVariant→SubSubOption.
const MaxDepth = 3

// Kind tells whether a node holds authoritative stock.
type Kind int

const (
	// KindLeaf nodes have no children; their Stock is authoritative.
	KindLeaf Kind = iota
	// KindBranch nodes have child groups; their own Stock is ignored.
	KindBranch
)

func (k Kind) String() string {
	if k == KindBranch {
		return "branch"
	}
	return "leaf"
}

// Group is a variant at any level: a named set of sibling options.
type Group struct {
	ID       string
	Name     string
	Required bool
	Level    int
	Options  []*Node
}

// Node is an option at any level.
type Node struct {
	ID               string
	Label            string
	Value            string
	PriceModifier    float64
	Stock            int
	SKU              string
	Image            string
	CustomProperties map[string]interface{}
	Kind             Kind
	Children         []*Group
}

// IsLeaf reports whether the node's own stock is authoritative.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// Tree converts the stored variant model into generic groups.
func Tree(variants []models.Variant) []*Group {
	groups := make([]*Group, 0, len(variants))
	for _, v := range variants {
		g := &Group{ID: v.ID.Hex(), Name: v.Name, Required: v.Required, Level: 1}
		for _, o := range v.Options {
			n := newNode(o.ID.Hex(), o.Label, o.Value, o.PriceModifier, o.Stock, o.SKU, o.Image, o.CustomProperties)
			for _, sv := range o.SubVariants {
				n.Children = append(n.Children, subGroup(sv))
			}
			g.Options = append(g.Options, n.seal())
		}
		groups = append(groups, g)
	}
	return groups
}

func subGroup(sv models.SubVariant) *Group {
	g := &Group{ID: sv.ID.Hex(), Name: sv.Name, Required: sv.Required, Level: 2}
	for _, o := range sv.Options {
		n := newNode(o.ID.Hex(), o.Label, o.Value, o.PriceModifier, o.Stock, o.SKU, o.Image, o.CustomProperties)
		for _, ssv := range o.SubSubVariants {
			n.Children = append(n.Children, subSubGroup(ssv))
		}
		g.Options = append(g.Options, n.seal())
	}
	return g
}

func subSubGroup(ssv models.SubSubVariant) *Group {
	g := &Group{ID: ssv.ID.Hex(), Name: ssv.Name, Required: ssv.Required, Level: 3}
	for _, o := range ssv.Options {
		n := newNode(o.ID.Hex(), o.Label, o.Value, o.PriceModifier, o.Stock, o.SKU, o.Image, o.CustomProperties)
		g.Options = append(g.Options, n.seal())
	}
	return g
}

func newNode(id, label, value string, mod float64, stock int, sku, image string, props map[string]interface{}) *Node {
	return &Node{
		ID:               id,
		Label:            label,
		Value:            value,
		PriceModifier:    mod,
		Stock:            stock,
		SKU:              sku,
		Image:            image,
		CustomProperties: props,
	}
}

// seal fixes the node kind once children are attached. A branch whose
// groups are all empty still counts as a branch: descent stops there and
// its own stock is read, matching a partially specified path.
func (n *Node) seal() *Node {
	if len(n.Children) > 0 {
		n.Kind = KindBranch
	} else {
		n.Kind = KindLeaf
	}
	return n
}

// Selection is a customer choice at any level.
type Selection struct {
	Group    string
	Value    string
	Label    string
	Children []Selection
}

// Selections converts stored selections into generic form.
func Selections(selected []models.SelectedVariant) []Selection {
	out := make([]Selection, 0, len(selected))
	for _, sv := range selected {
		s := Selection{Group: sv.VariantName, Value: sv.OptionValue, Label: sv.OptionLabel}
		for _, sub := range sv.SubVariants {
			c := Selection{Group: sub.SubVariantName, Value: sub.OptionValue, Label: sub.OptionLabel}
			for _, subSub := range sub.SubSubVariants {
				c.Children = append(c.Children, Selection{
					Group: subSub.SubSubVariantName,
					Value: subSub.OptionValue,
					Label: subSub.OptionLabel,
				})
			}
			s.Children = append(s.Children, c)
		}
		out = append(out, s)
	}
	return out
}
