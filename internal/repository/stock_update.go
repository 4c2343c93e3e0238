package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// levelFields names the array and its filter identifiers at each tree level.
var levelFields = [variant.MaxDepth]struct {
	array, group, option string
}{
	{"variants", "v", "o"},
	{"subVariants", "sv", "so"},
	{"subSubVariants", "ssv", "sso"},
}

// ErrInvalidAddress is returned for an empty, too deep or malformed address.
var ErrInvalidAddress = errors.New("invalid stock address")

// stockUpdate builds the $inc update and array filters that address exactly
// one stock counter. When requireAvailable is set and delta is negative the
// leaf filter also requires stock >= -delta, so the update is a no-op
// instead of driving the counter below zero.
func stockUpdate(addr variant.Address, delta int, requireAvailable bool, now time.Time) (bson.M, []interface{}, error) {
	if len(addr) == 0 || len(addr) > variant.MaxDepth {
		return nil, nil, fmt.Errorf("%w: depth %d", ErrInvalidAddress, len(addr))
	}

	var path strings.Builder
	filters := make([]interface{}, 0, 2*len(addr))
	for i, seg := range addr {
		lf := levelFields[i]
		groupID, err := primitive.ObjectIDFromHex(seg.GroupID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: group id %q", ErrInvalidAddress, seg.GroupID)
		}
		optionID, err := primitive.ObjectIDFromHex(seg.OptionID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: option id %q", ErrInvalidAddress, seg.OptionID)
		}
		if i > 0 {
			path.WriteString(".")
		}
		fmt.Fprintf(&path, "%s.$[%s].options.$[%s]", lf.array, lf.group, lf.option)

		optionFilter := bson.M{lf.option + "._id": optionID}
		if i == len(addr)-1 && requireAvailable && delta < 0 {
			optionFilter[lf.option+".stock"] = bson.M{"$gte": -delta}
		}
		filters = append(filters, bson.M{lf.group + "._id": groupID}, optionFilter)
	}
	path.WriteString(".stock")

	update := bson.M{
		"$inc": bson.M{path.String(): delta},
		"$set": bson.M{"updatedAt": now},
	}
	return update, filters, nil
}

// leafStock reads the counter addr points at in p.
func leafStock(p *models.Product, addr variant.Address) (int, bool) {
	if p == nil || len(addr) == 0 || len(addr) > variant.MaxDepth {
		return 0, false
	}
	groups := variant.Tree(p.Variants)
	var node *variant.Node
	for _, seg := range addr {
		var g *variant.Group
		for _, candidate := range groups {
			if candidate.ID == seg.GroupID {
				g = candidate
				break
			}
		}
		if g == nil {
			return 0, false
		}
		node = nil
		for _, o := range g.Options {
			if o.ID == seg.OptionID {
				node = o
				break
			}
		}
		if node == nil {
			return 0, false
		}
		groups = node.Children
	}
	return node.Stock, true
}

// stockWriteFrom derives the outcome of an increment from the document as it
// was before the update. It mirrors the filters built by stockUpdate: a
// missing node or a guarded leaf short of -delta means nothing was written.
func stockWriteFrom(before *models.Product, addr variant.Address, delta int, requireAvailable bool) StockWrite {
	stock, ok := leafStock(before, addr)
	if !ok {
		return StockWrite{}
	}
	if requireAvailable && delta < 0 && stock < -delta {
		return StockWrite{Stock: stock}
	}
	return StockWrite{Applied: true, Stock: stock + delta}
}
