package variant

import "strings"

// Matcher decides whether an option satisfies a selection.
type Matcher func(n *Node, sel Selection) bool

// ExactValue matches on option value only, case-sensitively. It is the
// read-path rule used for pricing and availability.
func ExactValue(n *Node, sel Selection) bool {
	return n.Value == sel.Value
}

// Fuzzy matches when the selection's value or label equals the option's
// value or label, ignoring case. Labels and values are free text entered by
// admins, so the stock ledger uses this rule.
func Fuzzy(n *Node, sel Selection) bool {
	return matchesFold(n, sel.Value, sel.Label)
}

// FindOption returns the first option matching sel under m, or nil.
func FindOption(options []*Node, sel Selection, m Matcher) *Node {
	for _, o := range options {
		if m(o, sel) {
			return o
		}
	}
	return nil
}

// FindFuzzy returns the first option whose value or label equals any of the
// non-empty needles, ignoring case.
func FindFuzzy(options []*Node, needles ...string) *Node {
	for _, o := range options {
		if matchesFold(o, needles...) {
			return o
		}
	}
	return nil
}

func matchesFold(n *Node, needles ...string) bool {
	for _, needle := range needles {
		needle = strings.TrimSpace(needle)
		if needle == "" {
			continue
		}
		if strings.EqualFold(n.Value, needle) || strings.EqualFold(n.Label, needle) {
			return true
		}
	}
	return false
}

// FindGroup returns the group with the given name, or nil. Group names are
// matched exactly.
func FindGroup(groups []*Group, name string) *Group {
	for _, g := range groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}
