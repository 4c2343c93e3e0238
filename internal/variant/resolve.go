package variant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPathNotResolved is returned when a selection does not match the tree.
var ErrPathNotResolved = errors.New("PATH_NOT_RESOLVED")

// PathError describes which segment of a selection failed to match.
type PathError struct {
	Level  int
	Group  string
	Needle string
	// Missing is "group" when no group carries the name and "option" when
	// the group exists but none of its options match.
	Missing string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("level %d: %s not found: group=%q needle=%q", e.Level, e.Missing, e.Group, e.Needle)
}

func (e *PathError) Unwrap() error {
	return ErrPathNotResolved
}

// Step is one matched group/option pair.
type Step struct {
	Group  *Group
	Option *Node
}

// Path is the sequence of steps from a top-level variant down to the node
// where resolution stopped.
type Path []Step

// Leaf returns the node resolution stopped at.
func (p Path) Leaf() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1].Option
}

// Segment addresses one level of the stored tree by ids.
type Segment struct {
	GroupID  string `json:"groupId"`
	OptionID string `json:"optionId"`
}

// Address identifies a stock counter in the stored document: one segment
// per level, outermost first.
type Address []Segment

// Address returns the ids along the path.
func (p Path) Address() Address {
	addr := make(Address, len(p))
	for i, s := range p {
		addr[i] = Segment{GroupID: s.Group.ID, OptionID: s.Option.ID}
	}
	return addr
}

// Labels renders the path as "Group=Label" pairs for logs and results.
func (p Path) Labels() []string {
	out := make([]string, len(p))
	for i, s := range p {
		label := s.Option.Label
		if label == "" {
			label = s.Option.Value
		}
		out[i] = s.Group.Name + "=" + label
	}
	return out
}

func (p Path) String() string {
	return strings.Join(p.Labels(), " > ")
}

// Trace is the outcome of walking one terminal selection: either the full
// path or the partial path plus the error that stopped it.
type Trace struct {
	Path Path
	Err  error
}

// Walk resolves sel against groups using m and returns one trace per
// terminal selection. Descent continues only while the matched option
// branches and the selection names children; a selection that stops early
// resolves to the option it stopped at.
func Walk(groups []*Group, sel Selection, m Matcher) []Trace {
	return walk(groups, sel, m, nil, 1)
}

func walk(groups []*Group, sel Selection, m Matcher, prefix Path, level int) []Trace {
	g := FindGroup(groups, sel.Group)
	if g == nil {
		return []Trace{{Path: prefix, Err: &PathError{Level: level, Group: sel.Group, Needle: sel.Group, Missing: "group"}}}
	}
	opt := FindOption(g.Options, sel, m)
	if opt == nil {
		needle := sel.Value
		if needle == "" {
			needle = sel.Label
		}
		return []Trace{{Path: prefix, Err: &PathError{Level: level, Group: g.Name, Needle: needle, Missing: "option"}}}
	}

	path := make(Path, len(prefix), len(prefix)+1)
	copy(path, prefix)
	path = append(path, Step{Group: g, Option: opt})

	if opt.IsLeaf() || len(sel.Children) == 0 || level >= MaxDepth {
		return []Trace{{Path: path}}
	}

	var traces []Trace
	for _, child := range sel.Children {
		traces = append(traces, walk(opt.Children, child, m, path, level+1)...)
	}
	return traces
}

// ResolveLeaf resolves a single selection on the read path. It returns the
// path to the node whose stock is authoritative for the selection, or an
// error wrapping ErrPathNotResolved if any segment fails. When the
// selection branches into several children the path to the first is
// returned; use Walk for all of them.
func ResolveLeaf(groups []*Group, sel Selection) (Path, error) {
	traces := Walk(groups, sel, ExactValue)
	for _, t := range traces {
		if t.Err != nil {
			return nil, t.Err
		}
	}
	return traces[0].Path, nil
}

// resolved walks sel on the read path and reports whether every trace
// resolved.
func resolved(groups []*Group, sel Selection) ([]Trace, bool) {
	traces := Walk(groups, sel, ExactValue)
	for _, t := range traces {
		if t.Err != nil {
			return traces, false
		}
	}
	return traces, true
}
