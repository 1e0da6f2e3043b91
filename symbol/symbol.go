// Package symbol implements the symbolic expression tree that model
// equations are authored in. Every node carries a stable identity token,
// an ordered domain tag, and its child nodes; trees are immutable after
// construction.
package symbol

import (
	"fmt"

	"github.com/google/uuid"
)

// Symbol is a node in a symbolic expression tree.
type Symbol interface {
	// ID returns the identity token assigned at construction.
	// Two structurally identical nodes built separately have different IDs.
	ID() string

	// Name returns the display name of the node.
	Name() string

	// Domain returns the ordered spatial region labels the node is defined
	// over. An empty domain means the node is domain-agnostic.
	Domain() []string

	// Children returns the direct child nodes, in order.
	Children() []Symbol

	String() string
}

// node carries the fields shared by every concrete Symbol.
type node struct {
	id     string
	name   string
	domain []string
}

func newNode(name string, domain []string) node {
	return node{id: uuid.NewString(), name: name, domain: domain}
}

func (n *node) ID() string       { return n.id }
func (n *node) Name() string     { return n.name }
func (n *node) Domain() []string { return n.domain }

// PreOrder returns the node and all of its descendants, depth first with
// each node preceding its children. The slice is freshly allocated on
// every call.
func PreOrder(s Symbol) []Symbol {
	out := []Symbol{s}
	for _, c := range s.Children() {
		out = append(out, PreOrder(c)...)
	}
	return out
}

// HasSpatialDerivatives reports whether the tree rooted at s contains a
// gradient or divergence node.
func HasSpatialDerivatives(s Symbol) bool {
	for _, n := range PreOrder(s) {
		switch n.(type) {
		case *Gradient, *Divergence:
			return true
		}
	}
	return false
}

// ContainsID reports whether any node in the tree rooted at s has the
// given identity token.
func ContainsID(s Symbol, id string) bool {
	for _, n := range PreOrder(s) {
		if n.ID() == id {
			return true
		}
	}
	return false
}

// DomainsEqual compares two domain tags element-wise, order included.
func DomainsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Lift converts a bare number to a Scalar. Symbols pass through unchanged.
func Lift(v any) (Symbol, error) {
	switch x := v.(type) {
	case Symbol:
		return x, nil
	case float64:
		return NewScalar(x), nil
	case float32:
		return NewScalar(float64(x)), nil
	case int:
		return NewScalar(float64(x)), nil
	case int64:
		return NewScalar(float64(x)), nil
	default:
		return nil, fmt.Errorf("symbol: cannot lift %T to a symbol", v)
	}
}

// mergeDomains picks the domain for an operator node: the first non-empty
// child domain wins. Registry insertion is where conflicting domains are
// rejected, not expression construction.
func mergeDomains(children ...Symbol) []string {
	for _, c := range children {
		if len(c.Domain()) > 0 {
			return c.Domain()
		}
	}
	return nil
}
