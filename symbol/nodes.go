package symbol

import (
	"fmt"
	"strconv"
	"strings"
)

// Scalar is a constant numeric leaf. Scalars carry an empty domain, so
// they are accepted anywhere regardless of the variable's domain.
type Scalar struct {
	node
	value float64
}

// NewScalar creates a constant node with the given value.
func NewScalar(value float64) *Scalar {
	return &Scalar{node: newNode(strconv.FormatFloat(value, 'g', -1, 64), nil), value: value}
}

// Value returns the constant value.
func (s *Scalar) Value() float64 { return s.value }

func (s *Scalar) Children() []Symbol { return nil }
func (s *Scalar) String() string     { return s.name }

// Variable is a state variable leaf: one evolving physical quantity,
// identified by its ID rather than by name or structure.
type Variable struct {
	node
}

// NewVariable creates a state variable defined over the given domain.
func NewVariable(name string, domain ...string) *Variable {
	return &Variable{node: newNode(name, domain)}
}

func (v *Variable) Children() []Symbol { return nil }
func (v *Variable) String() string     { return v.name }

// Parameter is a named constant leaf whose numeric value is bound later,
// from a parameter table, by the discretiser.
type Parameter struct {
	node
}

// NewParameter creates a named parameter node with an empty domain.
func NewParameter(name string) *Parameter {
	return &Parameter{node: newNode(name, nil)}
}

func (p *Parameter) Children() []Symbol { return nil }
func (p *Parameter) String() string     { return p.name }

// Binary is an elementwise arithmetic operation on two subtrees.
type Binary struct {
	node
	op          string
	left, right Symbol
}

func newBinary(op string, left, right Symbol) *Binary {
	return &Binary{
		node:  newNode(op, mergeDomains(left, right)),
		op:    op,
		left:  left,
		right: right,
	}
}

// Add returns left + right.
func Add(left, right Symbol) *Binary { return newBinary("+", left, right) }

// Sub returns left - right.
func Sub(left, right Symbol) *Binary { return newBinary("-", left, right) }

// Mul returns the elementwise product left * right.
func Mul(left, right Symbol) *Binary { return newBinary("*", left, right) }

// Div returns the elementwise quotient left / right.
func Div(left, right Symbol) *Binary { return newBinary("/", left, right) }

// Op returns the operator symbol: "+", "-", "*" or "/".
func (b *Binary) Op() string { return b.op }

// Left returns the left operand.
func (b *Binary) Left() Symbol { return b.left }

// Right returns the right operand.
func (b *Binary) Right() Symbol { return b.right }

func (b *Binary) Children() []Symbol { return []Symbol{b.left, b.right} }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

// Negation is the unary minus of a subtree.
type Negation struct {
	node
	operand Symbol
}

// Neg returns -operand.
func Neg(operand Symbol) *Negation {
	return &Negation{node: newNode("-", operand.Domain()), operand: operand}
}

// Operand returns the negated subtree.
func (n *Negation) Operand() Symbol { return n.operand }

func (n *Negation) Children() []Symbol { return []Symbol{n.operand} }
func (n *Negation) String() string     { return fmt.Sprintf("(-%s)", n.operand) }

// Gradient marks the spatial gradient of a subtree. The operand lives on
// cell centres; the gradient lives on cell faces.
type Gradient struct {
	node
	operand Symbol
}

// Grad returns the spatial gradient of operand.
func Grad(operand Symbol) *Gradient {
	return &Gradient{node: newNode("grad", operand.Domain()), operand: operand}
}

// Operand returns the differentiated subtree.
func (g *Gradient) Operand() Symbol { return g.operand }

func (g *Gradient) Children() []Symbol { return []Symbol{g.operand} }
func (g *Gradient) String() string     { return fmt.Sprintf("grad(%s)", g.operand) }

// Divergence marks the spatial divergence of a face-valued subtree,
// mapping it back to cell centres.
type Divergence struct {
	node
	operand Symbol
}

// Diverg returns the spatial divergence of operand.
func Diverg(operand Symbol) *Divergence {
	return &Divergence{node: newNode("div", operand.Domain()), operand: operand}
}

// Operand returns the subtree the divergence is taken of.
func (d *Divergence) Operand() Symbol { return d.operand }

func (d *Divergence) Children() []Symbol { return []Symbol{d.operand} }
func (d *Divergence) String() string     { return fmt.Sprintf("div(%s)", d.operand) }

// Concatenation is an ordered stack of subtrees. The discretiser uses it
// to represent the full state vector of a model.
type Concatenation struct {
	node
	children []Symbol
}

// NewConcatenation stacks the given subtrees in order.
func NewConcatenation(children ...Symbol) *Concatenation {
	return &Concatenation{
		node:     newNode("concatenation", mergeDomains(children...)),
		children: append([]Symbol(nil), children...),
	}
}

func (c *Concatenation) Children() []Symbol { return append([]Symbol(nil), c.children...) }

func (c *Concatenation) String() string {
	parts := make([]string, len(c.children))
	for i, ch := range c.children {
		parts[i] = ch.String()
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}
