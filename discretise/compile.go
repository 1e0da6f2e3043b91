package discretise

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// Value kinds a compiled expression can evaluate to.
type kind int

const (
	kindConst kind = iota // one value, broadcast as needed
	kindCell              // one value per cell centre
	kindFace              // one value per cell face
)

// operand is a compiled expression: a pure evaluator plus its shape.
// Shape checks happen at compile time so evaluation cannot fail.
type operand struct {
	kind kind
	n    int // cells for kindCell, faces for kindFace
	eval func(t float64, y []float64) []float64
}

func constOperand(v float64) *operand {
	box := []float64{v}
	return &operand{kind: kindConst, eval: func(float64, []float64) []float64 { return box }}
}

// compile lowers a symbolic expression to an evaluator over the packed
// state vector.
func (c *compiler) compile(expr symbol.Symbol) (*operand, error) {
	switch e := expr.(type) {
	case *symbol.Scalar:
		return constOperand(e.Value()), nil

	case *symbol.Parameter:
		v, err := c.fv.values.Get(e.Name())
		if err != nil {
			return nil, err
		}
		return constOperand(v), nil

	case *symbol.Variable:
		sl, ok := c.slices[e.ID()]
		if !ok {
			return nil, fmt.Errorf("variable '%s' has no state slot", e)
		}
		return &operand{
			kind: kindCell,
			n:    sl.n,
			eval: func(_ float64, y []float64) []float64 {
				return y[sl.start : sl.start+sl.n]
			},
		}, nil

	case *symbol.Negation:
		inner, err := c.compile(e.Operand())
		if err != nil {
			return nil, err
		}
		return &operand{
			kind: inner.kind,
			n:    inner.n,
			eval: func(t float64, y []float64) []float64 {
				in := inner.eval(t, y)
				out := make([]float64, len(in))
				for i, v := range in {
					out[i] = -v
				}
				return out
			},
		}, nil

	case *symbol.Binary:
		return c.compileBinary(e)

	case *symbol.Gradient:
		return c.compileGradient(e)

	case *symbol.Divergence:
		return c.compileDivergence(e)

	default:
		return nil, fmt.Errorf("cannot discretise %T node '%s'", expr, expr)
	}
}

func applyOp(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	default:
		return a / b
	}
}

func (c *compiler) compileBinary(e *symbol.Binary) (*operand, error) {
	left, err := c.compile(e.Left())
	if err != nil {
		return nil, err
	}
	right, err := c.compile(e.Right())
	if err != nil {
		return nil, err
	}

	op := e.Op()

	// Two constants fold into one.
	if left.kind == kindConst && right.kind == kindConst {
		l := left.eval(0, nil)[0]
		r := right.eval(0, nil)[0]
		return constOperand(applyOp(op, l, r)), nil
	}

	outKind := left.kind
	outN := left.n
	if outKind == kindConst {
		outKind = right.kind
		outN = right.n
	}
	if left.kind != kindConst && right.kind != kindConst {
		if left.kind != right.kind || left.n != right.n {
			return nil, fmt.Errorf("operands of '%s' have incompatible shapes", e)
		}
	}

	return &operand{
		kind: outKind,
		n:    outN,
		eval: func(t float64, y []float64) []float64 {
			l := left.eval(t, y)
			r := right.eval(t, y)
			out := make([]float64, outN)
			for i := range out {
				lv := l[0]
				if left.kind != kindConst {
					lv = l[i]
				}
				rv := r[0]
				if right.kind != kindConst {
					rv = r[i]
				}
				out[i] = applyOp(op, lv, rv)
			}
			return out
		},
	}, nil
}

// boundaryValues finds the boundary condition attached to any variable
// inside expr and const-evaluates both sides. The condition value is read
// as the prescribed gradient on that side.
func (c *compiler) boundaryValues(expr symbol.Symbol) (left, right float64, err error) {
	var owner *symbol.Variable
	for _, n := range symbol.PreOrder(expr) {
		if v, ok := n.(*symbol.Variable); ok {
			owner = v
			break
		}
	}
	if owner == nil {
		return 0, 0, fmt.Errorf("gradient of '%s' involves no state variable", expr)
	}

	for key, sides := range c.m.BoundaryConditions() {
		if !symbol.ContainsID(key, owner.ID()) {
			continue
		}
		get := func(side string) (float64, error) {
			s, ok := sides[side]
			if !ok {
				return 0, fmt.Errorf("boundary condition for '%s' missing side '%s'", owner, side)
			}
			return c.constEval(s)
		}
		if left, err = get("left"); err != nil {
			return 0, 0, err
		}
		if right, err = get("right"); err != nil {
			return 0, 0, err
		}
		return left, right, nil
	}
	return 0, 0, fmt.Errorf("no boundary condition for variable '%s'", owner)
}

func (c *compiler) faceWidth(expr symbol.Symbol) (dx float64, cells int, err error) {
	domain := expr.Domain()
	if len(domain) != 1 {
		return 0, 0, fmt.Errorf("spatial operator on '%s' needs exactly one domain, got %v", expr, domain)
	}
	sub, err := c.fv.mesh.Submesh(domain[0])
	if err != nil {
		return 0, 0, err
	}
	return sub.CellWidth(), sub.Cells(), nil
}

func (c *compiler) compileGradient(e *symbol.Gradient) (*operand, error) {
	inner, err := c.compile(e.Operand())
	if err != nil {
		return nil, err
	}
	if inner.kind != kindCell {
		return nil, fmt.Errorf("gradient of '%s': operand must be cell-valued", e.Operand())
	}
	dx, cells, err := c.faceWidth(e)
	if err != nil {
		return nil, err
	}
	if inner.n != cells {
		return nil, fmt.Errorf("gradient of '%s': %d values on a %d-cell domain", e.Operand(), inner.n, cells)
	}

	bcLeft, bcRight, err := c.boundaryValues(e.Operand())
	if err != nil {
		return nil, err
	}

	return &operand{
		kind: kindFace,
		n:    cells + 1,
		eval: func(t float64, y []float64) []float64 {
			u := inner.eval(t, y)
			g := make([]float64, cells+1)
			g[0] = bcLeft
			g[cells] = bcRight
			for i := 1; i < cells; i++ {
				g[i] = (u[i] - u[i-1]) / dx
			}
			return g
		},
	}, nil
}

func (c *compiler) compileDivergence(e *symbol.Divergence) (*operand, error) {
	inner, err := c.compile(e.Operand())
	if err != nil {
		return nil, err
	}
	if inner.kind != kindFace {
		return nil, fmt.Errorf("divergence of '%s': operand must be face-valued", e.Operand())
	}
	dx, cells, err := c.faceWidth(e)
	if err != nil {
		return nil, err
	}
	if inner.n != cells+1 {
		return nil, fmt.Errorf("divergence of '%s': %d face values on a %d-cell domain", e.Operand(), inner.n, cells)
	}

	return &operand{
		kind: kindCell,
		n:    cells,
		eval: func(t float64, y []float64) []float64 {
			f := inner.eval(t, y)
			out := make([]float64, cells)
			for i := 0; i < cells; i++ {
				out[i] = (f[i+1] - f[i]) / dx
			}
			return out
		},
	}, nil
}

// constEval evaluates an expression that must not depend on state:
// initial conditions and boundary-condition values.
func (c *compiler) constEval(expr symbol.Symbol) (float64, error) {
	switch e := expr.(type) {
	case *symbol.Scalar:
		return e.Value(), nil
	case *symbol.Parameter:
		return c.fv.values.Get(e.Name())
	case *symbol.Negation:
		v, err := c.constEval(e.Operand())
		if err != nil {
			return 0, err
		}
		return -v, nil
	case *symbol.Binary:
		l, err := c.constEval(e.Left())
		if err != nil {
			return 0, err
		}
		r, err := c.constEval(e.Right())
		if err != nil {
			return 0, err
		}
		return applyOp(e.Op(), l, r), nil
	default:
		return 0, fmt.Errorf("'%s' is not a constant expression", expr)
	}
}
