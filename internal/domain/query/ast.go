package query

import (
	"fmt"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// Operand is a node of a parsed query. The set of implementations is closed:
// *Term, *Not, *And and *Or.
type Operand interface {
	Match(img *image.Image, snap image.Snapshot) bool
	String() string
	operand()
}

// Not negates its child.
type Not struct {
	Child Operand
}

// Match implements Operand.
func (n *Not) Match(img *image.Image, snap image.Snapshot) bool {
	return !n.Child.Match(img, snap)
}

func (n *Not) String() string { return fmt.Sprintf("Not(%s)", n.Child) }

func (n *Not) operand() {}

// And matches when both children match.
type And struct {
	Left, Right Operand
}

// Match implements Operand.
func (a *And) Match(img *image.Image, snap image.Snapshot) bool {
	return a.Left.Match(img, snap) && a.Right.Match(img, snap)
}

func (a *And) String() string { return fmt.Sprintf("And(%s, %s)", a.Left, a.Right) }

func (a *And) operand() {}

// Or matches when either child matches.
type Or struct {
	Left, Right Operand
}

// Match implements Operand.
func (o *Or) Match(img *image.Image, snap image.Snapshot) bool {
	return o.Left.Match(img, snap) || o.Right.Match(img, snap)
}

func (o *Or) String() string { return fmt.Sprintf("Or(%s, %s)", o.Left, o.Right) }

func (o *Or) operand() {}

// assemble runs the postfix steps through an operand stack.
func assemble(steps []step) (Operand, error) {
	var stack []Operand
	pop := func() (Operand, bool) {
		if len(stack) == 0 {
			return nil, false
		}
		op := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return op, true
	}

	for _, s := range steps {
		if s.term != nil {
			stack = append(stack, s.term)
			continue
		}
		switch s.op {
		case opAnd, opOr:
			right, ok := pop()
			if !ok {
				return nil, structuralError("missing operand")
			}
			left, ok := pop()
			if !ok {
				return nil, structuralError("missing operand")
			}
			if s.op == opAnd {
				stack = append(stack, &And{Left: left, Right: right})
			} else {
				stack = append(stack, &Or{Left: left, Right: right})
			}
		case opNot:
			child, ok := pop()
			if !ok {
				return nil, structuralError("missing operand")
			}
			stack = append(stack, &Not{Child: child})
		default:
			return nil, structuralError("invalid operator")
		}
	}

	switch len(stack) {
	case 0:
		return nil, structuralError("missing search term")
	case 1:
		return stack[0], nil
	default:
		return nil, structuralError("missing operator")
	}
}

// Terms lists the leaves of the tree in left-to-right order.
func Terms(root Operand) []*Term {
	var terms []*Term
	var walk func(Operand)
	walk = func(op Operand) {
		switch n := op.(type) {
		case *Term:
			terms = append(terms, n)
		case *Not:
			walk(n.Child)
		case *And:
			walk(n.Left)
			walk(n.Right)
		case *Or:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(root)
	return terms
}
