// Package cs implements the PLONKish constraint system: a rectangular matrix
// of field elements organized in typed columns, constrained by gates
// (selector-controlled polynomial identities over rows), lookup arguments
// (tuple membership in fixed tables) and copy constraints (cell equality).
//
// A System collects declarations and fixed values, then Finalize freezes it
// into an immutable Shape. Shapes are safe for concurrent shared use; each
// witness instance owns its own Assignment built from the shape.
package cs

import (
	"errors"

	"github.com/zkmatrix/plonkish/expr"
)

var (
	// ErrShapeMismatch reports a declaration with inconsistent arities or
	// column kinds. It aborts circuit building.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrOutOfBounds reports a cell reference outside the matrix.
	ErrOutOfBounds = errors.New("row index out of bounds")

	// ErrFinalized reports a declaration after Finalize.
	ErrFinalized = errors.New("constraint system already finalized")
)

type ColumnKind uint8

const (
	// Fixed column values are baked in at construction time or written by the
	// synthesizer (selectors); prover and verifier agree on them.
	Fixed ColumnKind = iota
	// Instance column values are public, supplied per execution.
	Instance
	// Advice column values are the private witness.
	Advice
)

func (k ColumnKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Instance:
		return "instance"
	case Advice:
		return "advice"
	}
	return "unknown"
}

// Column is a stable handle to a declared column. Index is the per-kind
// index, ID the global declaration index (deterministic for a given sequence
// of declarations).
type Column struct {
	Name  string
	Kind  ColumnKind
	Index int
	ID    int
}

// Query references the column's value at the given rotation inside a gate
// polynomial.
func (c Column) Query(rot expr.Rotation) expr.Expression {
	return expr.Query(c.ID, rot)
}

// Cur is shorthand for Query(0).
func (c Column) Cur() expr.Expression {
	return expr.Query(c.ID, 0)
}

// Prev is shorthand for Query(-1).
func (c Column) Prev() expr.Expression {
	return expr.Query(c.ID, -1)
}

// Cell designates one matrix cell.
type Cell struct {
	Column Column
	Row    int
}

// CopyConstraint asserts that two cells hold equal values.
type CopyConstraint struct {
	A, B Cell
}

// Gate is a named polynomial identity. It must vanish at every row where the
// selector column is nonzero.
type Gate struct {
	Name     string
	Selector Column
	Poly     expr.Expression
}

// Lookup requires the tuple produced by Inputs at every active row to appear
// among the populated rows of the table columns. A nil Selector makes every
// row active.
type Lookup struct {
	Name     string
	Inputs   []expr.Expression
	Table    []Column
	Selector *Column
}
