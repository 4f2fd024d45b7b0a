package cs

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/constraint"
)

// Assignment is the concrete matrix for one circuit instance: a private copy
// of the shape's fixed columns (so the synthesizer can enable selectors),
// instance and advice values, and the instance-level copy constraints
// recorded during synthesis. Unassigned cells read as the field zero.
//
// An Assignment is owned by a single synthesis; independent instances built
// from the same Shape may be filled concurrently.
type Assignment struct {
	shape *Shape

	fixed    [][]constraint.Element
	instance [][]constraint.Element
	advice   [][]constraint.Element

	// assigned tracks written cells per global column ID
	assigned []*bitset.BitSet

	copies []CopyConstraint
}

func NewAssignment(shape *Shape) *Assignment {
	n := uint(shape.numRows)
	a := &Assignment{
		shape:    shape,
		fixed:    make([][]constraint.Element, shape.nbByKind[Fixed]),
		instance: make([][]constraint.Element, shape.nbByKind[Instance]),
		advice:   make([][]constraint.Element, shape.nbByKind[Advice]),
		assigned: make([]*bitset.BitSet, len(shape.columns)),
	}
	for i := range a.fixed {
		a.fixed[i] = append([]constraint.Element(nil), shape.fixed[i]...)
	}
	for i := range a.instance {
		a.instance[i] = make([]constraint.Element, shape.numRows)
	}
	for i := range a.advice {
		a.advice[i] = make([]constraint.Element, shape.numRows)
	}
	for i := range a.assigned {
		a.assigned[i] = bitset.New(n)
	}
	// baked fixed cells count as assigned
	for _, col := range shape.columns {
		if col.Kind != Fixed {
			continue
		}
		for row := 0; row < shape.fixedHeights[col.Index]; row++ {
			a.assigned[col.ID].Set(uint(row))
		}
	}
	return a
}

func (a *Assignment) Shape() *Shape {
	return a.shape
}

func (a *Assignment) storage(col Column) [][]constraint.Element {
	switch col.Kind {
	case Fixed:
		return a.fixed
	case Instance:
		return a.instance
	default:
		return a.advice
	}
}

func (a *Assignment) set(col Column, row int, v constraint.Element) error {
	if row < 0 || row >= a.shape.numRows {
		return fmt.Errorf("column %q row %d, height %d: %w",
			col.Name, row, a.shape.numRows, ErrOutOfBounds)
	}
	a.storage(col)[col.Index][row] = v
	a.assigned[col.ID].Set(uint(row))
	return nil
}

// AssignAdvice writes a private witness cell.
func (a *Assignment) AssignAdvice(col Column, row int, v constraint.Element) error {
	if col.Kind != Advice {
		return fmt.Errorf("column %q is %s, want advice: %w", col.Name, col.Kind, ErrShapeMismatch)
	}
	return a.set(col, row, v)
}

// AssignInstance writes a public input cell.
func (a *Assignment) AssignInstance(col Column, row int, v constraint.Element) error {
	if col.Kind != Instance {
		return fmt.Errorf("column %q is %s, want instance: %w", col.Name, col.Kind, ErrShapeMismatch)
	}
	return a.set(col, row, v)
}

// AssignFixed overrides a fixed cell for this instance. Selectors are fixed
// columns written here, row by row, during synthesis.
func (a *Assignment) AssignFixed(col Column, row int, v constraint.Element) error {
	if col.Kind != Fixed {
		return fmt.Errorf("column %q is %s, want fixed: %w", col.Name, col.Kind, ErrShapeMismatch)
	}
	return a.set(col, row, v)
}

// EnableSelector sets a fixed selector cell to one.
func (a *Assignment) EnableSelector(col Column, row int) error {
	return a.AssignFixed(col, row, a.shape.field.One())
}

// ConstrainEqual records an instance-level copy constraint between two cells.
func (a *Assignment) ConstrainEqual(x, y Cell) error {
	for _, cell := range []Cell{x, y} {
		if cell.Row < 0 || cell.Row >= a.shape.numRows {
			return fmt.Errorf("copy constraint cell (%q,%d), height %d: %w",
				cell.Column.Name, cell.Row, a.shape.numRows, ErrOutOfBounds)
		}
	}
	a.copies = append(a.copies, CopyConstraint{A: x, B: y})
	return nil
}

// Copies returns the instance-level copy constraints.
func (a *Assignment) Copies() []CopyConstraint {
	return a.copies
}

// Value reads one cell, bounds-checked.
func (a *Assignment) Value(col Column, row int) (constraint.Element, error) {
	if row < 0 || row >= a.shape.numRows {
		return constraint.Element{}, fmt.Errorf("column %q row %d, height %d: %w",
			col.Name, row, a.shape.numRows, ErrOutOfBounds)
	}
	return a.storage(col)[col.Index][row], nil
}

// ValueByID reads one cell by global column ID, bounds-checked.
func (a *Assignment) ValueByID(id, row int) (constraint.Element, error) {
	if id < 0 || id >= len(a.shape.columns) {
		return constraint.Element{}, fmt.Errorf("column id %d: %w", id, ErrShapeMismatch)
	}
	return a.Value(a.shape.columns[id], row)
}

// Assigned reports whether the cell was explicitly written (or baked into the
// shape, for fixed columns).
func (a *Assignment) Assigned(col Column, row int) bool {
	if row < 0 || row >= a.shape.numRows {
		return false
	}
	return a.assigned[col.ID].Test(uint(row))
}
