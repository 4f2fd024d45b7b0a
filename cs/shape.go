package cs

import (
	"github.com/consensys/gnark/constraint"

	"github.com/zkmatrix/plonkish/field"
)

// Shape is a finalized constraint system: columns, gates, lookups, copy
// constraints and baked fixed values. It is immutable and may be shared
// read-only across concurrently synthesized instances.
type Shape struct {
	field field.Field

	numRows  int
	columns  []Column
	nbByKind [3]int

	gates   []Gate
	lookups []Lookup
	copies  []CopyConstraint

	// baked values per fixed column index; fixedHeights counts the populated
	// prefix used as table height by lookup arguments
	fixed        [][]constraint.Element
	fixedHeights []int
}

func (sh *Shape) Field() field.Field {
	return sh.field
}

func (sh *Shape) NumRows() int {
	return sh.numRows
}

// Columns returns all declared columns in declaration order.
func (sh *Shape) Columns() []Column {
	return sh.columns
}

// NumColumns returns the number of columns of the given kind.
func (sh *Shape) NumColumns(kind ColumnKind) int {
	return sh.nbByKind[kind]
}

func (sh *Shape) Gates() []Gate {
	return sh.gates
}

func (sh *Shape) Lookups() []Lookup {
	return sh.lookups
}

// Copies returns the shape-level copy constraints.
func (sh *Shape) Copies() []CopyConstraint {
	return sh.copies
}

// FixedValue returns the baked value of a fixed column cell.
func (sh *Shape) FixedValue(col Column, row int) (constraint.Element, error) {
	if col.Kind != Fixed {
		return constraint.Element{}, ErrShapeMismatch
	}
	if row < 0 || row >= sh.numRows {
		return constraint.Element{}, ErrOutOfBounds
	}
	return sh.fixed[col.Index][row], nil
}

// TableHeight returns the populated height of a fixed column, i.e. the number
// of rows a lookup argument treats as table entries.
func (sh *Shape) TableHeight(col Column) int {
	if col.Kind != Fixed {
		return 0
	}
	return sh.fixedHeights[col.Index]
}
