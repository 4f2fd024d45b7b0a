package cs

import (
	"fmt"

	"github.com/consensys/gnark/constraint"

	"github.com/zkmatrix/plonkish/expr"
	"github.com/zkmatrix/plonkish/field"
)

// System collects column, gate, lookup and copy-constraint declarations and
// the baked values of fixed columns. It is not safe for concurrent use; once
// Finalize succeeds the returned Shape is.
type System struct {
	field field.Field

	columns  []Column
	nbByKind [3]int

	gates   []Gate
	lookups []Lookup
	copies  []CopyConstraint

	// baked fixed values, column ID -> row -> value
	fixedWrites map[int]map[int]constraint.Element

	finalized bool
}

func NewSystem(f field.Field) *System {
	return &System{
		field:       f,
		fixedWrites: make(map[int]map[int]constraint.Element),
	}
}

func (s *System) Field() field.Field {
	return s.field
}

// AddColumn declares a column of the given kind and returns its handle.
func (s *System) AddColumn(kind ColumnKind, name string) Column {
	if s.finalized {
		panic(ErrFinalized)
	}
	col := Column{
		Name:  name,
		Kind:  kind,
		Index: s.nbByKind[kind],
		ID:    len(s.columns),
	}
	s.nbByKind[kind]++
	s.columns = append(s.columns, col)
	return col
}

// CreateGate registers the identity selector * poly == 0 for every row.
// The selector must be a fixed column.
func (s *System) CreateGate(name string, selector Column, poly expr.Expression) error {
	if s.finalized {
		return ErrFinalized
	}
	if selector.Kind != Fixed {
		return fmt.Errorf("gate %q: selector %q is %s, want fixed: %w",
			name, selector.Name, selector.Kind, ErrShapeMismatch)
	}
	if err := s.checkQueries(poly); err != nil {
		return fmt.Errorf("gate %q: %w", name, err)
	}
	s.gates = append(s.gates, Gate{Name: name, Selector: selector, Poly: poly})
	return nil
}

// AddLookup registers a lookup argument: at every active row, the tuple of
// input expression values must equal some populated row of the table
// columns. Input and table arities must match, table columns must be fixed.
func (s *System) AddLookup(name string, inputs []expr.Expression, table []Column, selector *Column) error {
	if s.finalized {
		return ErrFinalized
	}
	if len(inputs) == 0 || len(inputs) != len(table) {
		return fmt.Errorf("lookup %q: %d input(s) against %d table column(s): %w",
			name, len(inputs), len(table), ErrShapeMismatch)
	}
	for _, col := range table {
		if col.Kind != Fixed {
			return fmt.Errorf("lookup %q: table column %q is %s, want fixed: %w",
				name, col.Name, col.Kind, ErrShapeMismatch)
		}
	}
	if selector != nil && selector.Kind != Fixed {
		return fmt.Errorf("lookup %q: selector %q is %s, want fixed: %w",
			name, selector.Name, selector.Kind, ErrShapeMismatch)
	}
	for _, in := range inputs {
		if err := s.checkQueries(in); err != nil {
			return fmt.Errorf("lookup %q: %w", name, err)
		}
	}
	s.lookups = append(s.lookups, Lookup{Name: name, Inputs: inputs, Table: table, Selector: selector})
	return nil
}

// AssignFixed bakes a fixed column value into the shape (table entries,
// constants). Row bounds are validated against the height at Finalize.
func (s *System) AssignFixed(col Column, row int, v constraint.Element) error {
	if s.finalized {
		return ErrFinalized
	}
	if col.Kind != Fixed {
		return fmt.Errorf("column %q is %s, want fixed: %w", col.Name, col.Kind, ErrShapeMismatch)
	}
	if row < 0 {
		return fmt.Errorf("column %q row %d: %w", col.Name, row, ErrOutOfBounds)
	}
	rows, ok := s.fixedWrites[col.ID]
	if !ok {
		rows = make(map[int]constraint.Element)
		s.fixedWrites[col.ID] = rows
	}
	rows[row] = v
	return nil
}

// AssertEqual records a shape-level copy constraint between two cells.
// It is meant for ties that hold for every instance; per-witness ties are
// recorded on the Assignment.
func (s *System) AssertEqual(a, b Cell) error {
	if s.finalized {
		return ErrFinalized
	}
	if a.Row < 0 || b.Row < 0 {
		return fmt.Errorf("copy constraint (%q,%d)=(%q,%d): %w",
			a.Column.Name, a.Row, b.Column.Name, b.Row, ErrOutOfBounds)
	}
	s.copies = append(s.copies, CopyConstraint{A: a, B: b})
	return nil
}

func (s *System) checkQueries(e expr.Expression) error {
	for _, q := range e.Queries(nil) {
		if q.Column < 0 || q.Column >= len(s.columns) {
			return fmt.Errorf("query references undeclared column %d: %w", q.Column, ErrShapeMismatch)
		}
	}
	return nil
}

// Finalize freezes the system into an immutable Shape with the given row
// count. Further declarations on the system fail with ErrFinalized.
func (s *System) Finalize(numRows int) (*Shape, error) {
	if s.finalized {
		return nil, ErrFinalized
	}
	if numRows <= 0 {
		return nil, fmt.Errorf("row count %d: %w", numRows, ErrOutOfBounds)
	}

	// materialize baked fixed columns, unassigned cells default to zero
	fixed := make([][]constraint.Element, s.nbByKind[Fixed])
	fixedHeights := make([]int, s.nbByKind[Fixed])
	for i := range fixed {
		fixed[i] = make([]constraint.Element, numRows)
	}
	for id, rows := range s.fixedWrites {
		col := s.columns[id]
		for row, v := range rows {
			if row >= numRows {
				return nil, fmt.Errorf("fixed column %q row %d, height %d: %w",
					col.Name, row, numRows, ErrOutOfBounds)
			}
			fixed[col.Index][row] = v
			if row+1 > fixedHeights[col.Index] {
				fixedHeights[col.Index] = row + 1
			}
		}
	}

	// table columns of one lookup must be populated to the same height
	for _, l := range s.lookups {
		h := fixedHeights[l.Table[0].Index]
		for _, col := range l.Table[1:] {
			if fixedHeights[col.Index] != h {
				return nil, fmt.Errorf("lookup %q: table columns of unequal height: %w",
					l.Name, ErrShapeMismatch)
			}
		}
	}

	for _, c := range s.copies {
		for _, cell := range []Cell{c.A, c.B} {
			if cell.Row >= numRows {
				return nil, fmt.Errorf("copy constraint cell (%q,%d), height %d: %w",
					cell.Column.Name, cell.Row, numRows, ErrOutOfBounds)
			}
		}
	}

	s.finalized = true
	return &Shape{
		field:        s.field,
		numRows:      numRows,
		columns:      append([]Column(nil), s.columns...),
		nbByKind:     s.nbByKind,
		gates:        append([]Gate(nil), s.gates...),
		lookups:      append([]Lookup(nil), s.lookups...),
		copies:       append([]CopyConstraint(nil), s.copies...),
		fixed:        fixed,
		fixedHeights: fixedHeights,
	}, nil
}
