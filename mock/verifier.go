// Package mock implements the backend contract as a plain evaluator: it
// walks the full matrix of a circuit instance and reports whether every
// gate, lookup argument and copy constraint holds. No commitments, no
// transcript; the same role halo2's MockProver plays for halo2 circuits.
package mock

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark/constraint"
	"golang.org/x/sync/errgroup"

	"github.com/zkmatrix/plonkish/cs"
	"github.com/zkmatrix/plonkish/expr"
	"github.com/zkmatrix/plonkish/logger"
)

type Result uint8

const (
	Accepted Result = iota
	Rejected
)

func (r Result) String() string {
	if r == Accepted {
		return "accepted"
	}
	return "rejected"
}

// GateFailure reports a gate polynomial that did not vanish at an active row.
type GateFailure struct {
	Gate string
	Row  int
}

// LookupFailure reports an input tuple missing from its table at an active row.
type LookupFailure struct {
	Lookup string
	Row    int
}

// CopyFailure reports a copy constraint between unequal cells.
type CopyFailure struct {
	Constraint cs.CopyConstraint
}

// Report is the outcome of one verification: Accepted iff all failure lists
// are empty.
type Report struct {
	Result Result

	GateFailures   []GateFailure
	LookupFailures []LookupFailure
	CopyFailures   []CopyFailure
}

func (r *Report) String() string {
	if r.Result == Accepted {
		return "accepted"
	}
	var sb strings.Builder
	sb.WriteString("rejected:")
	for _, f := range r.GateFailures {
		fmt.Fprintf(&sb, " gate %q at row %d;", f.Gate, f.Row)
	}
	for _, f := range r.LookupFailures {
		fmt.Fprintf(&sb, " lookup %q at row %d;", f.Lookup, f.Row)
	}
	for _, f := range r.CopyFailures {
		fmt.Fprintf(&sb, " copy (%q,%d)!=(%q,%d);",
			f.Constraint.A.Column.Name, f.Constraint.A.Row,
			f.Constraint.B.Column.Name, f.Constraint.B.Row)
	}
	return sb.String()
}

// Verify checks every gate, lookup and copy constraint of the instance.
// A violated constraint yields Rejected with the offending locations; a
// malformed reference (a rotation escaping the matrix on an active row)
// yields an error wrapping cs.ErrOutOfBounds.
//
// Verification is a deterministic function of the matrix. Gates are
// independent of each other and are checked concurrently.
func Verify(asg *cs.Assignment) (*Report, error) {
	shape := asg.Shape()
	log := logger.Logger()

	report := &Report{}

	gates := shape.Gates()
	perGate := make([][]GateFailure, len(gates))
	var eg errgroup.Group
	for i := range gates {
		i := i
		eg.Go(func() error {
			failures, err := checkGate(asg, gates[i])
			if err != nil {
				return err
			}
			perGate[i] = failures
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, f := range perGate {
		report.GateFailures = append(report.GateFailures, f...)
	}

	for _, l := range shape.Lookups() {
		failures, err := checkLookup(asg, l)
		if err != nil {
			return nil, err
		}
		report.LookupFailures = append(report.LookupFailures, failures...)
	}

	for _, c := range shape.Copies() {
		ok, err := copyHolds(asg, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.CopyFailures = append(report.CopyFailures, CopyFailure{Constraint: c})
		}
	}
	for _, c := range asg.Copies() {
		ok, err := copyHolds(asg, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.CopyFailures = append(report.CopyFailures, CopyFailure{Constraint: c})
		}
	}

	if len(report.GateFailures) == 0 && len(report.LookupFailures) == 0 && len(report.CopyFailures) == 0 {
		report.Result = Accepted
	} else {
		report.Result = Rejected
		log.Debug().
			Int("gateFailures", len(report.GateFailures)).
			Int("lookupFailures", len(report.LookupFailures)).
			Int("copyFailures", len(report.CopyFailures)).
			Msg("instance rejected")
	}
	return report, nil
}

// reader builds the cell resolver for one evaluation row.
func reader(asg *cs.Assignment, row int) expr.CellReader {
	return func(column int, rot expr.Rotation) (constraint.Element, error) {
		return asg.ValueByID(column, row+int(rot))
	}
}

func checkGate(asg *cs.Assignment, g cs.Gate) ([]GateFailure, error) {
	shape := asg.Shape()
	engine := shape.Field()
	var failures []GateFailure
	for row := 0; row < shape.NumRows(); row++ {
		sel, err := asg.Value(g.Selector, row)
		if err != nil {
			return nil, fmt.Errorf("gate %q: %w", g.Name, err)
		}
		if sel.IsZero() {
			// the selector excludes this row; rotations are not range-checked
			// on inactive rows
			continue
		}
		v, err := g.Poly.Eval(engine, reader(asg, row))
		if err != nil {
			return nil, fmt.Errorf("gate %q at row %d: %w", g.Name, row, err)
		}
		prod := engine.Mul(sel, v)
		if !prod.IsZero() {
			failures = append(failures, GateFailure{Gate: g.Name, Row: row})
		}
	}
	return failures, nil
}

func checkLookup(asg *cs.Assignment, l cs.Lookup) ([]LookupFailure, error) {
	shape := asg.Shape()
	engine := shape.Field()

	// the table is the populated prefix of its fixed columns
	height := shape.TableHeight(l.Table[0])
	table := make(map[string]struct{}, height)
	for row := 0; row < height; row++ {
		var key strings.Builder
		for _, col := range l.Table {
			v, err := shape.FixedValue(col, row)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: %w", l.Name, err)
			}
			key.WriteString(engine.String(v))
			key.WriteByte(',')
		}
		table[key.String()] = struct{}{}
	}

	var failures []LookupFailure
	for row := 0; row < shape.NumRows(); row++ {
		if l.Selector != nil {
			sel, err := asg.Value(*l.Selector, row)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: %w", l.Name, err)
			}
			if sel.IsZero() {
				continue
			}
		}
		var key strings.Builder
		for _, in := range l.Inputs {
			v, err := in.Eval(engine, reader(asg, row))
			if err != nil {
				return nil, fmt.Errorf("lookup %q at row %d: %w", l.Name, row, err)
			}
			key.WriteString(engine.String(v))
			key.WriteByte(',')
		}
		if _, ok := table[key.String()]; !ok {
			failures = append(failures, LookupFailure{Lookup: l.Name, Row: row})
		}
	}
	return failures, nil
}

func copyHolds(asg *cs.Assignment, c cs.CopyConstraint) (bool, error) {
	a, err := asg.Value(c.A.Column, c.A.Row)
	if err != nil {
		return false, err
	}
	b, err := asg.Value(c.B.Column, c.B.Row)
	if err != nil {
		return false, err
	}
	return a == b, nil
}
