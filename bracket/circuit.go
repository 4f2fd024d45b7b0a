// Package bracket implements the balanced-bracket circuit: it proves that a
// private string of '(' and ')' characters is balanced, without revealing
// the string.
//
// Each input character occupies one row. The character code is range-checked
// by a lookup against the two legal codes, mapped to +1/-1 by the encoding
// gate (f(x) = 81 - 2x, so f(40)=1 and f(41)=-1 mod p), and folded into a
// running accumulator column linked across adjacent rows by the accumulation
// gate. A final copy constraint ties the last accumulator cell to zero.
//
// The end-of-trace zero check alone would accept ")(": the accumulator may
// dip below zero and recover, which the prime field cannot distinguish from
// staying non-negative. The guard gates close that hole: with
// u = accum + 1 and inv the claimed inverse of u,
//
//	u * (1 - u*inv) == 0
//	1 - u*inv == 0
//
// force u to be invertible, i.e. accum != -1, at every input row. A balance
// that steps by +-1 and never touches -1 never goes negative.
package bracket

import (
	"fmt"

	"github.com/consensys/gnark/constraint"

	"github.com/zkmatrix/plonkish/cs"
	"github.com/zkmatrix/plonkish/expr"
	"github.com/zkmatrix/plonkish/field"
	"github.com/zkmatrix/plonkish/logger"
)

const (
	OpenBracket  = 40 // '('
	CloseBracket = 41 // ')'
)

// Config holds the column handles of the bracket layout.
type Config struct {
	// advice
	Char    cs.Column // raw character code
	Encoded cs.Column // 81 - 2*char
	Accum   cs.Column // running sum of Encoded
	InvNext cs.Column // claimed inverse of Accum+1

	// fixed
	SInput    cs.Column // selector, 1 on every input row
	SFirst    cs.Column // selector, 1 on row 0 when the input is non-empty
	SAccum    cs.Column // selector, 1 on input rows >= 1
	Constants cs.Column // row 0 holds the zero cell tied to the final accumulator
	Table     cs.Column // bracket validity table, rows {40, 41}
}

// Circuit is the frozen bracket circuit for inputs of at most maxLen
// characters. It is immutable; Synthesize may be called concurrently.
type Circuit struct {
	f      field.Field
	maxLen int
	shape  *cs.Shape
	cfg    Config
}

// New declares the bracket layout against a fresh constraint system and
// freezes it. maxLen fixes the matrix height.
func New(f field.Field, maxLen int) (*Circuit, error) {
	if maxLen < 0 {
		return nil, fmt.Errorf("max length %d: %w", maxLen, cs.ErrOutOfBounds)
	}

	sys := cs.NewSystem(f)
	cfg := Config{
		Char:      sys.AddColumn(cs.Advice, "char"),
		Encoded:   sys.AddColumn(cs.Advice, "encoded"),
		Accum:     sys.AddColumn(cs.Advice, "accum"),
		InvNext:   sys.AddColumn(cs.Advice, "inv_accum_plus_one"),
		SInput:    sys.AddColumn(cs.Fixed, "s_input"),
		SFirst:    sys.AddColumn(cs.Fixed, "s_first"),
		SAccum:    sys.AddColumn(cs.Fixed, "s_accum"),
		Constants: sys.AddColumn(cs.Fixed, "constants"),
		Table:     sys.AddColumn(cs.Fixed, "bracket_table"),
	}

	one := f.One()
	e81 := f.FromInterface(81)
	two := f.FromInterface(2)

	// encoded == 81 - 2*char; a pure identity, satisfiable for any char.
	// Rejecting illegal characters is the lookup's job.
	err := sys.CreateGate("encoding", cfg.SInput,
		expr.Sub(cfg.Encoded.Cur(),
			expr.Sub(expr.Constant(e81), expr.Scale(cfg.Char.Cur(), two))))
	if err != nil {
		return nil, err
	}

	// accum == accum[-1] + encoded, for input rows past the first
	err = sys.CreateGate("accumulation", cfg.SAccum,
		expr.Sub(expr.Sub(cfg.Accum.Cur(), cfg.Accum.Prev()), cfg.Encoded.Cur()))
	if err != nil {
		return nil, err
	}

	// row 0 has no previous accumulator; its base case is accum == encoded
	err = sys.CreateGate("accumulation first row", cfg.SFirst,
		expr.Sub(cfg.Accum.Cur(), cfg.Encoded.Cur()))
	if err != nil {
		return nil, err
	}

	u := expr.Add(cfg.Accum.Cur(), expr.Constant(one))
	uInv := expr.Mul(u, cfg.InvNext.Cur())
	err = sys.CreateGate("accum guard a", cfg.SInput,
		expr.Mul(u, expr.Sub(expr.Constant(one), uInv)))
	if err != nil {
		return nil, err
	}
	err = sys.CreateGate("accum guard b", cfg.SInput,
		expr.Sub(expr.Constant(one), uInv))
	if err != nil {
		return nil, err
	}

	err = sys.AddLookup("char validity",
		[]expr.Expression{cfg.Char.Cur()}, []cs.Column{cfg.Table}, &cfg.SInput)
	if err != nil {
		return nil, err
	}

	if err := sys.AssignFixed(cfg.Table, 0, f.FromInterface(OpenBracket)); err != nil {
		return nil, err
	}
	if err := sys.AssignFixed(cfg.Table, 1, f.FromInterface(CloseBracket)); err != nil {
		return nil, err
	}
	// the zero cell the final accumulator is copied against
	if err := sys.AssignFixed(cfg.Constants, 0, constraint.Element{}); err != nil {
		return nil, err
	}

	// the table needs two rows even for tiny inputs
	numRows := maxLen
	if numRows < 2 {
		numRows = 2
	}
	shape, err := sys.Finalize(numRows)
	if err != nil {
		return nil, err
	}

	return &Circuit{f: f, maxLen: maxLen, shape: shape, cfg: cfg}, nil
}

func (c *Circuit) Shape() *cs.Shape {
	return c.shape
}

func (c *Circuit) Config() Config {
	return c.cfg
}

func (c *Circuit) MaxLen() int {
	return c.maxLen
}

// Encode maps a character code to its balance contribution: 81 - 2*x mod p.
func Encode(f field.Field, char byte) constraint.Element {
	return f.Sub(f.FromInterface(81), f.Mul(f.FromInterface(2), f.FromInterface(char)))
}

// Synthesize fills the witness for one private input, walking the string row
// by row and maintaining the running accumulator. It records the copy
// constraint tying the final accumulator to the fixed zero cell.
//
// Synthesize does not validate the input alphabet: an illegal character
// still produces a complete witness, and the lookup argument rejects it at
// verification time. Only an input longer than the circuit's maximum length
// is an error here, since it does not fit the matrix.
func (c *Circuit) Synthesize(input string) (*cs.Assignment, error) {
	if len(input) > c.maxLen {
		return nil, fmt.Errorf("input length %d exceeds circuit maximum %d: %w",
			len(input), c.maxLen, cs.ErrOutOfBounds)
	}

	f := c.f
	asg := cs.NewAssignment(c.shape)

	running := constraint.Element{}
	for i := 0; i < len(input); i++ {
		char := f.FromInterface(input[i])
		encoded := Encode(f, input[i])
		running = f.Add(running, encoded)

		if err := asg.AssignAdvice(c.cfg.Char, i, char); err != nil {
			return nil, err
		}
		if err := asg.AssignAdvice(c.cfg.Encoded, i, encoded); err != nil {
			return nil, err
		}
		if err := asg.AssignAdvice(c.cfg.Accum, i, running); err != nil {
			return nil, err
		}

		// inverse of accum+1; zero when accum == -1, which the guard gates
		// then refuse
		inv, ok := f.Inverse(f.Add(running, f.One()))
		if !ok {
			inv = constraint.Element{}
		}
		if err := asg.AssignAdvice(c.cfg.InvNext, i, inv); err != nil {
			return nil, err
		}

		if err := asg.EnableSelector(c.cfg.SInput, i); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := asg.EnableSelector(c.cfg.SFirst, i); err != nil {
				return nil, err
			}
		} else {
			if err := asg.EnableSelector(c.cfg.SAccum, i); err != nil {
				return nil, err
			}
		}
	}

	// padding rows keep selector 0 and zero advice; gates are vacuous there

	zeroCell := cs.Cell{Column: c.cfg.Constants, Row: 0}
	if len(input) == 0 {
		// no last active row exists; the check degenerates to a tautology
		if err := asg.ConstrainEqual(zeroCell, zeroCell); err != nil {
			return nil, err
		}
	} else {
		last := cs.Cell{Column: c.cfg.Accum, Row: len(input) - 1}
		if err := asg.ConstrainEqual(last, zeroCell); err != nil {
			return nil, err
		}
	}

	log := logger.Logger()
	log.Debug().
		Int("length", len(input)).
		Int("rows", c.shape.NumRows()).
		Msg("bracket witness synthesized")

	return asg, nil
}

// IsValidBrackets is the reference fold the circuit arithmetizes: +1 per
// '(', -1 per ')', never negative, zero at the end. Any other character
// makes the string invalid.
func IsValidBrackets(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case OpenBracket:
			depth++
		case CloseBracket:
			if depth == 0 {
				return false
			}
			depth--
		default:
			return false
		}
	}
	return depth == 0
}
