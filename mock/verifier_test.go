package mock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zkmatrix/plonkish/cs"
	"github.com/zkmatrix/plonkish/expr"
	"github.com/zkmatrix/plonkish/field/m31"
)

// doubling builds a 4-row chain circuit: x[i+1] == 2*x[i] on selector rows.
func doubling(t *testing.T) (*cs.Shape, cs.Column, cs.Column) {
	t.Helper()
	f := &m31.Field{}
	sys := cs.NewSystem(f)

	x := sys.AddColumn(cs.Advice, "x")
	s := sys.AddColumn(cs.Fixed, "s")
	require.NoError(t, sys.CreateGate("double", s,
		expr.Sub(x.Query(1), expr.Scale(x.Cur(), f.FromInterface(2)))))

	shape, err := sys.Finalize(4)
	require.NoError(t, err)
	return shape, x, s
}

func TestGateWithRotation(t *testing.T) {
	shape, x, s := doubling(t)
	f := shape.Field()

	asg := cs.NewAssignment(shape)
	for i, v := range []int{1, 2, 4, 8} {
		require.NoError(t, asg.AssignAdvice(x, i, f.FromInterface(v)))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, asg.EnableSelector(s, i))
	}

	report, err := Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Accepted, report.Result)

	// break the chain at row 2
	require.NoError(t, asg.AssignAdvice(x, 3, f.FromInterface(9)))
	report, err = Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Rejected, report.Result)
	require.Equal(t, []GateFailure{{Gate: "double", Row: 2}}, report.GateFailures)
}

func TestGateRotationEscapesMatrix(t *testing.T) {
	shape, x, s := doubling(t)
	f := shape.Field()

	asg := cs.NewAssignment(shape)
	require.NoError(t, asg.AssignAdvice(x, 3, f.One()))
	// activating the last row makes x[+1] reference row 4
	require.NoError(t, asg.EnableSelector(s, 3))

	_, err := Verify(asg)
	require.ErrorIs(t, err, cs.ErrOutOfBounds)
}

func TestInactiveRowsAreVacuous(t *testing.T) {
	shape, x, _ := doubling(t)
	f := shape.Field()

	// nothing enabled, arbitrary junk everywhere
	asg := cs.NewAssignment(shape)
	for i := 0; i < 4; i++ {
		require.NoError(t, asg.AssignAdvice(x, i, f.FromInterface(1000+i)))
	}

	report, err := Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Accepted, report.Result)
}

func TestLookup(t *testing.T) {
	f := &m31.Field{}
	sys := cs.NewSystem(f)

	a := sys.AddColumn(cs.Advice, "a")
	b := sys.AddColumn(cs.Advice, "b")
	tk := sys.AddColumn(cs.Fixed, "t_key")
	tv := sys.AddColumn(cs.Fixed, "t_val")

	// squares table, (0,0) included so unassigned rows pass
	for i, kv := range [][2]int{{0, 0}, {2, 4}, {3, 9}} {
		require.NoError(t, sys.AssignFixed(tk, i, f.FromInterface(kv[0])))
		require.NoError(t, sys.AssignFixed(tv, i, f.FromInterface(kv[1])))
	}
	require.NoError(t, sys.AddLookup("squares",
		[]expr.Expression{a.Cur(), b.Cur()}, []cs.Column{tk, tv}, nil))

	shape, err := sys.Finalize(4)
	require.NoError(t, err)

	asg := cs.NewAssignment(shape)
	require.NoError(t, asg.AssignAdvice(a, 0, f.FromInterface(2)))
	require.NoError(t, asg.AssignAdvice(b, 0, f.FromInterface(4)))
	require.NoError(t, asg.AssignAdvice(a, 1, f.FromInterface(3)))
	require.NoError(t, asg.AssignAdvice(b, 1, f.FromInterface(9)))

	report, err := Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Accepted, report.Result)

	// (3, 10) is not in the table
	require.NoError(t, asg.AssignAdvice(b, 1, f.FromInterface(10)))
	report, err = Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Rejected, report.Result)
	require.Equal(t, []LookupFailure{{Lookup: "squares", Row: 1}}, report.LookupFailures)
}

func TestSelectorGatedLookup(t *testing.T) {
	f := &m31.Field{}
	sys := cs.NewSystem(f)

	a := sys.AddColumn(cs.Advice, "a")
	s := sys.AddColumn(cs.Fixed, "s")
	tbl := sys.AddColumn(cs.Fixed, "tbl")

	// table without zero: inactive rows must be exempt for this to verify
	require.NoError(t, sys.AssignFixed(tbl, 0, f.FromInterface(40)))
	require.NoError(t, sys.AssignFixed(tbl, 1, f.FromInterface(41)))
	require.NoError(t, sys.AddLookup("chars",
		[]expr.Expression{a.Cur()}, []cs.Column{tbl}, &s))

	shape, err := sys.Finalize(4)
	require.NoError(t, err)

	asg := cs.NewAssignment(shape)
	require.NoError(t, asg.AssignAdvice(a, 0, f.FromInterface(40)))
	require.NoError(t, asg.EnableSelector(s, 0))

	report, err := Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Accepted, report.Result)

	// an illegal value on an active row is caught
	require.NoError(t, asg.AssignAdvice(a, 1, f.FromInterface(42)))
	require.NoError(t, asg.EnableSelector(s, 1))
	report, err = Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Rejected, report.Result)
}

func TestCopyConstraints(t *testing.T) {
	f := &m31.Field{}
	sys := cs.NewSystem(f)

	adv := sys.AddColumn(cs.Advice, "adv")
	ins := sys.AddColumn(cs.Instance, "ins")

	// shape-level tie: the public input must equal the witness output cell
	require.NoError(t, sys.AssertEqual(
		cs.Cell{Column: adv, Row: 3}, cs.Cell{Column: ins, Row: 0}))

	shape, err := sys.Finalize(4)
	require.NoError(t, err)

	asg := cs.NewAssignment(shape)
	require.NoError(t, asg.AssignAdvice(adv, 3, f.FromInterface(11)))
	require.NoError(t, asg.AssignInstance(ins, 0, f.FromInterface(11)))

	// instance-level tie recorded during synthesis
	require.NoError(t, asg.AssignAdvice(adv, 0, f.FromInterface(5)))
	require.NoError(t, asg.AssignAdvice(adv, 1, f.FromInterface(5)))
	require.NoError(t, asg.ConstrainEqual(
		cs.Cell{Column: adv, Row: 0}, cs.Cell{Column: adv, Row: 1}))

	report, err := Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Accepted, report.Result)

	require.NoError(t, asg.AssignInstance(ins, 0, f.FromInterface(12)))
	report, err = Verify(asg)
	require.NoError(t, err)
	require.Equal(t, Rejected, report.Result)
	require.Len(t, report.CopyFailures, 1)
}
