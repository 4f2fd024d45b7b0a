package expr

import (
	"errors"
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/require"

	"github.com/zkmatrix/plonkish/field/m31"
)

var errOOB = errors.New("out of range")

// gridReader reads from a small in-memory matrix, one slice per column.
func gridReader(cols [][]uint64, row int) CellReader {
	return func(column int, rot Rotation) (constraint.Element, error) {
		r := row + int(rot)
		if r < 0 || r >= len(cols[column]) {
			return constraint.Element{}, errOOB
		}
		return constraint.Element{cols[column][r]}, nil
	}
}

func TestEval(t *testing.T) {
	f := &m31.Field{}
	cols := [][]uint64{
		{3, 5, 7},
		{10, 20, 30},
	}

	// c0 * c1 + 2
	e := Add(Mul(Query(0, 0), Query(1, 0)), Constant(f.FromInterface(2)))
	v, err := e.Eval(f, gridReader(cols, 1))
	require.NoError(t, err)
	require.Equal(t, uint64(102), v[0])

	// c0[+1] - c0[-1]
	e = Sub(Query(0, 1), Query(0, -1))
	v, err = e.Eval(f, gridReader(cols, 1))
	require.NoError(t, err)
	require.Equal(t, uint64(4), v[0])

	// 3 * (-c1)
	e = Scale(Neg(Query(1, 0)), f.FromInterface(3))
	v, err = e.Eval(f, gridReader(cols, 0))
	require.NoError(t, err)
	require.Equal(t, uint64(m31.P-30), v[0])
}

func TestEvalOutOfRange(t *testing.T) {
	f := &m31.Field{}
	cols := [][]uint64{{1, 2}}

	e := Add(Query(0, 0), Query(0, 1))
	_, err := e.Eval(f, gridReader(cols, 1))
	require.ErrorIs(t, err, errOOB)
}

func TestDegree(t *testing.T) {
	one := constraint.Element{1}

	require.Equal(t, 0, Constant(one).Degree())
	require.Equal(t, 1, Query(0, 0).Degree())
	require.Equal(t, 1, Add(Query(0, 0), Constant(one)).Degree())
	require.Equal(t, 2, Mul(Query(0, 0), Query(1, 0)).Degree())
	require.Equal(t, 3, Mul(Query(0, 0), Mul(Query(1, 0), Query(1, 1))).Degree())
	require.Equal(t, 2, Neg(Scale(Mul(Query(0, 0), Query(0, 0)), one)).Degree())
}

func TestQueries(t *testing.T) {
	e := Sub(Sub(Query(2, 0), Query(2, -1)), Query(1, 0))
	qs := e.Queries(nil)
	require.Equal(t, []QueryRef{
		{Column: 2, Rotation: 0},
		{Column: 2, Rotation: -1},
		{Column: 1, Rotation: 0},
	}, qs)
}
