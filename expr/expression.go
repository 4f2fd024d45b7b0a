// Package expr implements the polynomial expressions that gates are made of.
// An expression is a tree over column queries at relative row rotations,
// field constants and the arithmetic operators, evaluated with a pluggable
// field engine (gnark's constraint.Field contract).
package expr

import (
	"fmt"

	"github.com/consensys/gnark/constraint"
)

// Rotation is a relative row offset inside a gate polynomial: 0 refers to the
// row the gate is evaluated at, 1 to the next row, -1 to the previous one.
type Rotation int

// Engine is the subset of the field engine needed to evaluate expressions.
// Every field.Field implementation satisfies it.
type Engine interface {
	Add(a, b constraint.Element) constraint.Element
	Sub(a, b constraint.Element) constraint.Element
	Mul(a, b constraint.Element) constraint.Element
	Neg(a constraint.Element) constraint.Element
}

// CellReader resolves a column query to the cell value at the evaluation row
// shifted by the query's rotation. It returns an error when the shifted row
// falls outside the matrix.
type CellReader func(column int, rot Rotation) (constraint.Element, error)

type Expression interface {
	// Degree returns the total degree of the polynomial.
	Degree() int

	// Eval evaluates the expression at one row, reading cells through at.
	Eval(engine Engine, at CellReader) (constraint.Element, error)

	// Queries appends all column queries in the expression to dst.
	Queries(dst []QueryRef) []QueryRef

	String() string
}

// QueryRef is a (column, rotation) reference appearing in an expression.
// The column is identified by its global declaration index.
type QueryRef struct {
	Column   int
	Rotation Rotation
}

type constantExpr struct {
	v constraint.Element
}

type queryExpr struct {
	ref QueryRef
}

type sumExpr struct {
	a, b Expression
}

type subExpr struct {
	a, b Expression
}

type productExpr struct {
	a, b Expression
}

type negExpr struct {
	a Expression
}

type scaledExpr struct {
	a Expression
	k constraint.Element
}

// Constant returns the expression c.
func Constant(c constraint.Element) Expression {
	return constantExpr{v: c}
}

// Query returns the value of the given column at the given rotation.
func Query(column int, rot Rotation) Expression {
	return queryExpr{ref: QueryRef{Column: column, Rotation: rot}}
}

// Add returns a + b.
func Add(a, b Expression) Expression {
	return sumExpr{a: a, b: b}
}

// Sub returns a - b.
func Sub(a, b Expression) Expression {
	return subExpr{a: a, b: b}
}

// Mul returns a * b.
func Mul(a, b Expression) Expression {
	return productExpr{a: a, b: b}
}

// Neg returns -a.
func Neg(a Expression) Expression {
	return negExpr{a: a}
}

// Scale returns k * a.
func Scale(a Expression, k constraint.Element) Expression {
	return scaledExpr{a: a, k: k}
}

func (e constantExpr) Degree() int { return 0 }
func (e queryExpr) Degree() int    { return 1 }
func (e negExpr) Degree() int      { return e.a.Degree() }
func (e scaledExpr) Degree() int   { return e.a.Degree() }

func (e sumExpr) Degree() int {
	da, db := e.a.Degree(), e.b.Degree()
	if da > db {
		return da
	}
	return db
}

func (e subExpr) Degree() int {
	da, db := e.a.Degree(), e.b.Degree()
	if da > db {
		return da
	}
	return db
}

func (e productExpr) Degree() int {
	return e.a.Degree() + e.b.Degree()
}

func (e constantExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	return e.v, nil
}

func (e queryExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	return at(e.ref.Column, e.ref.Rotation)
}

func (e sumExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	a, err := e.a.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	b, err := e.b.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	return engine.Add(a, b), nil
}

func (e subExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	a, err := e.a.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	b, err := e.b.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	return engine.Sub(a, b), nil
}

func (e productExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	a, err := e.a.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	b, err := e.b.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	return engine.Mul(a, b), nil
}

func (e negExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	a, err := e.a.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	return engine.Neg(a), nil
}

func (e scaledExpr) Eval(engine Engine, at CellReader) (constraint.Element, error) {
	a, err := e.a.Eval(engine, at)
	if err != nil {
		return constraint.Element{}, err
	}
	return engine.Mul(a, e.k), nil
}

func (e constantExpr) Queries(dst []QueryRef) []QueryRef { return dst }
func (e queryExpr) Queries(dst []QueryRef) []QueryRef    { return append(dst, e.ref) }
func (e sumExpr) Queries(dst []QueryRef) []QueryRef      { return e.b.Queries(e.a.Queries(dst)) }
func (e subExpr) Queries(dst []QueryRef) []QueryRef      { return e.b.Queries(e.a.Queries(dst)) }
func (e productExpr) Queries(dst []QueryRef) []QueryRef  { return e.b.Queries(e.a.Queries(dst)) }
func (e negExpr) Queries(dst []QueryRef) []QueryRef      { return e.a.Queries(dst) }
func (e scaledExpr) Queries(dst []QueryRef) []QueryRef   { return e.a.Queries(dst) }

func (e constantExpr) String() string {
	return fmt.Sprintf("%v", e.v[0])
}

func (e queryExpr) String() string {
	if e.ref.Rotation == 0 {
		return fmt.Sprintf("c%d", e.ref.Column)
	}
	return fmt.Sprintf("c%d[%+d]", e.ref.Column, e.ref.Rotation)
}

func (e sumExpr) String() string {
	return fmt.Sprintf("(%s + %s)", e.a.String(), e.b.String())
}

func (e subExpr) String() string {
	return fmt.Sprintf("(%s - %s)", e.a.String(), e.b.String())
}

func (e productExpr) String() string {
	return fmt.Sprintf("(%s * %s)", e.a.String(), e.b.String())
}

func (e negExpr) String() string {
	return fmt.Sprintf("(-%s)", e.a.String())
}

func (e scaledExpr) String() string {
	return fmt.Sprintf("(%v * %s)", e.k[0], e.a.String())
}
