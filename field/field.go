// Package field defines the arithmetic engine used throughout the constraint
// system. An engine implements gnark's constraint.Field over the opaque
// constraint.Element value type, so every column cell holds a reduced element
// of the chosen prime field.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint"

	"github.com/zkmatrix/plonkish/field/bn254"
	"github.com/zkmatrix/plonkish/field/m31"
)

type Field interface {
	constraint.Field
	Field() *big.Int
	FieldBitLen() int
	SerializedLen() int
}

func GetFieldFromOrder(x *big.Int) Field {
	if x.Cmp(bn254.ScalarField) == 0 {
		return &bn254.Field{}
	}
	if x.Cmp(m31.ScalarField) == 0 {
		return &m31.Field{}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}
