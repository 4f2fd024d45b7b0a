package bracket

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zkmatrix/plonkish/field/bn254"
	"github.com/zkmatrix/plonkish/mock"
)

const propMaxLen = 24

// genBracketString draws strings over '(' and ')', biased neither way, so
// both balanced and unbalanced inputs show up.
func genBracketString() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(byte('('), byte(')'))).
		Map(func(bs []byte) string {
			if len(bs) > propMaxLen {
				bs = bs[:propMaxLen]
			}
			return string(bs)
		})
}

// genNoisyString additionally injects characters outside the alphabet.
func genNoisyString() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(byte('('), byte(')'), byte('*'), byte('a'))).
		Map(func(bs []byte) string {
			if len(bs) > propMaxLen {
				bs = bs[:propMaxLen]
			}
			return string(bs)
		})
}

func accepted(t *testing.T, c *Circuit, input string) bool {
	t.Helper()
	asg, err := c.Synthesize(input)
	if err != nil {
		t.Fatal(err)
	}
	report, err := mock.Verify(asg)
	if err != nil {
		t.Fatal(err)
	}
	return report.Result == mock.Accepted
}

// TestReferenceEquivalence is the core soundness/completeness property: the
// backend accepts a witness exactly when the reference fold accepts the
// string.
func TestReferenceEquivalence(t *testing.T) {
	c, err := New(&bn254.Field{}, propMaxLen)
	if err != nil {
		t.Fatal(err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("accepted iff balanced", prop.ForAll(
		func(input string) bool {
			return accepted(t, c, input) == IsValidBrackets(input)
		},
		genBracketString(),
	))
	properties.Property("illegal alphabet always rejected", prop.ForAll(
		func(input string) bool {
			for i := 0; i < len(input); i++ {
				if input[i] != '(' && input[i] != ')' {
					return !accepted(t, c, input)
				}
			}
			return true // no illegal character drawn, nothing to check
		},
		genNoisyString(),
	))
	properties.TestingRun(t)
}
