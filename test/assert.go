// Package test provides assertion helpers for circuit tests.
package test

import (
	"testing"

	"github.com/zkmatrix/plonkish/cs"
	"github.com/zkmatrix/plonkish/mock"
)

type Assert struct {
	t *testing.T
}

func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t}
}

// Accepted fails the test unless the instance verifies.
func (a *Assert) Accepted(asg *cs.Assignment) {
	a.t.Helper()
	report, err := mock.Verify(asg)
	if err != nil {
		a.t.Fatal(err)
	}
	if report.Result != mock.Accepted {
		a.t.Fatalf("should be accepted, got: %s", report)
	}
}

// Rejected fails the test unless the instance is rejected.
func (a *Assert) Rejected(asg *cs.Assignment) {
	a.t.Helper()
	report, err := mock.Verify(asg)
	if err != nil {
		a.t.Fatal(err)
	}
	if report.Result != mock.Rejected {
		a.t.Fatal("should be rejected")
	}
}
