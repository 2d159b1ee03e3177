// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Problem bundles an Equations instance with tolerances, initial time
// and step size, and the flags that control which channels participate
// in error control, per spec.md §3.
type Problem struct {
	Eqn *Equations

	Rtol float64
	Atol la.Vector

	T0 float64
	H0 float64

	IntegrateOut bool
	OutRtol      float64
	OutAtol      la.Vector

	SensRtol float64
	SensAtol la.Vector
}

// DefaultRtol and DefaultAtol mirror diffsol's defaults (1e-6).
const DefaultRtol = 1e-6

func DefaultAtol(nstates int) la.Vector { return FromElement(nstates, 1e-6) }

// NewProblem validates and constructs a Problem. It panics on a
// malformed contract (length/positivity invariant violations are
// construction-time programmer errors, not host-recoverable failures —
// see SPEC_FULL.md §7).
func NewProblem(eqn *Equations, rtol float64, atol la.Vector, t0, h0 float64) *Problem {
	if len(atol) != eqn.Rhs.Nstates() {
		chk.Panic("problem: len(atol)=%d != rhs.Nstates()=%d", len(atol), eqn.Rhs.Nstates())
	}
	if rtol <= 0 {
		chk.Panic("problem: rtol must be strictly positive, got %g", rtol)
	}
	for i, a := range atol {
		if a <= 0 {
			chk.Panic("problem: atol[%d]=%g must be strictly positive", i, a)
		}
	}
	eqn.Acquire()
	return &Problem{
		Eqn:  eqn,
		Rtol: rtol,
		Atol: atol,
		T0:   t0,
		H0:   h0,
	}
}

// OutputInErrorControl reports whether the integrated-output channel
// participates in step-acceptance error control.
func (p *Problem) OutputInErrorControl() bool {
	return p.IntegrateOut && p.OutAtol != nil
}

// SetParams replaces the shared equations' parameters.
func (p *Problem) SetParams(v la.Vector) error {
	return p.Eqn.SetParams(v)
}
