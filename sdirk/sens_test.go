// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdirk

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/sens"
)

// paramDecayOp implements F(y) = -p[0]*y, a one-parameter family used to
// check forward sensitivity against the closed-form solution
// s(t) = dy/dp = -t*y0*exp(-p*t) = -t*y(t).
type paramDecayOp struct{ p la.Vector }

func (d *paramDecayOp) Nstates() int          { return 1 }
func (d *paramDecayOp) Nout() int             { return 0 }
func (d *paramDecayOp) Nparams() int          { return 1 }
func (d *paramDecayOp) SetParams(p la.Vector) { d.p = p }

func (d *paramDecayOp) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = -d.p[0] * x[0]
}

func (d *paramDecayOp) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	y[0] = -d.p[0] * v[0]
}

func (d *paramDecayOp) JacobianInplace(x la.Vector, t float64, m stiffode.Matrix) {
	m.SetColumn(0, la.Vector{-d.p[0]})
}

// TestSdirkForwardSensitivityMatchesClosedForm runs TR-BDF2 with a
// forward-sensitivity channel attached end-to-end through the stage
// loop, checking the accumulated sensitivity against dy/dp's closed
// form.
func TestSdirkForwardSensitivityMatchesClosedForm(tst *testing.T) {
	chk.PrintTitle("Sens01. forward sensitivity through TR-BDF2 stage loop")

	const rate = 0.5
	const y0 = 2.0
	const tEnd = 3.0

	rhs := &paramDecayOp{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{y0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, la.Vector{rate}, true)
	atol := stiffode.FromElement(1, 1e-10)
	problem := stiffode.NewProblem(eqn, 1e-10, atol, 0.0, 1e-3)

	intg := NewIntegrator(problem, TRBDF2)

	dfdp := func(y la.Vector, t float64, i int, dst la.Vector) { dst[0] = -y[0] }
	fwd := sens.NewForward(1, dfdp, stiffode.FromElement(1, 1e-10), 1e-10)
	intg.AttachAugmentation(fwd, []la.Vector{{0.0}})

	if err := intg.SetStopTime(tEnd); err != nil {
		tst.Fatalf("SetStopTime: %v", err)
	}
	for {
		reason, err := intg.Step()
		if err != nil {
			tst.Fatalf("step failed at t=%g: %v", intg.State().T, err)
		}
		if reason.Kind == stiffode.TstopReached {
			break
		}
	}

	y := intg.State().Y[0]
	s := intg.State().S[0][0]

	expectedY := y0 * math.Exp(-rate*tEnd)
	expectedS := -tEnd * expectedY

	chk.Float64(tst, "y(tEnd)", 1e-4, y, expectedY)
	chk.Float64(tst, "ds/dp(tEnd)", 1e-2, s, expectedS)
}
