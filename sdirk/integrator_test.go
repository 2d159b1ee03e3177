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
)

// decayOp implements stiffode.NonLinearOp and stiffode.JacobianProvider
// for F(y) = -rate*y, the exponential-decay scenario from spec.md §8.
type decayOp struct {
	n    int
	rate float64
	p    la.Vector
}

func (d *decayOp) Nstates() int          { return d.n }
func (d *decayOp) Nout() int             { return 0 }
func (d *decayOp) Nparams() int          { return 0 }
func (d *decayOp) SetParams(p la.Vector) { d.p = p }

func (d *decayOp) CallInplace(x la.Vector, t float64, y la.Vector) {
	for i := 0; i < d.n; i++ {
		y[i] = -d.rate * x[i]
	}
}

func (d *decayOp) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	for i := 0; i < d.n; i++ {
		y[i] = -d.rate * v[i]
	}
}

func (d *decayOp) JacobianInplace(x la.Vector, t float64, m stiffode.Matrix) {
	for i := 0; i < d.n; i++ {
		col := stiffode.Zeros(d.n)
		col[i] = -d.rate
		m.SetColumn(i, col)
	}
}

func TestSdirkExponentialDecay(tst *testing.T) {
	chk.PrintTitle("Integrator01. TR-BDF2 exponential decay")

	rhs := &decayOp{n: 2, rate: 0.1}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0, 1.0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, nil, true)
	atol := stiffode.FromElement(2, 1e-8)
	problem := stiffode.NewProblem(eqn, 1e-6, atol, 0.0, 1e-2)

	intg := NewIntegrator(problem, TRBDF2)
	if err := intg.SetStopTime(10.0); err != nil {
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

	y := intg.State().Y
	expected := math.Exp(-1.0)
	chk.Float64(tst, "y[0]", 1e-3, y[0], expected)
	chk.Float64(tst, "y[1]", 1e-3, y[1], expected)
}
