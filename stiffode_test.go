// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode_test

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/bdf"
)

// robertson implements the classic three-species stiff chemistry
// benchmark from spec.md §8's "mass conservation" scenario.
type robertson struct{ p la.Vector }

func (r *robertson) Nstates() int          { return 3 }
func (r *robertson) Nout() int             { return 0 }
func (r *robertson) Nparams() int          { return 0 }
func (r *robertson) SetParams(p la.Vector) { r.p = p }

func (r *robertson) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = -0.04*x[0] + 1.0e4*x[1]*x[2]
	y[2] = 3.0e7 * x[1] * x[1]
	y[1] = -y[0] - y[2]
}

func (r *robertson) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	m := stiffode.NewDenseMat(3, 3)
	r.JacobianInplace(x, t, m)
	m.Gemv(1.0, v, 0.0, y)
}

func (r *robertson) JacobianInplace(x la.Vector, t float64, m stiffode.Matrix) {
	m.SetColumn(0, la.Vector{-0.04, 0.04, 0})
	m.SetColumn(1, la.Vector{1.0e4 * x[2], -1.0e4*x[2] - 6.0e7*x[1], 6.0e7 * x[1]})
	m.SetColumn(2, la.Vector{1.0e4 * x[1], -1.0e4 * x[1], 0})
}

func TestRobertsonMassConservation(tst *testing.T) {
	chk.PrintTitle("Scenario01. Robertson stiff chemistry")

	rhs := &robertson{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0, 0.0, 0.0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, nil, true)
	atol := la.Vector{1e-8, 1e-14, 1e-6}
	problem := stiffode.NewProblem(eqn, 1e-4, atol, 0.0, 1e-6)

	intg := bdf.NewIntegrator(problem)
	if err := intg.SetStopTime(100.0); err != nil {
		tst.Fatalf("SetStopTime: %v", err)
	}

	for {
		reason, err := intg.Step()
		if err != nil {
			tst.Fatalf("step failed at t=%g: %v", intg.State().T, err)
		}
		y := intg.State().Y
		total := y[0] + y[1] + y[2]
		if math.Abs(total-1.0) > 1e-6 {
			tst.Fatalf("mass not conserved at t=%g: sum=%g", intg.State().T, total)
		}
		if reason.Kind == stiffode.TstopReached {
			break
		}
	}
}

// algebraicPendulum is a 3-state DAE with a singular mass matrix,
// M = diag(1,1,0), and an algebraic constraint y3 = y1+y2, per
// spec.md §8's "exponential decay with algebraic constraint" scenario.
type algebraicPendulum struct{ p la.Vector }

func (a *algebraicPendulum) Nstates() int          { return 3 }
func (a *algebraicPendulum) Nout() int             { return 0 }
func (a *algebraicPendulum) Nparams() int          { return 0 }
func (a *algebraicPendulum) SetParams(p la.Vector) { a.p = p }

func (a *algebraicPendulum) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = -x[0]
	y[1] = x[0] - x[1]
	y[2] = x[0] + x[1] - x[2]
}

func (a *algebraicPendulum) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	y[0] = -v[0]
	y[1] = v[0] - v[1]
	y[2] = v[0] + v[1] - v[2]
}

func (a *algebraicPendulum) JacobianInplace(x la.Vector, t float64, m stiffode.Matrix) {
	m.SetColumn(0, la.Vector{-1, 1, 1})
	m.SetColumn(1, la.Vector{0, -1, 1})
	m.SetColumn(2, la.Vector{0, 0, -1})
}

type diagMass struct {
	diag la.Vector
	p    la.Vector
}

func (m *diagMass) Nstates() int          { return len(m.diag) }
func (m *diagMass) Nout() int             { return 0 }
func (m *diagMass) Nparams() int          { return 0 }
func (m *diagMass) SetParams(p la.Vector) { m.p = p }
func (m *diagMass) MatrixInplace(t float64, dst stiffode.Matrix) {
	for i, d := range m.diag {
		col := stiffode.Zeros(len(m.diag))
		col[i] = d
		dst.SetColumn(i, col)
	}
}
func (m *diagMass) Gemv(t float64, alpha float64, x la.Vector, beta float64, y la.Vector) {
	for i, d := range m.diag {
		y[i] = alpha*d*x[i] + beta*y[i]
	}
}

func TestAlgebraicConstraintSingularMass(tst *testing.T) {
	chk.PrintTitle("Scenario02. singular mass algebraic constraint")

	rhs := &algebraicPendulum{}
	mass := &diagMass{diag: la.Vector{1, 1, 0}}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0, 0.0, 1.0} }
	eqn := stiffode.NewEquations(rhs, mass, nil, nil, init, nil, true)
	atol := stiffode.FromElement(3, 1e-8)
	problem := stiffode.NewProblem(eqn, 1e-6, atol, 0.0, 1e-3)

	intg := bdf.NewIntegrator(problem)
	if err := intg.SetStopTime(5.0); err != nil {
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
	chk.Float64(tst, "constraint y3-y1-y2", 1e-6, y[2]-y[0]-y[1], 0.0)
}

// decayWithEvent fires a root when y[0] crosses 0.6, per spec.md §8's
// root-finding scenario.
type decayWithEvent struct{ p la.Vector }

func (d *decayWithEvent) Nstates() int          { return 1 }
func (d *decayWithEvent) Nout() int             { return 0 }
func (d *decayWithEvent) Nparams() int          { return 0 }
func (d *decayWithEvent) SetParams(p la.Vector) { d.p = p }
func (d *decayWithEvent) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = -0.5 * x[0]
}
func (d *decayWithEvent) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	y[0] = -0.5 * v[0]
}

type crossing struct{ p la.Vector }

func (c *crossing) Nstates() int          { return 1 }
func (c *crossing) Nout() int             { return 1 }
func (c *crossing) Nparams() int          { return 0 }
func (c *crossing) SetParams(p la.Vector) { c.p = p }
func (c *crossing) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = x[0] - 0.6
}
func (c *crossing) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	y[0] = v[0]
}

func TestRootFindingDecayEvent(tst *testing.T) {
	chk.PrintTitle("Scenario03. root at y[0]=0.6")

	rhs := &decayWithEvent{}
	root := &crossing{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0} }
	eqn := stiffode.NewEquations(rhs, nil, root, nil, init, nil, true)
	atol := stiffode.FromElement(1, 1e-8)
	problem := stiffode.NewProblem(eqn, 1e-6, atol, 0.0, 1e-3)

	intg := bdf.NewIntegrator(problem)
	if err := intg.SetStopTime(20.0); err != nil {
		tst.Fatalf("SetStopTime: %v", err)
	}

	found := false
	for {
		reason, err := intg.Step()
		if err != nil {
			tst.Fatalf("step failed at t=%g: %v", intg.State().T, err)
		}
		if reason.Kind == stiffode.RootFound {
			found = true
			expectedT := math.Log(1.0/0.6) / 0.5
			chk.Float64(tst, "root time", 1e-2, reason.Time, expectedT)
			break
		}
		if reason.Kind == stiffode.TstopReached {
			break
		}
	}
	if !found {
		tst.Fatalf("expected a root to be found before t=20")
	}
}

// TestSetStateIdempotence checks that round-tripping a checkpoint
// through SetState restores the checkpoint's time and solution, per
// spec.md §3's state lifecycle note.
func TestSetStateIdempotence(tst *testing.T) {
	chk.PrintTitle("Invariant01. SetState/Checkpoint round trip")

	rhs := &decayWithEvent{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, nil, true)
	atol := stiffode.FromElement(1, 1e-8)
	problem := stiffode.NewProblem(eqn, 1e-6, atol, 0.0, 1e-3)

	intg := bdf.NewIntegrator(problem)
	for i := 0; i < 5; i++ {
		if _, err := intg.Step(); err != nil {
			tst.Fatalf("step failed: %v", err)
		}
	}

	cp := intg.Checkpoint()
	tBefore, yBefore := cp.T, append(la.Vector{}, cp.Y...)

	intg.SetState(cp)
	state := intg.State()
	chk.Float64(tst, "T after SetState", 1e-12, state.T, tBefore)
	chk.Array(tst, "Y after SetState", 1e-12, []float64(state.Y), []float64(yBefore))
}

// TestInterpolateRoundTrip checks that interpolating at the freshly
// accepted step's own endpoint reproduces the accepted state to within
// 10*rtol, per spec.md §8's dense-output invariant.
func TestInterpolateRoundTrip(tst *testing.T) {
	chk.PrintTitle("Invariant02. interpolate at step endpoint")

	rhs := &decayWithEvent{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, nil, true)
	rtol := 1e-6
	atol := stiffode.FromElement(1, 1e-8)
	problem := stiffode.NewProblem(eqn, rtol, atol, 0.0, 1e-3)

	intg := bdf.NewIntegrator(problem)
	for i := 0; i < 10; i++ {
		if _, err := intg.Step(); err != nil {
			tst.Fatalf("step failed: %v", err)
		}
	}

	y, err := intg.Interpolate(intg.State().T)
	if err != nil {
		tst.Fatalf("Interpolate: %v", err)
	}
	chk.Float64(tst, "interp matches endpoint", 10*rtol, y[0], intg.State().Y[0])
}
