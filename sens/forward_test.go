// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sens

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/newton"
)

type dummyRhs struct{ n int }

func (d *dummyRhs) Nstates() int          { return d.n }
func (d *dummyRhs) Nout() int             { return 0 }
func (d *dummyRhs) Nparams() int          { return 0 }
func (d *dummyRhs) SetParams(p la.Vector) {}
func (d *dummyRhs) CallInplace(x la.Vector, t float64, y la.Vector) {
	for i := range y {
		y[i] = 0
	}
}
func (d *dummyRhs) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	for i := range y {
		y[i] = 0
	}
}

// TestForwardColumnMatchesClosedForm checks Column against the scalar
// closed-form solve of A*ds = J*s0 + dfdp - psi/c for A = 1/c - a, the
// one-state linearization ds/dt = a*s + b.
func TestForwardColumnMatchesClosedForm(tst *testing.T) {
	chk.PrintTitle("Forward01. scalar sensitivity column")

	const a = -0.5
	const b = 2.0
	const c = 0.25

	eqn := stiffode.NewEquations(&dummyRhs{n: 1}, nil, nil, nil, nil, nil, true)

	dense := newton.NewDenseSolver(1)
	dense.Matrix().M.Set(0, 0, 1.0/c-a)
	if err := dense.Factor(); err != nil {
		tst.Fatalf("factor: %v", err)
	}

	jacMul := func(v, out la.Vector) { out[0] = a * v[0] }

	s0 := la.Vector{0.3}
	psiS := la.Vector{0.05}

	fwd := NewForward(1, func(y la.Vector, t float64, i int, dst la.Vector) { dst[0] = b }, la.Vector{1e-6}, 1e-6)

	ds, err := fwd.Column(0, eqn, la.Vector{0}, dense.Solve, jacMul, c, 0.0, s0, psiS)
	if err != nil {
		tst.Fatalf("Column: %v", err)
	}

	rhs := a*s0[0] + b - psiS[0]/c
	expected := rhs / (1.0/c - a)
	chk.Float64(tst, "ds", 1e-12, ds[0], expected)
}
