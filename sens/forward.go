// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sens implements the augmentation channels of spec.md §4.9:
// forward sensitivity and adjoint integration, both expressed as the
// same stiffode.AugmentedEquations contract the core step loop already
// threads through, and both reusing the primary Newton solve's
// already-factored iteration matrix rather than asking for a
// factorization of their own.
package sens

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// DfDp evaluates the i-th parameter-Jacobian column dF/dp_i at (y,t)
// into dst.
type DfDp func(y la.Vector, t float64, i int, dst la.Vector)

// Forward implements stiffode.AugmentedEquations for forward-sensitivity
// analysis: one extra channel s_i = dy/dp_i per parameter, carried
// alongside the primary solve and folded into its step acceptance test.
type Forward struct {
	Np    int
	Dfdp  DfDp
	SAtol la.Vector
	SRtol float64
}

// NewForward allocates a forward-sensitivity augmentation over np
// parameters.
func NewForward(np int, dfdp DfDp, atol la.Vector, rtol float64) *Forward {
	return &Forward{Np: np, Dfdp: dfdp, SAtol: atol, SRtol: rtol}
}

func (f *Forward) MaxIndex() int                  { return f.Np }
func (f *Forward) IncludeInErrorControl() bool    { return true }
func (f *Forward) IncludeOutInErrorControl() bool { return false }
func (f *Forward) Atol() la.Vector                { return f.SAtol }
func (f *Forward) Rtol() float64                  { return f.SRtol }
func (f *Forward) OutAtol() la.Vector             { return nil }
func (f *Forward) OutRtol() float64               { return 0 }
func (f *Forward) Out() stiffode.NonLinearOp      { return nil }

// Column solves parameter idx's sensitivity correction for the current
// step, reusing the primary corrector's already-factored iteration
// matrix A = M/c - J_y, per spec.md §4.9:
//
//	M·ds_i/dt = J_y·s_i + J_{p_i}
//
// discretized in the same Newton-correction form the BDF/SDIRK callable
// uses for y (ds the correction relative to s0, psi the same predictor
// term shape scaled by c):
//
//	G(ds) = (M/c)*(ds+psi) − J_y·(s0+ds) − J_p = 0
//	  ⇒  A·ds = J_y·s0 + J_p − (M/c)·psi
//
// Because G is linear in ds, this is a single linear solve against the
// matrix the primary Newton solve already factored — no new
// factorization, matching the "one additional right-hand side per
// parameter" language of spec.md §4.9.
func (f *Forward) Column(idx int, eqn *stiffode.Equations, y la.Vector, solve stiffode.LinearSolve, jacVec func(v, out la.Vector), c, t float64, s0, psi la.Vector) (la.Vector, error) {
	n := len(s0)
	dfdp := stiffode.Zeros(n)
	f.Dfdp(y, t, idx, dfdp)

	js0 := stiffode.Zeros(n)
	jacVec(s0, js0)

	massTerm := stiffode.Zeros(n)
	if eqn.HasMass() {
		eqn.Mass.Gemv(t, 1.0/c, psi, 0.0, massTerm)
	} else {
		for i := 0; i < n; i++ {
			massTerm[i] = psi[i] / c
		}
	}

	rhs := stiffode.Zeros(n)
	for i := 0; i < n; i++ {
		rhs[i] = js0[i] + dfdp[i] - massTerm[i]
	}

	ds := stiffode.Zeros(n)
	if err := solve(ds, rhs); err != nil {
		return nil, err
	}
	return ds, nil
}
