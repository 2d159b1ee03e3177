// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sens

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// DgDy evaluates the cost gradient dg/dy at (y,t) into dst.
type DgDy func(y la.Vector, t float64, dst la.Vector)

// Adjoint implements stiffode.AugmentedEquations for backward adjoint
// integration: a single channel lambda(t). A caller drives it by running
// the owning integrator backward in time (negative H) over a sequence of
// checkpointed forward states, supplying each checkpoint's y as the
// Column call's y argument; Column itself is agnostic to direction and
// reuses the primary solve's already-factored iteration matrix exactly
// the way Forward.Column does.
type Adjoint struct {
	Dgdy  DgDy
	LAtol la.Vector
	LRtol float64
}

// NewAdjoint allocates an adjoint augmentation.
func NewAdjoint(dgdy DgDy, atol la.Vector, rtol float64) *Adjoint {
	return &Adjoint{Dgdy: dgdy, LAtol: atol, LRtol: rtol}
}

func (a *Adjoint) MaxIndex() int                  { return 1 }
func (a *Adjoint) IncludeInErrorControl() bool    { return true }
func (a *Adjoint) IncludeOutInErrorControl() bool { return false }
func (a *Adjoint) Atol() la.Vector                { return a.LAtol }
func (a *Adjoint) Rtol() float64                  { return a.LRtol }
func (a *Adjoint) OutAtol() la.Vector             { return nil }
func (a *Adjoint) OutRtol() float64               { return 0 }
func (a *Adjoint) Out() stiffode.NonLinearOp      { return nil }

// Column solves one step's adjoint correction, reusing the forward
// corrector's already-factored iteration matrix transposed — solve is
// expected to be bound to a newton.DenseSolver.SolveTranspose method
// value rather than its plain Solve, so no second factorization of the
// transposed iteration matrix is ever requested, per spec.md §4.9's
// "reuses the transposed factorization path" language:
//
//	Mᵀ·dλ/dt = −Jᵀ·λ − dg/dy
//
// discretized in the same Newton-correction shape as the primary y
// solve and the forward-sensitivity column above. jacVec here is
// expected to compute Jᵀ·v rather than J·v.
func (a *Adjoint) Column(idx int, eqn *stiffode.Equations, y la.Vector, solve stiffode.LinearSolve, jacVec func(v, out la.Vector), c, t float64, lambda0, psiLambda la.Vector) (la.Vector, error) {
	n := len(lambda0)
	jtl0 := stiffode.Zeros(n)
	jacVec(lambda0, jtl0)

	dgdy := stiffode.Zeros(n)
	a.Dgdy(y, t, dgdy)

	massTerm := stiffode.Zeros(n)
	if eqn.HasMass() {
		eqn.Mass.Gemv(t, 1.0/c, psiLambda, 0.0, massTerm)
	} else {
		for i := 0; i < n; i++ {
			massTerm[i] = psiLambda[i] / c
		}
	}

	rhs := stiffode.Zeros(n)
	for i := 0; i < n; i++ {
		rhs[i] = -jtl0[i] - dgdy[i] - massTerm[i]
	}

	dlambda := stiffode.Zeros(n)
	if err := solve(dlambda, rhs); err != nil {
		return nil, err
	}
	return dlambda, nil
}
