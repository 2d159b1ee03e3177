// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import "github.com/cpmech/gosl/la"

// Op is the capability-probe contract shared by every constant, linear
// and nonlinear operator in this package: F, M, the root function, and
// their Jacobian actions all implement it.
type Op interface {
	Nstates() int
	Nout() int
	Nparams() int
	SetParams(p la.Vector)
}

// NonLinearOp is a (possibly nonlinear) map y = F(t, x). jac_mul_inplace
// must always be provided; jacobian_inplace is optional (see
// JacobianProvider) and, when absent, the core derives a full Jacobian
// by probing columns (stiffode/jac).
type NonLinearOp interface {
	Op
	CallInplace(x la.Vector, t float64, y la.Vector)
	JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector)
}

// JacobianProvider is implemented by a NonLinearOp that can write its
// Jacobian directly into an already-allocated matrix with a fixed
// pattern, avoiding column-by-column probing.
type JacobianProvider interface {
	JacobianInplace(x la.Vector, t float64, m Matrix)
}

// LinearOp is an operator whose action is linear in x, such as the mass
// matrix M: it additionally exposes the matrix itself and a direct gemv.
type LinearOp interface {
	Op
	MatrixInplace(t float64, m Matrix)
	Gemv(t float64, alpha float64, x la.Vector, beta float64, y la.Vector)
}

// ConstantOp is an operator with no x-dependence, such as an initial
// condition or a sensitivity forcing term y0(p, t); it may additionally
// expose a sensitivity action sens_mul_inplace, mirroring
// op/constant_closure_with_sens.rs in the source this was ported from.
type ConstantOp interface {
	Op
	CallInplace(t float64, y la.Vector)
	HasSens() bool
	SensMulInplace(t float64, v la.Vector, y la.Vector)
}

// RootOp is a NonLinearOp whose output vector's component sign changes
// define events; it is just a NonLinearOp by another name, kept distinct
// for readability at call sites.
type RootOp = NonLinearOp
