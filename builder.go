// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
)

// ClosureOp adapts a time-invariant right-hand side into a NonLinearOp
// from the same two callback shapes dicksontsai-gosl/num/nlsolver.go
// takes as Ffcn/JfcnDn: fun.Vv writes f(x) in place, fun.Mv writes the
// dense Jacobian in place. Jac may be nil, in which case the column
// prober in stiffode/jac derives the Jacobian by finite differences.
type ClosureOp struct {
	n, nout int
	p       la.Vector
	F       fun.Vv
	Jac     fun.Mv
}

// NewClosureOp builds a ClosureOp for an n-state, nout-output system.
func NewClosureOp(n, nout int, f fun.Vv, jac fun.Mv) *ClosureOp {
	return &ClosureOp{n: n, nout: nout, F: f, Jac: jac}
}

func (c *ClosureOp) Nstates() int          { return c.n }
func (c *ClosureOp) Nout() int             { return c.nout }
func (c *ClosureOp) Nparams() int          { return len(c.p) }
func (c *ClosureOp) SetParams(p la.Vector) { c.p = p }

// CallInplace ignores t: ClosureOp wraps time-invariant systems, the
// same algebraic-solve shape nlsolver.go's Ffcn targets.
func (c *ClosureOp) CallInplace(x la.Vector, t float64, y la.Vector) {
	c.F(y, x)
}

func (c *ClosureOp) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	if c.Jac == nil {
		for i := range y {
			y[i] = 0
		}
		return
	}
	m := la.NewMatrix(c.n, c.n)
	c.Jac(m, x)
	for i := 0; i < c.n; i++ {
		sum := 0.0
		for j := 0; j < c.n; j++ {
			sum += m.Get(i, j) * v[j]
		}
		y[i] = sum
	}
}

// JacobianInplace satisfies JacobianProvider so the Newton solver's
// jacobianFn can assemble the iteration matrix directly from Jac
// instead of probing columns, when Jac is set.
func (c *ClosureOp) JacobianInplace(x la.Vector, t float64, m Matrix) {
	if c.Jac == nil {
		return
	}
	dense := la.NewMatrix(c.n, c.n)
	c.Jac(dense, x)
	col := make(la.Vector, c.n)
	for j := 0; j < c.n; j++ {
		for i := 0; i < c.n; i++ {
			col[i] = dense.Get(i, j)
		}
		m.SetColumn(j, col)
	}
}

// Builder assembles an Equations bundle from plain closures, the Go
// analogue of the source's doc-comment example that builds
// OdeSolverEquations from raw closures (ode_solver/equations.rs). It is
// not a DSL compiler — that remains out of scope per spec.md §1 — just
// the minimal constructor every closure-defined problem in this
// package's tests goes through.
type Builder struct {
	rtol float64
	atol la.Vector
	t0   float64
	h0   float64
	p    la.Vector
}

// NewBuilder starts a builder with gosl-style defaults (rtol/atol as in
// DefaultRtol/DefaultAtol, t0=0, h0=1e-4).
func NewBuilder() *Builder {
	return &Builder{rtol: DefaultRtol, t0: 0, h0: 1e-4}
}

func (b *Builder) Rtol(v float64) *Builder    { b.rtol = v; return b }
func (b *Builder) Atol(v la.Vector) *Builder  { b.atol = v; return b }
func (b *Builder) T0(v float64) *Builder      { b.t0 = v; return b }
func (b *Builder) H0(v float64) *Builder      { b.h0 = v; return b }
func (b *Builder) Params(p la.Vector) *Builder { b.p = p; return b }

// BuildOde constructs a Problem from a right-hand side, optional mass,
// optional root function and an initial-condition closure.
func (b *Builder) BuildOde(rhs NonLinearOp, mass LinearOp, root NonLinearOp, init InitFunc, massIsConstant bool) *Problem {
	eqn := NewEquations(rhs, mass, root, nil, init, b.p, massIsConstant)
	atol := b.atol
	if atol == nil {
		atol = DefaultAtol(rhs.Nstates())
	}
	return NewProblem(eqn, b.rtol, atol, b.t0, b.h0)
}

// BuildClosure is BuildOde specialized to the fun.Vv/fun.Mv callback
// pair, for callers who would rather hand over two functions than
// define a NonLinearOp.
func (b *Builder) BuildClosure(n int, f fun.Vv, jac fun.Mv, init InitFunc) *Problem {
	return b.BuildOde(NewClosureOp(n, 0, f, jac), nil, nil, init, true)
}
