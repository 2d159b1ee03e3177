// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// InitFunc computes the initial condition y(t0; p).
type InitFunc func(p la.Vector, t float64) la.Vector

// Equations bundles the right-hand side, optional mass matrix, optional
// root function, optional output map and initial-condition function
// that together define an ODE/DAE. It is shared (many readers) by the
// solver state and by any augmented (sensitivity/adjoint) copies;
// mutating its parameters requires exclusive access (see SetParams).
type Equations struct {
	Rhs            NonLinearOp
	Mass           LinearOp // nil => identity mass
	Root           NonLinearOp
	Out            NonLinearOp // nil => no integrated output
	Init           InitFunc
	P              la.Vector
	MassIsConstant bool

	OutAtol la.Vector
	OutRtol float64
	hasOut  bool

	// owners tracks how many solver states currently hold a reference
	// to this bundle; SetParams refuses to mutate while owners > 1,
	// standing in for Rust's Rc::get_mut uniqueness check (see
	// DESIGN.md's "shared equations" entry).
	owners int
}

// NewEquations constructs an equations bundle. mass, root and out may be
// nil.
func NewEquations(rhs NonLinearOp, mass LinearOp, root NonLinearOp, out NonLinearOp, init InitFunc, p la.Vector, massIsConstant bool) *Equations {
	if rhs == nil {
		chk.Panic("equations: rhs operator must not be nil")
	}
	return &Equations{
		Rhs:            rhs,
		Mass:           mass,
		Root:           root,
		Out:            out,
		Init:           init,
		P:              p,
		MassIsConstant: massIsConstant,
		hasOut:         out != nil,
	}
}

// HasMass reports whether a mass matrix was supplied.
func (e *Equations) HasMass() bool { return e.Mass != nil }

// HasRoot reports whether a root (event) function was supplied.
func (e *Equations) HasRoot() bool { return e.Root != nil }

// HasOut reports whether an integrated-output map was supplied.
func (e *Equations) HasOut() bool { return e.hasOut }

// Acquire increments the owner count; called when a new State clones a
// reference to this bundle.
func (e *Equations) Acquire() { e.owners++ }

// Release decrements the owner count.
func (e *Equations) Release() {
	if e.owners > 0 {
		e.owners--
	}
}

// SetParams installs new parameters, failing if more than one owner
// currently holds this bundle (a torn read would otherwise be possible
// mid-step).
func (e *Equations) SetParams(p la.Vector) error {
	if e.owners > 1 {
		return ErrFailedToGetMutableReference
	}
	e.P = p
	e.Rhs.SetParams(p)
	if e.Mass != nil {
		e.Mass.SetParams(p)
	}
	if e.Root != nil {
		e.Root.SetParams(p)
	}
	if e.Out != nil {
		e.Out.SetParams(p)
	}
	return nil
}

// LinearSolve solves a previously factored linear system matrix*x=rhs in
// place. newton.LinearSolver.Solve and newton.DenseSolver.SolveTranspose
// both already have this shape; it is declared here, instead of stiffode
// importing newton, so AugmentedEquations.Column can reuse the primary
// Newton solve's already-factored iteration matrix without a package
// cycle (newton imports stiffode).
type LinearSolve func(x, rhs la.Vector) error

// AugmentedEquations is the contract shared by "no augmentation",
// forward-sensitivity and adjoint augmentations: three implementations
// of the same shape (spec.md §4.9 / §9 "Augmentation genericity"). Every
// non-trivial implementation's Column method is called once per
// augmented channel, once per accepted Newton solve, by the owning
// integrator (bdf.Integrator, sdirk.Integrator), reusing whatever
// iteration matrix the primary solve just factored.
type AugmentedEquations interface {
	// MaxIndex is the number of augmented channels (np for sensitivity,
	// 1 for adjoint, 0 for none).
	MaxIndex() int
	IncludeInErrorControl() bool
	IncludeOutInErrorControl() bool
	Atol() la.Vector
	Rtol() float64
	OutAtol() la.Vector
	OutRtol() float64
	Out() NonLinearOp

	// Column computes the Newton correction for augmented channel idx
	// this step, reusing the primary corrector's already-factored
	// iteration matrix via solve and its already-assembled Jacobian via
	// jacVec, per spec.md §4.9. y is the primary state's tentative new
	// value at t; s0/psi play the same role for this channel that the
	// primary solve's y0/psi play for y (the zero-th-order prediction and
	// the multistep/stage predictor term, scaled consistently with c).
	Column(idx int, eqn *Equations, y la.Vector, solve LinearSolve, jacVec func(v, out la.Vector), c, t float64, s0, psi la.Vector) (la.Vector, error)
}

// NoAug is the default "no augmentation" implementation.
type NoAug struct{}

func (NoAug) MaxIndex() int                  { return 0 }
func (NoAug) IncludeInErrorControl() bool    { return false }
func (NoAug) IncludeOutInErrorControl() bool { return false }
func (NoAug) Atol() la.Vector                { return nil }
func (NoAug) Rtol() float64                  { return 0 }
func (NoAug) OutAtol() la.Vector             { return nil }
func (NoAug) OutRtol() float64               { return 0 }
func (NoAug) Out() NonLinearOp               { return nil }

// Column is never called since MaxIndex reports zero channels.
func (NoAug) Column(idx int, eqn *Equations, y la.Vector, solve LinearSolve, jacVec func(v, out la.Vector), c, t float64, s0, psi la.Vector) (la.Vector, error) {
	return nil, nil
}
