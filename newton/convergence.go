// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package newton implements the nonlinear solver shared by every
// implicit integrator in this module: Newton iteration with a
// Dahlquist convergence-rate estimate, a Jacobian-reuse policy, and
// dense/sparse linear-solve backends. Grounded on
// nonlinear_solver/convergence.rs and dicksontsai-gosl/num/nlsolver.go.
package newton

import (
	"math"

	"github.com/cpmech/gosl/utl"
)

// Status is the outcome of one check_new_iteration call.
type Status int

const (
	Continue Status = iota
	Converged
	Diverged
	MaximumIterations
	StoppedByCallback
)

// Convergence tracks the Newton rate estimate across iterations of a
// single nonlinear solve, the Go analogue of convergence.rs's
// Convergence struct.
type Convergence struct {
	rtol    float64
	atol    []float64
	tol     float64
	maxIter int

	scale []float64

	iter        int
	oldNormOfUpdate float64
}

// NewConvergence clamps the tolerance the way convergence.rs does:
// tol = clamp(0.5*sqrt(rtol), lo=10*EPS/rtol, hi=0.03).
func NewConvergence(rtol float64, atol []float64, maxIter int) *Convergence {
	const eps = 2.220446049250313e-16
	tol := utl.Max(10.0*eps/rtol, utl.Min(0.03, 0.5*math.Sqrt(rtol)))
	return &Convergence{
		rtol:    rtol,
		atol:    atol,
		tol:     tol,
		maxIter: maxIter,
		scale:   make([]float64, len(atol)),
	}
}

// SetScale recomputes the weighting vector scale[i] = atol[i] + rtol*|y[i]|
// ahead of a new nonlinear solve, the same role la.VecScaleAbs plays in
// nlsolver.go's Solve.
func (c *Convergence) SetScale(y []float64) {
	for i := range c.scale {
		c.scale[i] = c.atol[i] + c.rtol*math.Abs(y[i])
	}
}

// Reset clears the iteration counter and rate history for a new solve.
func (c *Convergence) Reset() {
	c.iter = 0
	c.oldNormOfUpdate = 0
}

// weightedNorm computes the RMS norm of dy weighted by scale, the same
// quantity nlsolver.go calls Ldx.
func (c *Convergence) weightedNorm(dy []float64) float64 {
	sum := 0.0
	for i, d := range dy {
		v := d / c.scale[i]
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(dy)))
}

// CheckNewIteration folds in one more Newton update dy and returns the
// convergence status, following convergence.rs's check_new_iteration:
// converged once eta is at the machine floor, or (after at least two
// iterations) once the Dahlquist estimate rate/(1-rate)*eta drops below
// tol; diverged once the rate reaches 1 or the residual predicted at
// the iteration budget's end still exceeds tol.
func (c *Convergence) CheckNewIteration(dy []float64) Status {
	const eps = 2.220446049250313e-16
	c.iter++
	eta := c.weightedNorm(dy)

	if eta <= eps {
		c.oldNormOfUpdate = eta
		return Converged
	}

	if c.iter >= 2 {
		rate := eta / c.oldNormOfUpdate
		c.oldNormOfUpdate = eta

		if rate >= 1.0 {
			return Diverged
		}
		predicted := math.Pow(rate, float64(c.maxIter-c.iter)) / (1.0 - rate) * eta
		if predicted > c.tol {
			return Diverged
		}
		estimate := rate / (1.0 - rate) * eta
		if estimate < c.tol {
			return Converged
		}
	} else {
		c.oldNormOfUpdate = eta
	}

	if c.iter >= c.maxIter {
		return MaximumIterations
	}
	return Continue
}

// Iter reports the number of Newton iterations performed so far in the
// current solve.
func (c *Convergence) Iter() int { return c.iter }

// Tol reports the clamped convergence tolerance in use.
func (c *Convergence) Tol() float64 { return c.tol }
