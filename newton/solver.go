// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"fmt"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// Residual evaluates G(d) into out, the nonlinear system the integrator
// wants driven to zero (BDF's y - predictor - h*beta*f(y), SDIRK's
// stage residual).
type Residual func(d la.Vector, out la.Vector)

// AssembleJacobian forms the iteration matrix for the current d into
// whatever backing store the caller's LinearSolver wraps (Matrix() on
// DenseSolver, Triplet() on SparseSolver) and returns the number of rhs
// evaluations it consumed probing for a finite-difference Jacobian (0
// for an analytic one).
type AssembleJacobian func(d la.Vector) (nFevalUsed int, err error)

// Solver is the Newton driver shared by bdf and sdirk: it iterates
// d -= (M - c*J)^-1 * G(d) until Convergence reports Converged,
// Diverged or MaximumIterations, following the loop shape of
// dicksontsai-gosl/num/nlsolver.go's Solve but delegating the
// convergence test to the Dahlquist-rate Convergence type instead of
// nlsolver.go's fixed Ldx/fnewt check.
type Solver struct {
	Conv   *Convergence
	Policy *JacobianPolicy
	Linear LinearSolver

	G        Residual
	Jacobian AssembleJacobian

	n   int
	g   la.Vector
	dy  la.Vector

	NFeval int
	NJeval int
	NDecomp int
	NLinSol int
}

// NewSolver allocates scratch space for an n-dimensional nonlinear
// system.
func NewSolver(n int, conv *Convergence, policy *JacobianPolicy, linear LinearSolver, g Residual, jacobian AssembleJacobian) *Solver {
	return &Solver{
		Conv:     conv,
		Policy:   policy,
		Linear:   linear,
		G:        g,
		Jacobian: jacobian,
		n:        n,
		g:        la.NewVector(n),
		dy:       la.NewVector(n),
	}
}

// Solve drives d toward a root of G starting from the supplied initial
// guess (updated in place), deciding Jacobian refresh/refactor via
// Policy at phase entry and again after each convergence failure, per
// spec.md §4.3/§4.5. It returns the iteration count and a non-nil error
// (ErrNewtonDidNotConverge-flavoured, left to the caller to wrap) when
// the solve fails to converge within Conv's iteration budget.
func (s *Solver) Solve(d la.Vector, c float64) (int, error) {
	prediction := append(la.Vector{}, d...)

	s.Conv.Reset()

	phase := StepSuccess
	firstFailure := true

	if stiffode.Verbose {
		io.Pf("\n%4s%23s\n", "it", "Ldx")
	}

	for {
		dec := s.Policy.Decide(c, phase)
		if dec.RefreshJacobian || dec.Refactor {
			if dec.RefreshJacobian {
				nf, err := s.Jacobian(d)
				if err != nil {
					return s.Conv.Iter(), err
				}
				s.NFeval += nf
				s.NJeval++
			}
			if err := s.Linear.Factor(); err != nil {
				return s.Conv.Iter(), err
			}
			s.NDecomp++
			s.Policy.Applied(c, dec)
		}

		s.G(d, s.g)
		s.NFeval++

		if err := s.Linear.Solve(s.dy, s.g); err != nil {
			return s.Conv.Iter(), err
		}
		s.NLinSol++

		for i := 0; i < s.n; i++ {
			d[i] -= s.dy[i]
		}

		// Recompute the weighting vector from the live iterate d before
		// every check, per convergence.rs::check_new_iteration(dy, y),
		// which receives the current y each call rather than freezing the
		// scale at the initial (zero) prediction.
		s.Conv.SetScale(d)
		status := s.Conv.CheckNewIteration(s.dy)
		if stiffode.Verbose {
			io.Pf("%4d%23.15e\n", s.Conv.Iter(), stiffode.NormWeighted(s.dy, d, la.Vector{1}, 0))
		}
		switch status {
		case Converged:
			if stiffode.Verbose {
				io.Pfgreen(". . . converged. nit=%d, nFeval=%d, nJeval=%d\n", s.Conv.Iter(), s.NFeval, s.NJeval)
			}
			return s.Conv.Iter(), nil
		case Diverged, MaximumIterations:
			if firstFailure {
				firstFailure = false
				phase = FirstConvergenceFail
				copy(d, prediction)
				s.Conv.Reset()
				s.Conv.SetScale(d)
				continue
			}
			phase = SecondConvergenceFail
			if stiffode.Verbose {
				io.Pfred(". . . did not converge. status=%d, nit=%d\n", status, s.Conv.Iter())
			}
			return s.Conv.Iter(), fmt.Errorf("%w: status=%d after %d iterations", stiffode.ErrNewtonDidNotConverge, status, s.Conv.Iter())
		default:
			phase = StepSuccess
		}
	}
}
