// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdirk

import (
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/newton"
)

// Integrator drives a Problem forward in time with a Butcher-tableau
// SDIRK scheme, implementing stiffode.Method, per spec.md §4.8.
type Integrator struct {
	problem *stiffode.Problem
	tableau Tableau
	state   *State

	callable *Callable
	dense    *newton.DenseSolver
	conv     *newton.Convergence
	policy   *newton.JacobianPolicy
	solver   *newton.Solver

	root *stiffode.RootFinder

	stopTime float64
	haveStop bool

	stats   stiffode.Stats
	history *stiffode.StepHistory

	// yStart/dyStart/tStart cache the state at the beginning of the most
	// recently accepted step, for the cubic Hermite dense-output fallback
	// (Interpolate needs both endpoints; s.Y/s.Dy/s.T are overwritten with
	// the new endpoint at the end of Step).
	yStart, dyStart la.Vector
	tStart          float64

	aug stiffode.AugmentedEquations

	// sStart/dsStart cache each sensitivity channel's value and rate at
	// the beginning of the most recently accepted step, mirroring
	// yStart/dyStart, for InterpolateSens's Hermite fallback.
	sStart, dsStart []la.Vector
}

// History returns the accepted-step diagnostics recorder, for plotting
// step-size behaviour over the run.
func (intg *Integrator) History() *stiffode.StepHistory { return intg.history }

// NewIntegrator constructs an SDIRK integrator for problem using the
// given tableau.
func NewIntegrator(problem *stiffode.Problem, tableau Tableau) *Integrator {
	eqn := problem.Eqn
	n := eqn.Rhs.Nstates()

	st := NewState(n, 0, tableau.S)
	st.Y = append(la.Vector{}, eqn.Init(eqn.P, problem.T0)...)
	st.T = problem.T0
	st.H = problem.H0
	dy0 := stiffode.Zeros(n)
	eqn.Rhs.CallInplace(st.Y, st.T, dy0)
	st.Dy = dy0

	callable := NewCallable(eqn)
	dense := newton.NewDenseSolver(n)
	conv := newton.NewConvergence(problem.Rtol, []float64(problem.Atol), 4)
	policy := newton.NewJacobianPolicy()

	intg := &Integrator{
		problem:  problem,
		tableau:  tableau,
		state:    st,
		callable: callable,
		dense:    dense,
		conv:     conv,
		policy:   policy,
		aug:      stiffode.NoAug{},
		history:  stiffode.NewStepHistory(),
	}

	jacobianFn := func(k la.Vector) (int, error) {
		return callable.AssembleJacobianDense(k, dense.Matrix())
	}
	intg.solver = newton.NewSolver(n, conv, policy, dense, callable.Residual, jacobianFn)

	if eqn.HasRoot() {
		intg.root = stiffode.NewRootFinder(eqn.Root.Nout())
		intg.root.Init(eqn.Root, st.Y, st.T)
	}
	intg.yStart = append(la.Vector{}, st.Y...)
	intg.dyStart = append(la.Vector{}, st.Dy...)
	intg.tStart = st.T
	return intg
}

func (intg *Integrator) Problem() *stiffode.Problem { return intg.problem }
func (intg *Integrator) Order() int                 { return intg.tableau.Order }
func (intg *Integrator) State() *stiffode.State      { return intg.state.State }

// AttachAugmentation wires a forward-sensitivity or adjoint augmentation
// into the stage loop, per spec.md §4.9, seeding each channel's value at
// s0 the way NewIntegrator seeds the primary y at eqn.Init.
func (intg *Integrator) AttachAugmentation(aug stiffode.AugmentedEquations, s0 []la.Vector) {
	np := aug.MaxIndex()
	n := len(intg.state.Y)

	intg.state.S = make([]la.Vector, np)
	intg.state.Ds = make([]la.Vector, np)
	intg.sStart = make([]la.Vector, np)
	intg.dsStart = make([]la.Vector, np)
	for i := 0; i < np; i++ {
		intg.state.S[i] = append(la.Vector{}, s0[i]...)
		intg.state.Ds[i] = stiffode.Zeros(n)
		intg.sStart[i] = append(la.Vector{}, s0[i]...)
		intg.dsStart[i] = stiffode.Zeros(n)
	}
	intg.aug = aug
}

func (intg *Integrator) SetState(s *stiffode.State) {
	intg.state.State = s
	for i := range intg.state.K {
		for j := range intg.state.K[i] {
			intg.state.K[i][j] = 0
		}
	}
}

func (intg *Integrator) SetStopTime(t float64) error {
	dir := 1.0
	if intg.state.H < 0 {
		dir = -1.0
	}
	if (t-intg.state.T)*dir <= 0 {
		return stiffode.ErrStopTimeBeforeCurrentTime
	}
	intg.stopTime = t
	intg.haveStop = true
	return nil
}

func (intg *Integrator) Checkpoint() *stiffode.State {
	intg.policy.Invalidate()
	return intg.state.Clone().State
}

// Step advances the integrator by one accepted SDIRK step, per
// spec.md §4.8: stage loop, embedded error estimate, accept/reject,
// FSAL carry-over.
func (intg *Integrator) Step() (stiffode.StopReason, error) {
	s := intg.state
	tableau := intg.tableau
	n := len(s.Y)

	for {
		h := s.H
		if intg.haveStop {
			dir := 1.0
			if h < 0 {
				dir = -1.0
			}
			remaining := (intg.stopTime - s.T) * dir
			if remaining <= 100*stiffode.Epsilon*(math.Abs(s.T)+math.Abs(h)) {
				h = intg.stopTime - s.T
			} else if math.Abs(h) > remaining {
				h = dir * remaining
			}
		}
		s.H = h

		c := h * tableau.Gamma
		failed := false

		np := intg.aug.MaxIndex()
		KS := make([][]la.Vector, np)
		for p := 0; p < np; p++ {
			KS[p] = make([]la.Vector, tableau.S)
		}
		zeroPsi := stiffode.Zeros(n)

		for i := 0; i < tableau.S; i++ {
			u := append(la.Vector{}, s.Y...)
			for j := 0; j < i; j++ {
				aij := tableau.A[i][j]
				if aij == 0 {
					continue
				}
				for r := 0; r < n; r++ {
					u[r] += h * aij * s.K[j][r]
				}
			}

			intg.callable.H = h
			intg.callable.Gamma = tableau.Gamma
			intg.callable.T = s.T + tableau.C[i]*h
			intg.callable.U = u

			guess := append(la.Vector{}, s.K[i]...)
			niter, err := intg.solver.Solve(guess, c)
			intg.stats.RecordNewtonIter(niter)
			if err != nil {
				intg.stats.NumberOfNonlinearSolverFails++
				failed = true
				break
			}
			s.K[i] = guess

			stageU := append(la.Vector{}, u...)
			for r := 0; r < n; r++ {
				stageU[r] += h * tableau.Gamma * guess[r]
			}
			for p := 0; p < np; p++ {
				dU := append(la.Vector{}, s.S[p]...)
				for j := 0; j < i; j++ {
					aij := tableau.A[i][j]
					if aij == 0 {
						continue
					}
					for r := 0; r < n; r++ {
						dU[r] += h * aij * KS[p][j][r]
					}
				}
				ksi, err := intg.aug.Column(p, intg.problem.Eqn, stageU, intg.dense.Solve, intg.callable.JacVec, c, intg.callable.T, dU, zeroPsi)
				if err != nil {
					failed = true
					break
				}
				KS[p][i] = ksi
			}
			if failed {
				intg.stats.NumberOfNonlinearSolverFails++
				break
			}
		}

		if failed {
			s.H *= 0.3
			intg.policy.Invalidate()
			continue
		}

		yNext := append(la.Vector{}, s.Y...)
		yHat := append(la.Vector{}, s.Y...)
		for i := 0; i < tableau.S; i++ {
			for r := 0; r < n; r++ {
				yNext[r] += h * tableau.B[i] * s.K[i][r]
				yHat[r] += h * tableau.BHat[i] * s.K[i][r]
			}
		}

		errNorm := stiffode.NormWeighted(diffVec(yNext, yHat), s.Y, intg.problem.Atol, intg.problem.Rtol)
		nErrChannels := 1

		sNext := make([]la.Vector, np)
		for p := 0; p < np; p++ {
			sNext[p] = append(la.Vector{}, s.S[p]...)
			sHat := append(la.Vector{}, s.S[p]...)
			for i := 0; i < tableau.S; i++ {
				for r := 0; r < n; r++ {
					sNext[p][r] += h * tableau.B[i] * KS[p][i][r]
					sHat[r] += h * tableau.BHat[i] * KS[p][i][r]
				}
			}
			if intg.aug.IncludeInErrorControl() {
				errNorm += stiffode.NormWeighted(diffVec(sNext[p], sHat), s.S[p], intg.aug.Atol(), intg.aug.Rtol())
				nErrChannels++
			}
		}
		errNorm /= float64(nErrChannels)

		if errNorm > 1.0 {
			intg.stats.NumberOfErrorTestFailures++
			factor := stepFactor(errNorm, tableau.Order)
			s.H *= factor
			intg.policy.Invalidate()
			continue
		}

		intg.yStart = s.Y
		intg.dyStart = s.Dy
		intg.tStart = s.T
		for p := 0; p < np; p++ {
			intg.sStart[p] = s.S[p]
			intg.dsStart[p] = s.Ds[p]
		}

		s.Y = yNext
		dy := stiffode.Zeros(n)
		intg.problem.Eqn.Rhs.CallInplace(s.Y, s.T+h, dy)
		s.Dy = dy
		s.T += h
		for p := 0; p < np; p++ {
			s.S[p] = sNext[p]
			dsp := stiffode.Zeros(n)
			for i := 0; i < tableau.S; i++ {
				for r := 0; r < n; r++ {
					dsp[r] += tableau.B[i] * KS[p][i][r]
				}
			}
			s.Ds[p] = dsp
		}

		intg.history.Record(s.T, h, tableau.Order, intg.solver.Conv.Iter())
		intg.stats.NumberOfSteps++
		intg.stats.NLinSol = intg.solver.NLinSol
		intg.stats.NDecomp = intg.solver.NDecomp
		intg.stats.NumberOfLinearSolverSetups = intg.solver.NDecomp
		intg.stats.NFeval = intg.solver.NFeval
		intg.stats.NJeval = intg.solver.NJeval

		if tableau.FSAL {
			s.K[0] = s.K[tableau.S-1]
		} else {
			for i := range s.K {
				for j := range s.K[i] {
					s.K[i][j] = 0
				}
			}
		}

		factor := stepFactor(errNorm, tableau.Order)
		if factor < 1.0 || factor > 1.0 {
			s.H *= factor
		}

		if intg.root != nil {
			interp := func(t float64) (la.Vector, error) { return intg.Interpolate(t) }
			tRoot, mask, found := intg.root.CheckRoot(interp, intg.problem.Eqn.Root, s.Y, s.T)
			if found {
				return stiffode.StopReason{Kind: stiffode.RootFound, Mask: mask, Time: tRoot}, nil
			}
		}

		if intg.haveStop && math.Abs(s.T-intg.stopTime) <= 100*stiffode.Epsilon*(math.Abs(s.T)+math.Abs(h)) {
			return stiffode.StopReason{Kind: stiffode.TstopReached, Time: s.T}, nil
		}
		return stiffode.StopReason{Kind: stiffode.InternalTimestep}, nil
	}
}

func stepFactor(errNorm float64, order int) float64 {
	const maxit = 4
	safety := 0.9 * (2*float64(maxit) + 1) / (2 * float64(maxit))
	f := safety * math.Pow(errNorm, -1.0/float64(order+1))
	if f < 0.5 {
		f = 0.5
	}
	if f > 2.1 {
		f = 2.1
	}
	return f
}

func diffVec(a, b la.Vector) la.Vector {
	d := stiffode.Zeros(len(a))
	for i := range a {
		d[i] = a[i] - b[i]
	}
	return d
}

// Interpolate evaluates the dense output at t within the current step,
// using the tableau's interpolation matrix when supplied, or falling
// back to cubic Hermite on (y_n, dy_n, y_{n+1}, dy_{n+1}) otherwise.
func (intg *Integrator) Interpolate(t float64) (la.Vector, error) {
	s := intg.state
	h := s.T - intg.tStart
	if h == 0 {
		h = s.H
	}
	if (t-s.T)*h > 1e3*stiffode.Epsilon*math.Abs(h) {
		return nil, stiffode.ErrInterpolationTimeAfterCurrentTime
	}
	if math.Abs(t-s.T) > math.Abs(h)+1e3*stiffode.Epsilon {
		return nil, stiffode.ErrInterpolationTimeOutsideCurrentStep
	}
	theta := (t - (s.T - h)) / h
	n := len(s.Y)

	if intg.tableau.Beta != nil {
		y := append(la.Vector{}, s.Y...)
		for i, coeffs := range intg.tableau.Beta {
			w := polyEval(coeffs, theta)
			for r := 0; r < n; r++ {
				y[r] += h * w * s.K[i][r]
			}
		}
		return y, nil
	}

	y0, y1 := intg.yStart, s.Y
	dy0, dy1 := intg.dyStart, s.Dy
	h00 := 2*theta*theta*theta - 3*theta*theta + 1
	h10 := theta*theta*theta - 2*theta*theta + theta
	h01 := -2*theta*theta*theta + 3*theta*theta
	h11 := theta*theta*theta - theta*theta
	y := stiffode.Zeros(n)
	for i := 0; i < n; i++ {
		y[i] = h00*y0[i] + h10*h*dy0[i] + h01*y1[i] + h11*h*dy1[i]
	}
	return y, nil
}

func polyEval(coeffs []float64, x float64) float64 {
	v := 0.0
	p := 1.0
	for _, c := range coeffs {
		v += c * p
		p *= x
	}
	return v
}

// InterpolateOut is unsupported until an output operator is wired to
// this integrator.
func (intg *Integrator) InterpolateOut(t float64) (la.Vector, error) { return nil, nil }

// InterpolateSens evaluates each attached sensitivity/adjoint channel's
// dense output at t via cubic Hermite on (s_n, ds_n, s_{n+1}, ds_{n+1}),
// the same fallback Interpolate uses for the primary solution when the
// tableau carries no interpolation coefficients.
func (intg *Integrator) InterpolateSens(t float64) ([]la.Vector, error) {
	s := intg.state
	np := len(s.S)
	if np == 0 {
		return nil, nil
	}
	h := s.T - intg.tStart
	if h == 0 {
		h = s.H
	}
	if math.Abs(t-s.T) > math.Abs(h)+1e3*stiffode.Epsilon {
		return nil, stiffode.ErrInterpolationTimeOutsideCurrentStep
	}
	theta := (t - (s.T - h)) / h
	n := len(s.Y)

	h00 := 2*theta*theta*theta - 3*theta*theta + 1
	h10 := theta*theta*theta - 2*theta*theta + theta
	h01 := -2*theta*theta*theta + 3*theta*theta
	h11 := theta*theta*theta - theta*theta

	out := make([]la.Vector, np)
	for p := 0; p < np; p++ {
		s0, s1 := intg.sStart[p], s.S[p]
		ds0, ds1 := intg.dsStart[p], s.Ds[p]
		y := stiffode.Zeros(n)
		for i := 0; i < n; i++ {
			y[i] = h00*s0[i] + h10*h*ds0[i] + h01*s1[i] + h11*h*ds1[i]
		}
		out[p] = y
	}
	return out, nil
}

// Stats exposes the aggregate counters collected so far.
func (intg *Integrator) Stats() stiffode.Stats { return intg.stats }
