// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bdf

import (
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/newton"
)

// Integrator drives a Problem forward in time with the BDF/NDF scheme,
// implementing stiffode.Method. It owns its Newton solver, linear
// solver, root finder and statistics, per spec.md §4.7.
type Integrator struct {
	problem *stiffode.Problem
	state   *State

	callable *Callable
	dense    *newton.DenseSolver
	conv     *newton.Convergence
	policy   *newton.JacobianPolicy
	solver   *newton.Solver

	root *stiffode.RootFinder

	stopTime float64
	haveStop bool

	aug stiffode.AugmentedEquations

	stats   stiffode.Stats
	history *stiffode.StepHistory
}

// History returns the accepted-step diagnostics recorder, for plotting
// step-size and order behaviour over the run.
func (intg *Integrator) History() *stiffode.StepHistory { return intg.history }

// NewIntegrator constructs a BDF integrator for problem starting from a
// freshly initialized first-order state, computing dy0 = F(t0,y0;p)/M
// analogue via a direct rhs evaluation (mass-consistent initialization
// beyond the identity-mass case is out of scope here, per spec.md §3's
// note that DAE consistency is a one-shot solve left to the caller).
func NewIntegrator(problem *stiffode.Problem) *Integrator {
	eqn := problem.Eqn
	n := eqn.Rhs.Nstates()
	nout := 0
	if eqn.HasOut() {
		nout = eqn.Out.Nout()
	}

	st := NewState(n, nout, 0)
	st.Y = append(la.Vector{}, problem.Eqn.Init(eqn.P, problem.T0)...)
	st.T = problem.T0
	st.H = problem.H0

	dy0 := stiffode.Zeros(n)
	eqn.Rhs.CallInplace(st.Y, st.T, dy0)
	st.Dy = dy0
	st.InitializeToFirstOrder(dy0)

	callable := NewCallable(eqn)
	dense := newton.NewDenseSolver(n)
	conv := newton.NewConvergence(problem.Rtol, []float64(problem.Atol), NewtonMaxIter)
	policy := newton.NewJacobianPolicy()

	intg := &Integrator{
		problem:  problem,
		state:    st,
		callable: callable,
		dense:    dense,
		conv:     conv,
		policy:   policy,
		root:     nil,
		aug:      stiffode.NoAug{},
		history:  stiffode.NewStepHistory(),
	}

	jacobianFn := func(d la.Vector) (int, error) {
		return callable.AssembleJacobianDense(d, dense.Matrix())
	}
	intg.solver = newton.NewSolver(n, conv, policy, dense, callable.Residual, jacobianFn)

	if eqn.HasRoot() {
		intg.root = stiffode.NewRootFinder(eqn.Root.Nout())
		intg.root.Init(eqn.Root, st.Y, st.T)
	}

	return intg
}

func (intg *Integrator) Problem() *stiffode.Problem { return intg.problem }
func (intg *Integrator) Order() int                 { return intg.state.Order }
func (intg *Integrator) State() *stiffode.State      { return intg.state.State }

// AttachAugmentation wires a forward-sensitivity or adjoint augmentation
// into the step loop, per spec.md §4.9: each channel gets its own
// difference table (SDiff), seeded at first order from s0 the same way
// InitializeToFirstOrder seeds the primary Diff table from (y0, dy0).
func (intg *Integrator) AttachAugmentation(aug stiffode.AugmentedEquations, s0 []la.Vector) {
	np := aug.MaxIndex()
	s := intg.state
	n := len(s.Y)

	s.SDiff = make([]*stiffode.DenseMat, np)
	s.S = make([]la.Vector, np)
	s.Ds = make([]la.Vector, np)
	for i := 0; i < np; i++ {
		s.SDiff[i] = stiffode.NewDenseMat(n, diffCols)
		s.SDiff[i].SetColumn(0, s0[i])
		s.S[i] = append(la.Vector{}, s0[i]...)
		s.Ds[i] = stiffode.Zeros(n)
	}

	intg.aug = aug
}

// SetState replaces the current solution state. The BDF history (order,
// diff) is not preserved: a bare stiffode.State carries no history, so
// this reinitializes to first order at the new (y,t,h), matching
// bdf.rs's contract that set_state is a coarse reset.
func (intg *Integrator) SetState(s *stiffode.State) {
	intg.state.State = s
	intg.state.InitializeToFirstOrder(s.Dy)
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

// Checkpoint refreshes the Jacobian then clones the state, per
// spec.md's "taking a checkpoint refreshes the Jacobian first" note.
func (intg *Integrator) Checkpoint() *stiffode.State {
	intg.policy.Invalidate()
	return intg.state.Clone().State
}

// Step advances the integrator by one accepted BDF step, implementing
// the predict/correct/error-control/finalize/order-control loop of
// spec.md §4.7.
func (intg *Integrator) Step() (stiffode.StopReason, error) {
	s := intg.state

	for {
		h := s.H
		if math.Abs(h) < MinTimestep {
			return stiffode.StopReason{}, stiffode.ErrStepSizeTooSmall
		}

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
		if h != s.H {
			s.RescaleForStepChange(h / s.H)
		}
		s.H = h

		k := s.Order
		alphaK := Alpha(k)
		c := h * alphaK

		y0 := s.PredictY0()
		tPredict := s.T + h

		intg.callable.T = tPredict
		intg.callable.SetC(h, alphaK)
		intg.callable.SetPsiAndY0(s.Diff, alphaK, k, y0)

		d := stiffode.Zeros(len(y0))

		niter, err := intg.solver.Solve(d, c)
		intg.stats.RecordNewtonIter(niter)
		if err != nil {
			intg.stats.NumberOfNonlinearSolverFails++
			s.RescaleForStepChange(0.3)
			s.H *= 0.3
			intg.policy.Invalidate()
			continue
		}

		errNorm2 := ErrorConst2(k) * stiffode.SquaredNormWeighted(d, y0, intg.problem.Atol, intg.problem.Rtol)
		nErrChannels := 1

		np := intg.aug.MaxIndex()
		s0cols := make([]la.Vector, np)
		dsCols := make([]la.Vector, np)
		augFailed := false
		yTentative := append(la.Vector{}, y0...)
		for i := range yTentative {
			yTentative[i] += d[i]
		}
		for i := 0; i < np; i++ {
			s0cols[i] = s.PredictColumn(s.SDiff[i])
			psiI := psiFromDiff(s.SDiff[i], alphaK, k)
			ds, err := intg.aug.Column(i, intg.problem.Eqn, yTentative, intg.dense.Solve, intg.callable.JacVec, c, tPredict, s0cols[i], psiI)
			if err != nil {
				augFailed = true
				break
			}
			dsCols[i] = ds
			if intg.aug.IncludeInErrorControl() {
				errNorm2 += ErrorConst2(k) * stiffode.SquaredNormWeighted(ds, s0cols[i], intg.aug.Atol(), intg.aug.Rtol())
				nErrChannels++
			}
		}
		if augFailed {
			intg.stats.NumberOfNonlinearSolverFails++
			s.RescaleForStepChange(0.3)
			s.H *= 0.3
			intg.policy.Invalidate()
			continue
		}
		errNorm2 /= float64(nErrChannels)

		errNorm := math.Sqrt(errNorm2)
		if errNorm > 1.0 {
			intg.stats.NumberOfErrorTestFailures++
			factor := stepFactor(errNorm, k, niter)
			s.RescaleForStepChange(factor)
			s.H *= factor
			intg.policy.Invalidate()
			continue
		}

		for i := range y0 {
			y0[i] += d[i]
		}
		s.UpdateDiff(d)
		s.Y = y0
		s.T = tPredict
		s.Dy = s.Diff.Column(1)
		for i := range s.Dy {
			s.Dy[i] /= h
		}
		for i := 0; i < np; i++ {
			s.UpdateDiffMatrix(s.SDiff[i], dsCols[i])
			sNext := append(la.Vector{}, s0cols[i]...)
			for j := range sNext {
				sNext[j] += dsCols[i][j]
			}
			s.S[i] = sNext
			dsi := append(la.Vector{}, s.SDiff[i].Column(1)...)
			for j := range dsi {
				dsi[j] /= h
			}
			s.Ds[i] = dsi
		}
		s.NEqualSteps++
		intg.history.Record(s.T, h, s.Order, niter)
		intg.stats.NumberOfSteps++
		intg.stats.NLinSol = intg.solver.NLinSol
		intg.stats.NDecomp = intg.solver.NDecomp
		intg.stats.NumberOfLinearSolverSetups = intg.solver.NDecomp
		intg.stats.NFeval = intg.solver.NFeval
		intg.stats.NJeval = intg.solver.NJeval

		intg.controlOrder(errNorm, niter)

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

// stepFactor implements spec.md §4.10's PI-style factor, clamped to
// [MinFactor, MaxFactor].
func stepFactor(errNorm float64, order, niter int) float64 {
	safety := 0.9 * (2*float64(NewtonMaxIter) + 1) / (2*float64(NewtonMaxIter) + float64(niter))
	f := safety * math.Pow(errNorm, -1.0/float64(order+1))
	if f < MinFactor {
		f = MinFactor
	}
	if f > MaxFactor {
		f = MaxFactor
	}
	return f
}

// controlOrder implements spec.md §4.7 step 5: only after NEqualSteps
// exceeds the current order does it evaluate neighboring-order error
// estimates and possibly change order and step size.
func (intg *Integrator) controlOrder(errNorm float64, niter int) {
	s := intg.state
	k := s.Order
	if s.NEqualSteps <= k {
		return
	}

	type candidate struct {
		order  int
		factor float64
	}
	cands := []candidate{{k, stepFactor(errNorm, k, niter)}}

	if k > 1 {
		errKm1 := math.Sqrt(ErrorConst2(k-1) * stiffode.SquaredNormWeighted(s.Diff.Column(k), stiffode.Zeros(len(s.Y)), intg.problem.Atol, intg.problem.Rtol))
		if errKm1 > 0 {
			cands = append(cands, candidate{k - 1, stepFactor(errKm1, k-1, niter)})
		}
	}
	if k < MaxOrder {
		errKp1 := math.Sqrt(ErrorConst2(k+1) * stiffode.SquaredNormWeighted(s.Diff.Column(k+2), stiffode.Zeros(len(s.Y)), intg.problem.Atol, intg.problem.Rtol))
		if errKp1 > 0 {
			cands = append(cands, candidate{k + 1, stepFactor(errKp1, k+1, niter)})
		}
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.factor > best.factor {
			best = c
		}
	}

	if best.order != k {
		s.Order = best.order
		s.NEqualSteps = 0
	}
	if best.factor < MinThreshold || best.factor >= MaxThreshold || best.order != k {
		s.RescaleForStepChange(best.factor)
		s.H *= best.factor
	}
}

// Interpolate evaluates the BDF polynomial history at t within the
// current step [t-h, t].
func (intg *Integrator) Interpolate(t float64) (la.Vector, error) {
	s := intg.state
	if (t-s.T)*s.H > 1e3*stiffode.Epsilon*math.Abs(s.H) {
		return nil, stiffode.ErrInterpolationTimeAfterCurrentTime
	}
	if math.Abs(t-s.T) > math.Abs(s.H)+1e3*stiffode.Epsilon {
		return nil, stiffode.ErrInterpolationTimeOutsideCurrentStep
	}
	theta := (t - s.T) / s.H
	n := len(s.Y)
	y := append(la.Vector{}, s.Diff.Column(0)...)
	scale := 1.0
	for m := 1; m <= s.Order; m++ {
		scale *= (theta + float64(m-1)) / float64(m)
		col := s.Diff.Column(m)
		for i := 0; i < n; i++ {
			y[i] += scale * col[i]
		}
	}
	return y, nil
}

// InterpolateOut evaluates the output channel's difference history
// (GDiff) at t the same way Interpolate evaluates the state history.
// Step does not advance GDiff, so the result is the history as it was
// initialised, not the integral of the outputs over the steps taken.
func (intg *Integrator) InterpolateOut(t float64) (la.Vector, error) {
	s := intg.state
	if s.GDiff == nil {
		return nil, nil
	}
	if math.Abs(t-s.T) > math.Abs(s.H)+1e3*stiffode.Epsilon {
		return nil, stiffode.ErrInterpolationTimeOutsideCurrentStep
	}
	theta := (t - s.T) / s.H
	n := s.GDiff.Nrows()
	g := append(la.Vector{}, s.GDiff.Column(0)...)
	scale := 1.0
	for m := 1; m <= s.Order; m++ {
		scale *= (theta + float64(m-1)) / float64(m)
		col := s.GDiff.Column(m)
		for i := 0; i < n; i++ {
			g[i] += scale * col[i]
		}
	}
	return g, nil
}

// InterpolateSens evaluates each attached sensitivity/adjoint channel's
// difference-table history at t, the same backward-difference polynomial
// Interpolate evaluates for the primary solution.
func (intg *Integrator) InterpolateSens(t float64) ([]la.Vector, error) {
	s := intg.state
	if len(s.SDiff) == 0 {
		return nil, nil
	}
	if math.Abs(t-s.T) > math.Abs(s.H)+1e3*stiffode.Epsilon {
		return nil, stiffode.ErrInterpolationTimeOutsideCurrentStep
	}
	theta := (t - s.T) / s.H
	out := make([]la.Vector, len(s.SDiff))
	for ch, diff := range s.SDiff {
		n := diff.Nrows()
		y := append(la.Vector{}, diff.Column(0)...)
		scale := 1.0
		for m := 1; m <= s.Order; m++ {
			scale *= (theta + float64(m-1)) / float64(m)
			col := diff.Column(m)
			for i := 0; i < n; i++ {
				y[i] += scale * col[i]
			}
		}
		out[ch] = y
	}
	return out, nil
}

// Stats exposes the aggregate counters collected so far.
func (intg *Integrator) Stats() stiffode.Stats { return intg.stats }
