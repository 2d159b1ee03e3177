// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bdf

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// diffCols is MAX_ORDER+3: columns 0..=k+1 carry meaningful history at
// order k, column k+2 holds the latest correction before it is folded
// in, per spec.md §3.
const diffCols = MaxOrder + 3

// State extends the shared solver state with the BDF difference-matrix
// history and order-control bookkeeping.
type State struct {
	*stiffode.State

	Order        int
	NEqualSteps  int

	Diff  *stiffode.DenseMat // nstates x diffCols
	GDiff *stiffode.DenseMat // nout x diffCols, optional
	SDiff []*stiffode.DenseMat
	SGDiff []*stiffode.DenseMat
}

// NewState allocates a BDF state at order 1 for a problem with nstates
// states, nout output channels and naug sensitivity columns.
func NewState(nstates, nout, naug int) *State {
	s := &State{
		State: stiffode.NewState(nstates, nout, naug),
		Order: 1,
		Diff:  stiffode.NewDenseMat(nstates, diffCols),
	}
	if nout > 0 {
		s.GDiff = stiffode.NewDenseMat(nout, diffCols)
	}
	if naug > 0 {
		s.SDiff = make([]*stiffode.DenseMat, naug)
		s.SGDiff = make([]*stiffode.DenseMat, naug)
		for i := 0; i < naug; i++ {
			s.SDiff[i] = stiffode.NewDenseMat(nstates, diffCols)
			if nout > 0 {
				s.SGDiff[i] = stiffode.NewDenseMat(nout, diffCols)
			}
		}
	}
	return s
}

// InitializeToFirstOrder sets diff[:,0] = y, diff[:,1] = h*dy and resets
// the order and equal-step counters, the state bdf.rs's
// initialise_to_first_order puts a freshly constructed or just-rejected
// state into before the first predict of a run.
func (s *State) InitializeToFirstOrder(dy0 la.Vector) {
	s.Order = 1
	s.NEqualSteps = 0
	s.Diff.SetColumn(0, s.Y)
	hdy := append(la.Vector{}, dy0...)
	for i := range hdy {
		hdy[i] *= s.H
	}
	s.Diff.SetColumn(1, hdy)
}

// PredictColumn returns the zero-th-order prediction sum_{m=0}^{order}
// diff[:,m] for an arbitrary difference table, per spec.md §4.7 step 1.
// PredictY0 is this applied to the primary Diff table; the sensitivity
// channels reuse it against their own per-parameter SDiff tables, which
// share the same history recurrence.
func (s *State) PredictColumn(diff *stiffode.DenseMat) la.Vector {
	n := diff.Nrows()
	y0 := la.NewVector(n)
	for m := 0; m <= s.Order; m++ {
		col := diff.Column(m)
		for i := 0; i < n; i++ {
			y0[i] += col[i]
		}
	}
	return y0
}

// PredictY0 returns the zero-th-order prediction y0 = sum_{m=0}^{order}
// diff[:,m], per spec.md §4.7 step 1.
func (s *State) PredictY0() la.Vector { return s.PredictColumn(s.Diff) }

// UpdateDiffMatrix folds a correction d into an arbitrary difference
// table at the current order, per spec.md §4.7 step 4: diff[:,k+2] =
// d - diff[:,k+1]; diff[:,k+1] = d; then for i = k..0, diff[:,i] +=
// diff[:,i+1]. UpdateDiff is this applied to the primary Diff table; the
// sensitivity channels fold their own Newton corrections into their
// SDiff tables the same way.
func (s *State) UpdateDiffMatrix(diff *stiffode.DenseMat, d la.Vector) {
	k := s.Order
	n := len(d)
	dPrev := diff.Column(k + 1)
	newLast := make(la.Vector, n)
	for i := 0; i < n; i++ {
		newLast[i] = d[i] - dPrev[i]
	}
	diff.SetColumn(k+2, newLast)
	diff.SetColumn(k+1, d)
	for i := k; i >= 0; i-- {
		ci := diff.Column(i)
		ci1 := diff.Column(i + 1)
		for r := 0; r < n; r++ {
			ci[r] += ci1[r]
		}
		diff.SetColumn(i, ci)
	}
}

// UpdateDiff folds a correction d into the difference table at the
// current order, per spec.md §4.7 step 4.
func (s *State) UpdateDiff(d la.Vector) { s.UpdateDiffMatrix(s.Diff, d) }

// RescaleForStepChange rescales the active columns of Diff (and GDiff,
// SDiff, SGDiff when present) by rho, per spec.md §4.7 step 6.
func (s *State) RescaleForStepChange(rho float64) {
	ApplyStepSizeChange(s.Diff, s.Order, rho)
	if s.GDiff != nil {
		ApplyStepSizeChange(s.GDiff, s.Order, rho)
	}
	for _, d := range s.SDiff {
		ApplyStepSizeChange(d, s.Order, rho)
	}
	for _, d := range s.SGDiff {
		ApplyStepSizeChange(d, s.Order, rho)
	}
}

// Clone deep-copies the BDF state, used for checkpointing.
func (s *State) Clone() *State {
	c := &State{
		State:       s.State.Clone(),
		Order:       s.Order,
		NEqualSteps: s.NEqualSteps,
		Diff:        cloneDense(s.Diff),
	}
	if s.GDiff != nil {
		c.GDiff = cloneDense(s.GDiff)
	}
	for _, d := range s.SDiff {
		c.SDiff = append(c.SDiff, cloneDense(d))
	}
	for _, d := range s.SGDiff {
		c.SGDiff = append(c.SGDiff, cloneDense(d))
	}
	return c
}

func cloneDense(d *stiffode.DenseMat) *stiffode.DenseMat {
	c := stiffode.NewDenseMat(d.Nrows(), d.Ncols())
	for j := 0; j < d.Ncols(); j++ {
		c.SetColumn(j, d.Column(j))
	}
	return c
}
