// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import "github.com/cpmech/gosl/la"

// State is the shape shared by every integrator's solver state: current
// solution, derivative estimate, time and step, plus optional integrated
// output and sensitivity channels. BDF and SDIRK both embed State and
// add their own history representation (difference table vs. stage
// buffer).
type State struct {
	Y  la.Vector
	Dy la.Vector
	T  float64
	H  float64

	G  la.Vector // integrated output, optional
	Dg la.Vector

	S  []la.Vector // sensitivity columns, optional
	Ds []la.Vector
}

// NewState allocates a state sized for nstates/nout/naug. nout and naug
// may be zero.
func NewState(nstates, nout, naug int) *State {
	s := &State{
		Y:  Zeros(nstates),
		Dy: Zeros(nstates),
	}
	if nout > 0 {
		s.G = Zeros(nout)
		s.Dg = Zeros(nout)
	}
	if naug > 0 {
		s.S = make([]la.Vector, naug)
		s.Ds = make([]la.Vector, naug)
		for i := range s.S {
			s.S[i] = Zeros(nstates)
			s.Ds[i] = Zeros(nstates)
		}
	}
	return s
}

// Clone deep-copies the state (used to form a checkpoint before a
// critical decision, per spec.md §3's lifecycle note).
func (s *State) Clone() *State {
	c := &State{T: s.T, H: s.H}
	c.Y = append(la.Vector{}, s.Y...)
	c.Dy = append(la.Vector{}, s.Dy...)
	if s.G != nil {
		c.G = append(la.Vector{}, s.G...)
		c.Dg = append(la.Vector{}, s.Dg...)
	}
	if s.S != nil {
		c.S = make([]la.Vector, len(s.S))
		c.Ds = make([]la.Vector, len(s.Ds))
		for i := range s.S {
			c.S[i] = append(la.Vector{}, s.S[i]...)
			c.Ds[i] = append(la.Vector{}, s.Ds[i]...)
		}
	}
	return c
}

// CheckConsistentWithProblem verifies y has the right length for the
// problem's rhs operator.
func (s *State) CheckConsistentWithProblem(p *Problem) error {
	if len(s.Y) != p.Eqn.Rhs.Nstates() {
		return ErrConsistencyFailed
	}
	return nil
}

// StopReason is returned by Method.Step to tell the caller why control
// returned: a plain internal step, a user-requested stop time, or a
// root/event crossing (with a boolean mask of which root components
// changed sign).
type StopReason struct {
	Kind RootMask
	Mask []bool
	Time float64
}

// RootMask enumerates the three kinds of Step outcome from spec.md §6.
type RootMask int

const (
	InternalTimestep RootMask = iota
	TstopReached
	RootFound
)

// Method is the external interface every integrator (bdf.Integrator,
// sdirk.Integrator) implements, per spec.md §6.
type Method interface {
	Step() (StopReason, error)
	Interpolate(t float64) (la.Vector, error)
	InterpolateOut(t float64) (la.Vector, error)
	InterpolateSens(t float64) ([]la.Vector, error)
	State() *State
	SetState(s *State)
	SetStopTime(t float64) error
	Checkpoint() *State
	Problem() *Problem
	Order() int
}
