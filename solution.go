// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import "github.com/cpmech/gosl/la"

// SolutionPoint is one recorded trajectory sample, optionally carrying
// sensitivity columns alongside the state. Grounded on
// ode_solver/problem.rs's OdeSolverSolutionPoint.
type SolutionPoint struct {
	T    float64
	Y    la.Vector
	Sens []la.Vector
}

// Solution accumulates trajectory points in increasing time order, the
// Go analogue of OdeSolverSolution's sorted-insert push/push_sens pair.
// It is a supplemented feature (spec.md is silent on a dense trajectory
// recorder): every integrator test in this module that needs a full
// history rather than point samples uses this instead of hand-rolled
// slices.
type Solution struct {
	Points []SolutionPoint
}

// NewSolution returns an empty trajectory recorder.
func NewSolution() *Solution {
	return &Solution{}
}

// Push inserts (t, y) keeping Points sorted by T. A duplicate T (within
// float equality) overwrites the existing entry rather than growing the
// slice, mirroring push's de-dup behaviour on a repeated checkpoint.
func (s *Solution) Push(t float64, y la.Vector) {
	s.insert(SolutionPoint{T: t, Y: append(la.Vector{}, y...)})
}

// PushSens inserts (t, y, sens) keeping Points sorted by T.
func (s *Solution) PushSens(t float64, y la.Vector, sens []la.Vector) {
	cp := make([]la.Vector, len(sens))
	for i, v := range sens {
		cp[i] = append(la.Vector{}, v...)
	}
	s.insert(SolutionPoint{T: t, Y: append(la.Vector{}, y...), Sens: cp})
}

func (s *Solution) insert(p SolutionPoint) {
	i := 0
	for i < len(s.Points) && s.Points[i].T < p.T {
		i++
	}
	if i < len(s.Points) && s.Points[i].T == p.T {
		s.Points[i] = p
		return
	}
	s.Points = append(s.Points, SolutionPoint{})
	copy(s.Points[i+1:], s.Points[i:])
	s.Points[i] = p
}

// Last returns the most recently recorded point, or the zero value and
// false if the solution is empty.
func (s *Solution) Last() (SolutionPoint, bool) {
	if len(s.Points) == 0 {
		return SolutionPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Len reports the number of recorded points.
func (s *Solution) Len() int { return len(s.Points) }
