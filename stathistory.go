// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

// StepHistory records one entry per accepted step, for diagnostics and
// plotting: the time reached, the step size just used, the method
// order in force, and the Newton iteration count the step consumed.
type StepHistory struct {
	T     []float64
	H     []float64
	Order []int
	Niter []int
}

// NewStepHistory allocates an empty history.
func NewStepHistory() *StepHistory { return &StepHistory{} }

// Record appends one accepted step's diagnostics.
func (h *StepHistory) Record(t, step float64, order, niter int) {
	h.T = append(h.T, t)
	h.H = append(h.H, step)
	h.Order = append(h.Order, order)
	h.Niter = append(h.Niter, niter)
}

// Len reports the number of recorded steps.
func (h *StepHistory) Len() int { return len(h.T) }
