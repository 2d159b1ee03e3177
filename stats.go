// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

// Stats holds the aggregate counters spec.md §6 requires, extended with
// the gosl-native counters (NFeval, NJeval, NDecomp, NLinSol, NItMax)
// that mirror the field names gosl's own ode.Stat exposes (see
// dicksontsai-gosl/ode/t_ode_test.go) so a reader already familiar with
// gosl's ode package recognizes the shape immediately.
type Stats struct {
	NumberOfLinearSolverSetups      int
	NumberOfSteps                   int
	NumberOfErrorTestFailures       int
	NumberOfNonlinearSolverIter     int
	NumberOfNonlinearSolverFails    int

	NFeval int // rhs evaluations
	NJeval int // Jacobian evaluations
	NDecomp int // factorisations
	NLinSol int // linear solves
	NItMax  int // largest Newton iteration count seen in a single solve
}

// RecordNewtonIter folds one Newton solve's iteration count into NItMax.
func (s *Stats) RecordNewtonIter(niter int) {
	s.NumberOfNonlinearSolverIter += niter
	if niter > s.NItMax {
		s.NItMax = niter
	}
}
