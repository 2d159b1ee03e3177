// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// TestSolverCubicSystem solves the same 2-equation cubic system
// dicksontsai-gosl/num/t_nlsolver_test.go uses for TestNls01, rewritten
// against newton.Solver's Dahlquist-rate convergence test instead of
// nlsolver.go's fixed Ldx/fnewt check.
func TestSolverCubicSystem(tst *testing.T) {
	chk.PrintTitle("Solver01. 2 eqs cubic system")

	g := func(d, out la.Vector) {
		out[0] = math.Pow(d[0], 3.0) + d[1] - 1.0
		out[1] = -d[0] + math.Pow(d[1], 3.0) + 1.0
	}

	dense := NewDenseSolver(2)
	jacobian := func(d la.Vector) (int, error) {
		m := dense.Matrix().M
		m.Set(0, 0, 3.0*d[0]*d[0])
		m.Set(0, 1, 1.0)
		m.Set(1, 0, -1.0)
		m.Set(1, 1, 3.0*d[1]*d[1])
		return 0, nil
	}

	conv := NewConvergence(1e-6, []float64{1e-8, 1e-8}, 50)
	policy := NewJacobianPolicy()
	solver := NewSolver(2, conv, policy, dense, g, jacobian)

	// start close enough to (1,0) that the frozen (modified-Newton)
	// iteration matrix this policy reuses across iterations still
	// converges comfortably within the iteration budget.
	d := la.Vector{0.9, 0.05}
	_, err := solver.Solve(d, 1.0)
	if err != nil {
		tst.Fatalf("expected convergence, got error: %v", err)
	}

	out := la.NewVector(2)
	g(d, out)
	chk.Array(tst, "g(d) = 0", 1e-5, out, []float64{0, 0})
	chk.Array(tst, "d == (1,0)", 1e-4, d, []float64{1.0, 0.0})
}
