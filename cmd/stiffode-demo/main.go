// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command stiffode-demo runs a benchmark stiff ODE through the BDF
// integrator and reports its statistics, optionally plotting the
// accepted step-size history with github.com/cpmech/gosl/plt.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/plt"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/bdf"
)

type robertson struct{ p la.Vector }

func (r *robertson) Nstates() int          { return 3 }
func (r *robertson) Nout() int             { return 0 }
func (r *robertson) Nparams() int          { return 0 }
func (r *robertson) SetParams(p la.Vector) { r.p = p }

func (r *robertson) CallInplace(x la.Vector, t float64, y la.Vector) {
	y[0] = -0.04*x[0] + 1.0e4*x[1]*x[2]
	y[2] = 3.0e7 * x[1] * x[1]
	y[1] = -y[0] - y[2]
}

func (r *robertson) JacMulInplace(x la.Vector, t float64, v la.Vector, y la.Vector) {
	m := stiffode.NewDenseMat(3, 3)
	r.JacobianInplace(x, t, m)
	m.Gemv(1.0, v, 0.0, y)
}

func (r *robertson) JacobianInplace(x la.Vector, t float64, m stiffode.Matrix) {
	m.SetColumn(0, la.Vector{-0.04, 0.04, 0})
	m.SetColumn(1, la.Vector{1.0e4 * x[2], -1.0e4*x[2] - 6.0e7*x[1], 6.0e7 * x[1]})
	m.SetColumn(2, la.Vector{1.0e4 * x[1], -1.0e4 * x[1], 0})
}

func main() {
	tEnd := flag.Float64("tend", 1000.0, "final integration time")
	plotPath := flag.String("plot", "", "directory to save a step-size-history plot into (empty skips plotting)")
	flag.Parse()

	rhs := &robertson{}
	init := func(p la.Vector, t float64) la.Vector { return la.Vector{1.0, 0.0, 0.0} }
	eqn := stiffode.NewEquations(rhs, nil, nil, nil, init, nil, true)
	atol := la.Vector{1e-8, 1e-14, 1e-6}
	problem := stiffode.NewProblem(eqn, 1e-4, atol, 0.0, 1e-6)

	intg := bdf.NewIntegrator(problem)
	if err := intg.SetStopTime(*tEnd); err != nil {
		fmt.Fprintln(os.Stderr, "stiffode-demo:", err)
		os.Exit(1)
	}

	for {
		reason, err := intg.Step()
		if err != nil {
			fmt.Fprintln(os.Stderr, "stiffode-demo: step failed:", err)
			os.Exit(1)
		}
		if reason.Kind == stiffode.TstopReached {
			break
		}
	}

	y := intg.State().Y
	stats := intg.Stats()
	io.Pf("y(%.1f) = %v\n", *tEnd, []float64(y))
	io.Pf("steps=%d  newton-iters=%d  jacobian-evals=%d  factorisations=%d\n",
		stats.NumberOfSteps, stats.NumberOfNonlinearSolverIter, stats.NJeval, stats.NDecomp)

	if *plotPath == "" {
		return
	}
	hist := intg.History()
	plt.Reset()
	plt.Plot(hist.T, hist.H, "'b.', clip_on=0, ls='none'")
	plt.Gll("$t$", "$h$", "")
	plt.Save(*plotPath, "robertson-steps")
}
