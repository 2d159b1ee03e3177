// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestConvergenceShrinkingUpdatesConverge(tst *testing.T) {
	chk.PrintTitle("Convergence01. shrinking updates converge")

	c := NewConvergence(1e-6, []float64{1e-8, 1e-8}, 10)
	c.SetScale([]float64{1, 1})

	status := Continue
	dy := []float64{1e-2, 1e-2}
	for i := 0; i < 8 && status != Converged; i++ {
		status = c.CheckNewIteration(dy)
		dy[0] *= 0.1
		dy[1] *= 0.1
	}
	if status != Converged {
		tst.Fatalf("expected convergence, got status=%d after %d iterations", status, c.Iter())
	}
}

func TestConvergenceGrowingUpdatesDiverge(tst *testing.T) {
	chk.PrintTitle("Convergence02. growing updates diverge")

	c := NewConvergence(1e-6, []float64{1e-8, 1e-8}, 10)
	c.SetScale([]float64{1, 1})

	dy := []float64{1e-2, 1e-2}
	status := c.CheckNewIteration(dy)
	if status != Continue {
		tst.Fatalf("first iteration should continue, got %d", status)
	}
	dy[0] *= 10
	dy[1] *= 10
	status = c.CheckNewIteration(dy)
	if status != Diverged {
		tst.Fatalf("expected divergence once rate>=1, got %d", status)
	}
}

func TestConvergenceMaxIter(tst *testing.T) {
	chk.PrintTitle("Convergence03. stalls at max iterations")

	// a single-iteration budget reports MaximumIterations as soon as the
	// lone update is neither at the machine floor nor (with fewer than
	// two iterations run) eligible for the Dahlquist rate test.
	c := NewConvergence(1e-6, []float64{1e-12}, 1)
	c.SetScale([]float64{1})

	status := c.CheckNewIteration([]float64{1e-3})
	if status != MaximumIterations {
		tst.Fatalf("expected MaximumIterations, got %d", status)
	}
}
