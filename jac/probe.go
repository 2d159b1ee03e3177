// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jac

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Func is a vector-valued residual y = f(x) evaluated in place, the
// shape every NonLinearOp.CallInplace call in this module already has.
type Func func(x []float64, y []float64)

// relStep is the classic sqrt(machine epsilon) forward-difference step
// fraction, the same order of magnitude gonum's fd.Forward formula uses
// internally.
const relStep = 1.4901161193847656e-08

// ByColoring estimates a dense Jacobian of f at x with one perturbed
// evaluation per color group instead of one per column: every column in
// a group is displaced simultaneously in a single call, which is only
// sound because ColumnGroups guarantees no two columns sharing a color
// also share a row — so each perturbed row's change can be attributed
// to exactly one column via rows[col], the same sparsity pattern
// ColumnGroups colored against. Total cost is len(groups)+1 evaluations
// (one shared baseline plus one per color), strictly fewer than Dense's
// ncols+1 whenever coloring found more than one column per color.
func ByColoring(f Func, x []float64, m int, groups [][]int, rows [][]int) *mat.Dense {
	n := len(x)
	dst := mat.NewDense(m, n, nil)

	base := make([]float64, m)
	f(x, base)

	steps := make([]float64, n)
	for i, xi := range x {
		steps[i] = relStep * math.Max(math.Abs(xi), 1)
	}

	xPert := make([]float64, n)
	yPert := make([]float64, m)
	for _, cols := range groups {
		if len(cols) == 0 {
			continue
		}
		copy(xPert, x)
		for _, c := range cols {
			xPert[c] += steps[c]
		}
		f(xPert, yPert)
		for _, c := range cols {
			for _, r := range rows[c] {
				dst.Set(r, c, (yPert[r]-base[r])/steps[c])
			}
		}
	}
	return dst
}

// Dense estimates the full dense Jacobian with no coloring, one
// perturbed evaluation per column — the fallback used when no sparsity
// pattern is available yet (e.g. before the first probe).
func Dense(f Func, x []float64, m int) *mat.Dense {
	dst := mat.NewDense(m, len(x), nil)
	wrapped := func(y, xx []float64) { f(xx, y) }
	fd.Jacobian(dst, wrapped, x, &fd.JacobianSettings{Formula: fd.Forward})
	return dst
}
