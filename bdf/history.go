// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bdf

import "github.com/dicksontsai/stiffode"

// RMatrix builds the (k+1)x(k+1) Shampine-Reichelt transform
// R(k,rho)[i,j] = prod_{m=1..i} (m-1 - rho*j)/m, with row 0 all ones,
// used to rescale the BDF difference history when the step size
// changes by factor rho. Grounded on spec.md §4.7 point 6 / bdf.rs's
// _compute_r.
func RMatrix(k int, rho float64) *stiffode.DenseMat {
	n := k + 1
	r := stiffode.NewDenseMat(n, n)
	for j := 0; j < n; j++ {
		r.M.Set(0, j, 1.0)
	}
	for i := 1; i < n; i++ {
		for j := 0; j < n; j++ {
			prod := 1.0
			for m := 1; m <= i; m++ {
				prod *= (float64(m-1) - rho*float64(j)) / float64(m)
			}
			r.M.Set(i, j, prod)
		}
	}
	return r
}

// UMatrix is R(k, 1), the transform used whenever the order changes
// without an accompanying step-size change.
func UMatrix(k int) *stiffode.DenseMat { return RMatrix(k, 1.0) }

// ApplyStepSizeChange rescales the first k+1 columns of diff in place
// by R(k,rho)*U(k), the identity diff.Cols[:k+1] <- diff.Cols[:k+1] * (R*U).
func ApplyStepSizeChange(diff *stiffode.DenseMat, k int, rho float64) {
	n := k + 1
	r := RMatrix(k, rho)
	u := UMatrix(k)
	ru := stiffode.NewDenseMat(n, n)
	stiffode.Gemm(1.0, r, u, 0.0, ru)

	nrows := diff.Nrows()
	out := stiffode.NewDenseMat(nrows, n)
	for i := 0; i < nrows; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for m := 0; m < n; m++ {
				sum += diff.M.Get(i, m) * ru.M.Get(m, j)
			}
			out.M.Set(i, j, sum)
		}
	}
	for i := 0; i < nrows; i++ {
		for j := 0; j < n; j++ {
			diff.M.Set(i, j, out.M.Get(i, j))
		}
	}
}
