// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bdf

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dicksontsai/stiffode"
)

func TestRMatrixAtRhoOneIsU(tst *testing.T) {
	chk.PrintTitle("History01. R(k,1) == U(k)")
	for k := 1; k <= MaxOrder; k++ {
		r := RMatrix(k, 1.0)
		u := UMatrix(k)
		for i := 0; i <= k; i++ {
			for j := 0; j <= k; j++ {
				chk.Float64(tst, "R(k,1)==U", 1e-13, r.M.Get(i, j), u.M.Get(i, j))
			}
		}
	}
}

func TestRMatrixIsInvolutive(tst *testing.T) {
	chk.PrintTitle("History02. (R(k,rho)*U(k))*(R(k,1/rho)*U(k)) == I")
	for k := 1; k <= MaxOrder; k++ {
		for _, rho := range []float64{0.5, 1.5, 2.0, 0.3} {
			n := k + 1
			u := UMatrix(k)
			r := stiffode.NewDenseMat(n, n)
			stiffode.Gemm(1.0, RMatrix(k, rho), u, 0.0, r)
			rInv := stiffode.NewDenseMat(n, n)
			stiffode.Gemm(1.0, RMatrix(k, 1.0/rho), u, 0.0, rInv)
			prod := stiffode.NewDenseMat(n, n)
			stiffode.Gemm(1.0, r, rInv, 0.0, prod)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					expected := 0.0
					if i == j {
						expected = 1.0
					}
					chk.Float64(tst, "R*Rinv==I", 1e-8, prod.M.Get(i, j), expected)
				}
			}
		}
	}
}
