// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// SquaredNormWeighted computes the weighted squared norm
//
//	‖x‖²_w(y,a,r) = (1/n) Σ_i (x_i / (a_i + r·|y_i|))²
//
// used throughout the Newton convergence test and the error controller.
// atol may be shorter than x when a single scalar tolerance channel is
// shared; in that case atol[0] is broadcast.
func SquaredNormWeighted(x, y la.Vector, atol la.Vector, rtol float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a := atol[i%len(atol)]
		denom := a + rtol*math.Abs(y[i])
		v := x[i] / denom
		sum += v * v
	}
	return sum / float64(n)
}

// NormWeighted is sqrt(SquaredNormWeighted(...)).
func NormWeighted(x, y la.Vector, atol la.Vector, rtol float64) float64 {
	return math.Sqrt(SquaredNormWeighted(x, y, atol, rtol))
}

// AbsVec writes the element-wise absolute value of x into dst.
func AbsVec(dst, x la.Vector) {
	for i := range x {
		dst[i] = math.Abs(x[i])
	}
}

// Zeros returns a new zero-filled vector of length n.
func Zeros(n int) la.Vector {
	return la.NewVector(n)
}

// FromElement returns a new vector of length n with every entry set to v.
func FromElement(n int, v float64) la.Vector {
	x := la.NewVector(n)
	for i := 0; i < n; i++ {
		x[i] = v
	}
	return x
}
