// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bdf implements the variable-order, variable-step Backward
// Differentiation Formula / NDF integrator: the multistep residual
// callable, the scaled-difference history and its step-size-change
// transform, and the integrator driving Newton iterations through
// github.com/dicksontsai/stiffode/newton. Grounded on
// original_source/src/ode_solver/bdf.rs.
package bdf

// MaxOrder is the highest BDF/NDF order this package supports.
const MaxOrder = 5

// Constants copied verbatim from the source's bdf.rs: these are
// numerical-literature values (the classical SciPy/MATLAB ode15s NDF
// port), not something to re-derive.
const (
	NewtonMaxIter    = 4
	MinFactor        = 0.5
	MaxFactor        = 2.1
	MinThreshold     = 0.9
	MaxThreshold     = 2.0
	MinTimestep      = 1e-32
)

// kappa holds the NDF correction constants for orders 1..5 (index 0 is
// unused, order k uses kappa[k]).
var kappa = [MaxOrder + 1]float64{0, -0.1850, -1.0 / 9.0, -0.0823, -0.0415, 0}

// gamma[k] = sum_{i=1}^{k} 1/i, the harmonic-number table the NDF
// formula's psi weighting uses.
var gamma [MaxOrder + 1]float64

// alpha[k] = 1/((1-kappa[k]) * gamma[k]), so that c = h*alpha[k] and the
// residual G(d) = d/(h*alpha[k]) - F(...) + ...
var alpha [MaxOrder + 1]float64

// errorConst2[k] = (kappa[k]*gamma[k] + 1/(k+1))^2, the squared error
// constant used by the error controller.
var errorConst2 [MaxOrder + 1]float64

func init() {
	h := 0.0
	for k := 1; k <= MaxOrder; k++ {
		h += 1.0 / float64(k)
		gamma[k] = h
		alpha[k] = 1 / ((1 - kappa[k]) * gamma[k])
		ec := kappa[k]*gamma[k] + 1.0/float64(k+1)
		errorConst2[k] = ec * ec
	}
}

// Alpha returns alpha[k] for order k in [1, MaxOrder].
func Alpha(k int) float64 { return alpha[k] }

// Gamma returns gamma[k] for order k in [1, MaxOrder].
func Gamma(k int) float64 { return gamma[k] }

// ErrorConst2 returns the squared error constant for order k.
func ErrorConst2(k int) float64 { return errorConst2[k] }

// Kappa returns the raw NDF correction constant for order k.
func Kappa(k int) float64 { return kappa[k] }
