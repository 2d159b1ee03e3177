// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdirk implements the Singly Diagonally Implicit Runge-Kutta
// integrator: Butcher-tableau-driven stage loop sharing the Newton,
// Jacobian-update and error-control machinery with stiffode/bdf.
// Grounded on spec.md §4.6/§4.8 and the same source family as
// stiffode/bdf (the source's sdirk module parallels its bdf module).
package sdirk

// Tableau describes a Singly Diagonally Implicit Runge-Kutta method: A
// is strictly-lower-triangular plus a constant diagonal Gamma, B is the
// advancing weights, BHat the embedded (lower-order) weights used for
// error estimation, C the stage abscissae, and FSAL marks whether the
// last stage's K can seed the next step's first stage.
type Tableau struct {
	Name  string
	S     int // number of stages
	Gamma float64
	A     [][]float64 // strictly lower triangular, s x s
	B     []float64
	BHat  []float64
	C     []float64
	Order int // embedded order p, used in the -1/(p+1) PI exponent
	FSAL  bool

	// Beta, if non-nil, is the dense-output interpolation matrix: row i
	// gives the polynomial-in-theta coefficients for stage i's weight.
	Beta [][]float64
}

// gammaTRBDF2 is the standard TR-BDF2 diagonal coefficient 2-sqrt(2).
const gammaTRBDF2 = 2.0 - 1.4142135623730951

// TRBDF2 is the classical 3-stage, L-stable, second-order TR-BDF2
// method (trapezoidal stage followed by a BDF2 stage), with its
// embedded first-order error estimate.
var TRBDF2 = Tableau{
	Name:  "TR-BDF2",
	S:     3,
	Gamma: gammaTRBDF2,
	A: [][]float64{
		{0, 0, 0},
		{gammaTRBDF2 / 2, gammaTRBDF2 / 2, 0},
		{trbdf2D1(), trbdf2D2(), gammaTRBDF2},
	},
	B:     []float64{trbdf2D1(), trbdf2D2(), gammaTRBDF2},
	BHat:  []float64{trbdf2Bhat1(), trbdf2Bhat2(), trbdf2Bhat3()},
	C:     []float64{0, gammaTRBDF2, 1},
	Order: 2,
	FSAL:  true,
}

func trbdf2D1() float64 {
	g := gammaTRBDF2
	return (1 - g) / (2 - g)
}
func trbdf2D2() float64 {
	g := gammaTRBDF2
	return 1.0/(g*(2-g)) - (1-g)/(2-g) - g
}

// trbdf2Bhat{1,2,3} are the classical second-order embedded weights
// (the divided-difference estimator used by MATLAB's ode23tb), kept as
// named literature constants rather than re-derived.
func trbdf2Bhat1() float64 {
	g := gammaTRBDF2
	return (1 - 1.0/(3*g)) / 2
}
func trbdf2Bhat2() float64 {
	g := gammaTRBDF2
	return (3*g + 1) / (6 * g)
}
func trbdf2Bhat3() float64 {
	return 1.0 / 3.0
}

// esdirk34Gamma is the diagonal coefficient of ESDIRK3(4), a 4-stage
// stiffly accurate ESDIRK scheme, third order with an embedded
// fourth-order-accurate error estimate (literature value from the
// Kvaerno family).
const esdirk34Gamma = 0.4358665215

// ESDIRK34 is a 4-stage ESDIRK3(4) method: the first stage is explicit
// (A[0] is all zero, C[0]=0), the remaining stages share Gamma on the
// diagonal, and the method is stiffly accurate (B equals the last row
// of A), which is what makes FSAL meaningful here.
var ESDIRK34 = Tableau{
	Name:  "ESDIRK3(4)",
	S:     4,
	Gamma: esdirk34Gamma,
	A: [][]float64{
		{0, 0, 0, 0},
		{esdirk34Gamma, esdirk34Gamma, 0, 0},
		{0.2576482460664272, 0.0935495805768343, esdirk34Gamma, 0},
		{0.3309229066361824, 0.0051782575117248, -0.2797717155688312, esdirk34Gamma},
	},
	B:     []float64{0.3309229066361824, 0.0051782575117248, -0.2797717155688312, esdirk34Gamma},
	BHat:  []float64{0.2963684673842321, 0.0786895980881789, 0.0678304117435624, esdirk34Gamma - 0.0070219556069960},
	C:     []float64{0, 2 * esdirk34Gamma, 0.6875, 1},
	Order: 3,
	FSAL:  true,
}
