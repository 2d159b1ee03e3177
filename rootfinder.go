// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// RootFinder implements spec.md §4.4: it remembers the last observed
// event-vector value and, after a step, bisects the accepted interval
// to bracket the earliest sign change in any component.
type RootFinder struct {
	Nout   int
	gPrev  la.Vector
	tPrev  float64
	maxIts int
	tol    float64
}

// NewRootFinder allocates a root finder for an event function with nout
// components.
func NewRootFinder(nout int) *RootFinder {
	return &RootFinder{Nout: nout, gPrev: Zeros(nout), maxIts: 100, tol: 1e-10}
}

// Init records the event-vector value at the integration's starting
// point.
func (r *RootFinder) Init(root NonLinearOp, y la.Vector, t float64) {
	root.CallInplace(y, t, r.gPrev)
	r.tPrev = t
}

// Interp is the caller-supplied dense-output function used to evaluate
// y at intermediate times while bisecting.
type Interp func(t float64) (la.Vector, error)

// CheckRoot scans [tPrev, tNow] for a sign change in any component of
// root, bisecting with interp until the bracket shrinks below tolerance
// or g is numerically zero. It returns (root time, mask, true) on a
// detected event, or (_, _, false) if no component changed sign.
func (r *RootFinder) CheckRoot(interp Interp, root NonLinearOp, yNow la.Vector, tNow float64) (float64, []bool, bool) {
	gNow := Zeros(r.Nout)
	root.CallInplace(yNow, tNow, gNow)

	mask := make([]bool, r.Nout)
	any := false
	for i := 0; i < r.Nout; i++ {
		if sign(r.gPrev[i]) != sign(gNow[i]) {
			mask[i] = true
			any = true
		}
	}
	if !any {
		copyVec(r.gPrev, gNow)
		r.tPrev = tNow
		return 0, nil, false
	}

	tLo, tHi := r.tPrev, tNow
	for it := 0; it < r.maxIts; it++ {
		if math.Abs(tHi-tLo) < r.tol {
			break
		}
		tMid := 0.5 * (tLo + tHi)
		yMid, err := interp(tMid)
		if err != nil {
			break
		}
		gMid := Zeros(r.Nout)
		root.CallInplace(yMid, tMid, gMid)

		crossedLow := false
		for i := 0; i < r.Nout; i++ {
			if mask[i] && sign(r.gPrev[i]) != sign(gMid[i]) {
				crossedLow = true
				break
			}
		}
		if allNearZero(gMid, mask, r.tol) {
			tLo, tHi = tMid, tMid
			break
		}
		if crossedLow {
			tHi = tMid
		} else {
			tLo = tMid
		}
	}

	copyVec(r.gPrev, gNow)
	r.tPrev = tNow
	return tHi, mask, true
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func allNearZero(g la.Vector, mask []bool, tol float64) bool {
	for i, m := range mask {
		if m && math.Abs(g[i]) > tol {
			return false
		}
	}
	return true
}

// copyVec is a la.Vector convenience missing from the gosl API surface
// this module sees: dst[i] = src[i] for equal-length vectors.
func copyVec(dst, src la.Vector) {
	for i := range src {
		dst[i] = src[i]
	}
}
