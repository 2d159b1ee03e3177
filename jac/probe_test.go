// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jac

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// TestByColoringMatchesDense checks that a coupled 3-state system
// recovers the same Jacobian whether probed column-by-column or
// through the grouping ColumnGroups builds (every pair of columns shares
// a row in this pattern, so each column gets its own color).
func TestByColoringMatchesDense(tst *testing.T) {
	chk.PrintTitle("Probe01. colored vs dense finite-difference Jacobian")

	f := func(x, y []float64) {
		y[0] = x[0]*x[0] + x[1]
		y[1] = x[1]*x[1] + x[2]
		y[2] = x[2]*x[2] + x[0]
	}
	x := []float64{1.0, 2.0, 3.0}

	dense := Dense(f, x, 3)

	rows := [][]int{{0, 2}, {0, 1}, {1, 2}}
	groups := ColumnGroups(3, rows)

	colored := ByColoring(f, x, 3, groups, rows)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := dense.At(i, j)
			c := colored.At(i, j)
			if math.Abs(d-c) > 1e-6 {
				tst.Fatalf("J[%d][%d]: dense=%g colored=%g", i, j, d, c)
			}
		}
	}
}

func TestColumnGroupsSeparatesConflicts(tst *testing.T) {
	chk.PrintTitle("Probe02. coloring keeps conflicting columns apart")

	rows := [][]int{{0}, {0}, {1}}
	groups := ColumnGroups(3, rows)
	colorOf := make(map[int]int)
	for c, cols := range groups {
		for _, col := range cols {
			colorOf[col] = c
		}
	}
	if colorOf[0] == colorOf[1] {
		tst.Fatalf("columns 0 and 1 share row 0 and must not share a color")
	}
}
