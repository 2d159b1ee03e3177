// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// LinearSolver factors and solves the iteration matrix (M - c*J) built
// by the owning integrator. Two backends mirror dicksontsai-gosl's
// num.NlSolver dense/sparse split: DenseSolver wraps la.MatInv, and
// SparseSolver wraps la.Umfpack over a la.Triplet.
type LinearSolver interface {
	// Factor refactors against the current matrix contents.
	Factor() error
	// Solve computes x such that matrix*x = rhs, overwriting x in place.
	Solve(x, rhs la.Vector) error
}

// DenseSolver factors a dense iteration matrix by explicit inversion,
// the same approach nlsolver.go's useDn branch takes with la.MatInv.
type DenseSolver struct {
	n    int
	mat  *la.Matrix
	wrap *stiffode.DenseMat
	inv  *la.Matrix
}

// NewDenseSolver allocates a dense solver for an n x n matrix. The
// caller fills Matrix() with (M - c*J) before calling Factor.
func NewDenseSolver(n int) *DenseSolver {
	mat := la.NewMatrix(n, n)
	return &DenseSolver{n: n, mat: mat, wrap: &stiffode.DenseMat{M: mat}, inv: la.NewMatrix(n, n)}
}

// Matrix exposes the backing dense matrix for in-place assembly.
func (d *DenseSolver) Matrix() *stiffode.DenseMat { return d.wrap }

func (d *DenseSolver) Factor() error {
	la.MatInv(d.inv, d.mat, false)
	return nil
}

func (d *DenseSolver) Solve(x, rhs la.Vector) error {
	for i := 0; i < d.n; i++ {
		x[i] = 0
		for j := 0; j < d.n; j++ {
			x[i] += d.inv.Get(i, j) * rhs[j]
		}
	}
	return nil
}

// SolveTranspose computes x such that matrix^T*x = rhs, reusing the same
// factorization (x = inv^T * rhs) without refactoring. The adjoint
// augmentation uses this to avoid asking for a second factorization of
// the transposed iteration matrix, per spec.md §4.9's "reuses the
// transposed factorization path" language.
func (d *DenseSolver) SolveTranspose(x, rhs la.Vector) error {
	for i := 0; i < d.n; i++ {
		x[i] = 0
		for j := 0; j < d.n; j++ {
			x[i] += d.inv.Get(j, i) * rhs[j]
		}
	}
	return nil
}

// SparseSolver factors a sparse iteration matrix with UMFPACK, the same
// approach nlsolver.go's sparse branch takes through la.Umfpack and
// la.Triplet.
type SparseSolver struct {
	n       int
	trip    la.Triplet
	lis     la.Umfpack
	ready   bool
	Symmetric bool
}

// NewSparseSolver allocates a sparse solver over an n x n matrix with
// room for nnz nonzero entries.
func NewSparseSolver(n, nnz int) *SparseSolver {
	s := &SparseSolver{n: n}
	s.trip.Init(n, n, nnz)
	return s
}

// Triplet exposes the backing triplet for in-place assembly via
// Start/Put, following la.Triplet's usual fill pattern.
func (s *SparseSolver) Triplet() *la.Triplet { return &s.trip }

func (s *SparseSolver) Factor() error {
	if !s.ready {
		s.lis.Init(&s.trip, &la.SpArgs{Symmetric: s.Symmetric})
		s.ready = true
	}
	s.lis.Fact()
	return nil
}

func (s *SparseSolver) Solve(x, rhs la.Vector) error {
	if !s.ready {
		chk.Panic("newton: SparseSolver.Solve called before Factor")
	}
	s.lis.Solve(x, rhs, false)
	return nil
}
