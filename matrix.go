// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Matrix is the contract a Jacobian-like operator matrix must satisfy,
// whether backed by a dense la.Matrix or a sparse la.Triplet/la.CCMatrix
// pair. Both DenseMat and SparseMat implement it.
type Matrix interface {
	Nrows() int
	Ncols() int

	// Gemv computes y <- alpha*M*x + beta*y.
	Gemv(alpha float64, x la.Vector, beta float64, y la.Vector)

	// SetColumn overwrites column j with v.
	SetColumn(j int, v la.Vector)

	// Sparsity returns the structural pattern, or nil for a dense matrix.
	Sparsity() *Sparsity
}

// DenseMat is a Matrix backed by la.Matrix (column-major dense storage).
type DenseMat struct {
	M *la.Matrix
}

// NewDenseMat allocates a zeroed nrows x ncols dense matrix.
func NewDenseMat(nrows, ncols int) *DenseMat {
	return &DenseMat{M: la.NewMatrix(nrows, ncols)}
}

// NewDenseMatFromDiagonal builds a diagonal dense matrix from v.
func NewDenseMatFromDiagonal(v la.Vector) *DenseMat {
	n := len(v)
	d := NewDenseMat(n, n)
	for i := 0; i < n; i++ {
		d.M.Set(i, i, v[i])
	}
	return d
}

func (d *DenseMat) Nrows() int { return d.M.M }
func (d *DenseMat) Ncols() int { return d.M.N }

func (d *DenseMat) Gemv(alpha float64, x la.Vector, beta float64, y la.Vector) {
	for i := 0; i < d.M.M; i++ {
		sum := 0.0
		for j := 0; j < d.M.N; j++ {
			sum += d.M.Get(i, j) * x[j]
		}
		y[i] = alpha*sum + beta*y[i]
	}
}

func (d *DenseMat) SetColumn(j int, v la.Vector) {
	for i := 0; i < d.M.M; i++ {
		d.M.Set(i, j, v[i])
	}
}

func (d *DenseMat) Column(j int) la.Vector {
	col := la.NewVector(d.M.M)
	for i := 0; i < d.M.M; i++ {
		col[i] = d.M.Get(i, j)
	}
	return col
}

func (d *DenseMat) ColumnAxpy(alpha float64, src int, beta float64, dst int) {
	for i := 0; i < d.M.M; i++ {
		d.M.Set(i, dst, alpha*d.M.Get(i, src)+beta*d.M.Get(i, dst))
	}
}

func (d *DenseMat) Sparsity() *Sparsity { return nil }

// Gemm computes C <- alpha*A*B + beta*C for dense matrices; used by the
// BDF step-size-change history transform (R*U applied to the diff
// matrix's leading columns).
func Gemm(alpha float64, a, b *DenseMat, beta float64, c *DenseMat) {
	if a.Ncols() != b.Nrows() || a.Nrows() != c.Nrows() || b.Ncols() != c.Ncols() {
		chk.Panic("gemm: incompatible dimensions a=%dx%d b=%dx%d c=%dx%d",
			a.Nrows(), a.Ncols(), b.Nrows(), b.Ncols(), c.Nrows(), c.Ncols())
	}
	for i := 0; i < c.Nrows(); i++ {
		for j := 0; j < c.Ncols(); j++ {
			sum := 0.0
			for k := 0; k < a.Ncols(); k++ {
				sum += a.M.Get(i, k) * b.M.Get(k, j)
			}
			c.M.Set(i, j, alpha*sum+beta*c.M.Get(i, j))
		}
	}
}

// Sparsity is an immutable column-major structural pattern: for each
// column j, the row indices held in Rows[Offsets[j]:Offsets[j+1]].
// It underlies SparseMat and is used by stiffode/jac to scatter
// finite-difference columns into a fixed-pattern value buffer.
type Sparsity struct {
	Nrow, Ncol int
	Offsets    []int // length Ncol+1
	Rows       []int // length Offsets[Ncol], row index per stored entry
}

// NewSparsityFromTriplets builds a column-major sparsity pattern from a
// (possibly duplicated, unordered) list of (row, col) pairs.
func NewSparsityFromTriplets(nrow, ncol int, pairs [][2]int) *Sparsity {
	buckets := make([][]int, ncol)
	seen := make([]map[int]bool, ncol)
	for j := range seen {
		seen[j] = make(map[int]bool)
	}
	for _, p := range pairs {
		i, j := p[0], p[1]
		if !seen[j][i] {
			seen[j][i] = true
			buckets[j] = append(buckets[j], i)
		}
	}
	offsets := make([]int, ncol+1)
	var rows []int
	for j := 0; j < ncol; j++ {
		offsets[j] = len(rows)
		rows = append(rows, buckets[j]...)
	}
	offsets[ncol] = len(rows)
	return &Sparsity{Nrow: nrow, Ncol: ncol, Offsets: offsets, Rows: rows}
}

// Indices enumerates all (row, col) pairs represented by the pattern.
func (s *Sparsity) Indices() [][2]int {
	out := make([][2]int, 0, len(s.Rows))
	for j := 0; j < s.Ncol; j++ {
		for k := s.Offsets[j]; k < s.Offsets[j+1]; k++ {
			out = append(out, [2]int{s.Rows[k], j})
		}
	}
	return out
}

// GetIndex maps parallel (rows, cols) logical coordinates to dense
// positions in the value buffer. Panics if a coordinate is not present
// in the pattern (the caller is expected to probe only declared entries).
func (s *Sparsity) GetIndex(rows, cols []int) []int {
	idx := make([]int, len(rows))
	for k := range rows {
		i, j := rows[k], cols[k]
		found := -1
		for p := s.Offsets[j]; p < s.Offsets[j+1]; p++ {
			if s.Rows[p] == i {
				found = p
				break
			}
		}
		if found < 0 {
			chk.Panic("sparsity: (%d,%d) not in pattern", i, j)
		}
		idx[k] = found
	}
	return idx
}

// Union returns the structural union of s and other: column j's row set
// is the union of the two patterns' row sets at column j.
func (s *Sparsity) Union(other *Sparsity) *Sparsity {
	if s.Ncol != other.Ncol || s.Nrow != other.Nrow {
		chk.Panic("sparsity union: shape mismatch")
	}
	var pairs [][2]int
	for _, ij := range s.Indices() {
		pairs = append(pairs, ij)
	}
	for _, ij := range other.Indices() {
		pairs = append(pairs, ij)
	}
	return NewSparsityFromTriplets(s.Nrow, s.Ncol, pairs)
}

// SparseMat is a Matrix backed by a fixed sparsity pattern with a dense
// value buffer in pattern order (gosl's Triplet assembled once and then
// reused via Start/Put for each refactorisation).
type SparseMat struct {
	Pattern *Sparsity
	Values  []float64
	trip    *la.Triplet
}

// NewSparseMatFromPattern allocates a zero-valued sparse matrix fixed to
// the given pattern (spec.md's `new_from_sparsity`).
func NewSparseMatFromPattern(nrows, ncols int, pattern *Sparsity) *SparseMat {
	if pattern == nil {
		pattern = &Sparsity{Nrow: nrows, Ncol: ncols}
	}
	nnz := len(pattern.Rows)
	trip := new(la.Triplet)
	trip.Init(nrows, ncols, nnz)
	return &SparseMat{Pattern: pattern, Values: make([]float64, nnz), trip: trip}
}

func (s *SparseMat) Nrows() int { return s.Pattern.Nrow }
func (s *SparseMat) Ncols() int { return s.Pattern.Ncol }

func (s *SparseMat) Sparsity() *Sparsity { return s.Pattern }

// Set stores value v at pattern position idx (as returned by GetIndex).
func (s *SparseMat) Set(idx int, v float64) { s.Values[idx] = v }

// Triplet materializes the current values into a gosl la.Triplet ready
// for la.Umfpack / la.NewSparseSolver factorisation.
func (s *SparseMat) Triplet() *la.Triplet {
	s.trip.Start()
	for j := 0; j < s.Pattern.Ncol; j++ {
		for k := s.Pattern.Offsets[j]; k < s.Pattern.Offsets[j+1]; k++ {
			s.trip.Put(s.Pattern.Rows[k], j, s.Values[k])
		}
	}
	return s.trip
}

func (s *SparseMat) Gemv(alpha float64, x la.Vector, beta float64, y la.Vector) {
	for i := range y {
		y[i] *= beta
	}
	for j := 0; j < s.Pattern.Ncol; j++ {
		for k := s.Pattern.Offsets[j]; k < s.Pattern.Offsets[j+1]; k++ {
			y[s.Pattern.Rows[k]] += alpha * s.Values[k] * x[j]
		}
	}
}

func (s *SparseMat) SetColumn(j int, v la.Vector) {
	for k := s.Pattern.Offsets[j]; k < s.Pattern.Offsets[j+1]; k++ {
		s.Values[k] = v[s.Pattern.Rows[k]]
	}
}
