// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bdf

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/jac"
)

// Callable wraps the BDF multistep residual as a nonlinear operator in
// Newton-correction form, per spec.md §4.5:
//
//	G(d) = (M/c)*d - F(t, y0+d) + (M/c)*psi = 0
//
// where d = y - y0 is the correction being solved for.
type Callable struct {
	Eqn *stiffode.Equations

	C   float64
	T   float64
	Y0  la.Vector
	Psi la.Vector

	y   la.Vector // scratch: y0+d
	f   la.Vector // scratch: F(t,y)
	tmp la.Vector // scratch: d+psi, or M*(d+psi)

	// jac caches the rhs operator's dense Jacobian assembled by the most
	// recent AssembleJacobianDense call, so the sensitivity augmentation
	// can form J_y·v without probing the Jacobian a second time.
	jac *stiffode.DenseMat
}

// NewCallable allocates scratch space for an nstates-dimensional
// problem.
func NewCallable(eqn *stiffode.Equations) *Callable {
	n := eqn.Rhs.Nstates()
	return &Callable{
		Eqn: eqn,
		y:   stiffode.Zeros(n),
		f:   stiffode.Zeros(n),
		tmp: stiffode.Zeros(n),
	}
}

// SetC records the BDF scalar prefactor c = h*alpha_k.
func (c *Callable) SetC(h, alphaK float64) { c.C = h * alphaK }

// psiFromDiff computes psi = alphaK * sum_{m=1}^{order} gamma[m]*diff[:,m],
// the predictor term SetPsiAndY0 forms for the primary residual, factored
// out so the sensitivity channels (which keep their own difference table
// per parameter) can reuse the same recurrence.
func psiFromDiff(diff *stiffode.DenseMat, alphaK float64, order int) la.Vector {
	n := diff.Nrows()
	psi := stiffode.Zeros(n)
	for m := 1; m <= order; m++ {
		col := diff.Column(m)
		g := Gamma(m) * alphaK
		for i := 0; i < n; i++ {
			psi[i] += g * col[i]
		}
	}
	return psi
}

// SetPsiAndY0 computes psi = alphaK * sum_{m=1}^{order} gamma[m]*diff[:,m]
// and records the zero-th-order prediction y0, following bdf.rs's
// predict_using_diff / the psi term of the NDF residual.
func (c *Callable) SetPsiAndY0(diff *stiffode.DenseMat, alphaK float64, order int, y0 la.Vector) {
	c.Psi = psiFromDiff(diff, alphaK, order)
	c.Y0 = append(la.Vector{}, y0...)
}

// JacVec multiplies the most recently assembled dense Jacobian of the
// rhs operator by v, the J_y·v product the sensitivity augmentation
// needs — reusing the Jacobian the primary Newton solve already
// assembled this step instead of probing it again, per spec.md §4.9.
func (c *Callable) JacVec(v, out la.Vector) {
	n := len(v)
	for i := 0; i < n; i++ {
		out[i] = 0
		for j := 0; j < n; j++ {
			out[i] += c.jac.M.Get(i, j) * v[j]
		}
	}
}

// residual implements newton.Residual: G(d) -> out.
func (c *Callable) Residual(d la.Vector, out la.Vector) {
	n := len(d)
	for i := 0; i < n; i++ {
		c.y[i] = c.Y0[i] + d[i]
		c.tmp[i] = (d[i] + c.Psi[i]) / c.C
	}
	c.Eqn.Rhs.CallInplace(c.y, c.T, c.f)
	if c.Eqn.HasMass() {
		massed := stiffode.Zeros(n)
		c.Eqn.Mass.Gemv(c.T, 1.0, c.tmp, 0.0, massed)
		for i := 0; i < n; i++ {
			out[i] = massed[i] - c.f[i]
		}
		return
	}
	for i := 0; i < n; i++ {
		out[i] = c.tmp[i] - c.f[i]
	}
}

// AssembleJacobianDense forms (M/c - J) into dst using the rhs
// operator's analytic Jacobian when available (JacobianProvider),
// falling back to a finite-difference probe via stiffode/jac otherwise.
func (c *Callable) AssembleJacobianDense(d la.Vector, dst *stiffode.DenseMat) (nFeval int, err error) {
	n := len(d)
	for i := 0; i < n; i++ {
		c.y[i] = c.Y0[i] + d[i]
	}

	jmat := stiffode.NewDenseMat(n, n)
	if jp, ok := c.Eqn.Rhs.(stiffode.JacobianProvider); ok {
		jp.JacobianInplace(c.y, c.T, jmat)
	} else {
		f := func(x, y []float64) {
			c.Eqn.Rhs.CallInplace(la.Vector(x), c.T, la.Vector(y))
		}
		dense := jac.Dense(f, []float64(c.y), n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				jmat.M.Set(i, j, dense.At(i, j))
			}
		}
		nFeval = n
	}
	c.jac = jmat

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			massTerm := 0.0
			if i == j {
				massTerm = 1.0 / c.C
			}
			if c.Eqn.HasMass() {
				massTerm = 0.0
			}
			dst.M.Set(i, j, massTerm-jmat.M.Get(i, j))
		}
	}
	if c.Eqn.HasMass() {
		massDense := stiffode.NewDenseMat(n, n)
		ident := stiffode.Zeros(n)
		col := stiffode.Zeros(n)
		for j := 0; j < n; j++ {
			ident[j] = 1
			c.Eqn.Mass.Gemv(c.T, 1.0/c.C, ident, 0.0, col)
			massDense.SetColumn(j, col)
			ident[j] = 0
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				dst.M.Set(i, j, massDense.M.Get(i, j)-jmat.M.Get(i, j))
			}
		}
	}
	return nFeval, nil
}
