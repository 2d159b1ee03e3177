// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdirk

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
	"github.com/dicksontsai/stiffode/jac"
)

// Callable wraps one SDIRK stage residual as a nonlinear operator, per
// spec.md §4.6:
//
//	G(K_i) = M*K_i - F(t_n + c_i*h, u_i + h*gamma*K_i) = 0
type Callable struct {
	Eqn *stiffode.Equations

	H     float64
	Gamma float64
	T     float64 // t_n + c_i*h
	U     la.Vector

	y la.Vector // scratch: u + h*gamma*K
	f la.Vector // scratch: F(t,y)

	// jac caches the rhs operator's dense Jacobian assembled by the most
	// recent AssembleJacobianDense call, so the sensitivity augmentation
	// can form J_y·v without probing the Jacobian a second time.
	jac *stiffode.DenseMat
}

// NewCallable allocates scratch space for an nstates-dimensional stage
// residual.
func NewCallable(eqn *stiffode.Equations) *Callable {
	n := eqn.Rhs.Nstates()
	return &Callable{
		Eqn: eqn,
		y:   stiffode.Zeros(n),
		f:   stiffode.Zeros(n),
	}
}

// Residual implements newton.Residual for the stage unknown K_i.
func (c *Callable) Residual(k la.Vector, out la.Vector) {
	n := len(k)
	for i := 0; i < n; i++ {
		c.y[i] = c.U[i] + c.H*c.Gamma*k[i]
	}
	c.Eqn.Rhs.CallInplace(c.y, c.T, c.f)
	if c.Eqn.HasMass() {
		massed := stiffode.Zeros(n)
		c.Eqn.Mass.Gemv(c.T, 1.0, k, 0.0, massed)
		for i := 0; i < n; i++ {
			out[i] = massed[i] - c.f[i]
		}
		return
	}
	for i := 0; i < n; i++ {
		out[i] = k[i] - c.f[i]
	}
}

// AssembleJacobianDense forms (M - h*gamma*J) into dst, using the rhs
// operator's analytic Jacobian when available and falling back to a
// finite-difference probe otherwise — identical capability fallback to
// bdf.Callable.AssembleJacobianDense, since both share the §4.3 policy
// contract.
func (c *Callable) AssembleJacobianDense(k la.Vector, dst *stiffode.DenseMat) (nFeval int, err error) {
	n := len(k)
	for i := 0; i < n; i++ {
		c.y[i] = c.U[i] + c.H*c.Gamma*k[i]
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

	hg := c.H * c.Gamma
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			massTerm := 0.0
			if i == j && !c.Eqn.HasMass() {
				massTerm = 1.0
			}
			dst.M.Set(i, j, massTerm-hg*jmat.M.Get(i, j))
		}
	}
	if c.Eqn.HasMass() {
		ident := stiffode.Zeros(n)
		col := stiffode.Zeros(n)
		for j := 0; j < n; j++ {
			ident[j] = 1
			c.Eqn.Mass.Gemv(c.T, 1.0, ident, 0.0, col)
			for i := 0; i < n; i++ {
				dst.M.Set(i, j, col[i]-hg*jmat.M.Get(i, j))
			}
			ident[j] = 0
		}
	}
	return nFeval, nil
}

// JacVec multiplies the most recently assembled dense Jacobian of the
// rhs operator by v, the J_y·v product the sensitivity augmentation
// needs — reusing the Jacobian the primary Newton solve already
// assembled this stage instead of probing it again, per spec.md §4.9.
func (c *Callable) JacVec(v, out la.Vector) {
	n := len(v)
	for i := 0; i < n; i++ {
		out[i] = 0
		for j := 0; j < n; j++ {
			out[i] += c.jac.M.Get(i, j) * v[j]
		}
	}
}
