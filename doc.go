// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stiffode implements the core of a stiff ODE/DAE integration
// library: a variable-order BDF/NDF integrator and a Butcher-tableau
// SDIRK/ESDIRK integrator, sharing Newton iteration, Jacobian-reuse,
// error control, dense output and root-finding machinery, optionally
// augmented with forward-sensitivity or adjoint equations.
//
// It solves initial-value problems of the form
//
//	M(t) dy/dt = F(t, y; p),    y(t0) = y0(p)
//
// where M may be the identity, diagonal, or singular (yielding a DAE).
// Concrete linear algebra is delegated to github.com/cpmech/gosl/la;
// this package only ever calls through the Vector/Matrix/Op contracts
// defined here.
package stiffode

// Verbose turns on per-iteration Newton/step tracing via
// github.com/cpmech/gosl/io, the same msg idiom
// dicksontsai-gosl/num/nlsolver.go uses to print its residual table.
// Off by default since it is a firehose once a long integration runs.
var Verbose = false
