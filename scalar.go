// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

// Epsilon is the machine epsilon for float64, the scalar field's finite
// EPSILON required by the weighted-norm and convergence calculations.
const Epsilon = 2.220446049250313e-16
