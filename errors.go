// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stiffode

import "errors"

// Sentinel errors surfaced to the host, per spec.md §6/§7. Recoverable
// failures (Newton non-convergence, error-test failures, a failed
// sensitivity solve, a singular factorisation) are handled locally by
// the integrators and never reach the caller directly; only the ones
// below can escape a Step/SetStopTime/Interpolate/NewState call.
var (
	ErrStepSizeTooSmall                    = errors.New("stiffode: step size fell below the minimum timestep")
	ErrStopTimeBeforeCurrentTime           = errors.New("stiffode: stop time lies behind the current time in the integration direction")
	ErrInterpolationTimeOutsideCurrentStep = errors.New("stiffode: interpolation time lies outside the current step")
	ErrInterpolationTimeAfterCurrentTime   = errors.New("stiffode: interpolation time lies ahead of the current time")
	ErrSensitivitySolveFailed              = errors.New("stiffode: sensitivity Newton solve failed to converge")
	ErrFailedToGetMutableReference         = errors.New("stiffode: equations bundle has more than one owner")
	ErrLinearSolveFailure                  = errors.New("stiffode: linear solve failed (singular factorisation)")
	ErrNewtonDidNotConverge                = errors.New("stiffode: Newton iteration did not converge")
	ErrConsistencyFailed                   = errors.New("stiffode: initial state is not consistent with a singular mass matrix")
)
