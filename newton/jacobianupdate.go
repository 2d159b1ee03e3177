// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

// Phase names the event that is asking the jacobian-update policy for a
// decision, per spec.md §4.3.
type Phase int

const (
	FirstConvergenceFail Phase = iota
	SecondConvergenceFail
	ErrorTestFail
	StepSuccess
	Checkpoint
)

// Thresholds on the relative change of c = h*alpha_k since the last
// refresh/refactor. These are the same constants bdf.rs calls
// MIN_THRESHOLD/MAX_THRESHOLD; a faithful port copies them verbatim
// rather than re-derive them (spec.md §9 Open Questions).
const (
	RefreshThresholdLow  = 0.9
	RefreshThresholdHigh = 2.0
)

// JacobianPolicy decides, per step, whether the full Jacobian must be
// refreshed and whether the iteration matrix (M - c*J) must be
// re-factored, following spec.md §4.3:
//
//   - refresh on the first convergence failure at a step (retry with a
//     fresh Jacobian before giving up), on a second consecutive failure,
//     when c has drifted outside [RefreshThresholdLow, RefreshThresholdHigh]
//     of the c used at the last refresh, when a checkpoint is requested,
//     or when no Jacobian is known yet.
//   - refactor whenever a refresh happens, or c has drifted outside a
//     second, tighter window since the last factorization.
type JacobianPolicy struct {
	haveJacobian bool
	cAtRefresh   float64
	cAtFactor    float64

	refactorLow  float64
	refactorHigh float64
}

// NewJacobianPolicy builds a policy with the refactor window tighter
// than the refresh window, matching the "second, tighter threshold"
// language in spec.md §4.3.
func NewJacobianPolicy() *JacobianPolicy {
	return &JacobianPolicy{
		refactorLow:  0.95,
		refactorHigh: 1.05,
	}
}

// Decision reports what the caller must do before the next Newton
// solve.
type Decision struct {
	RefreshJacobian bool
	Refactor        bool
}

// Decide evaluates the policy for the current c and solver phase. The
// caller is responsible for calling Applied after it has actually
// performed the refresh/refactor, so the thresholds are measured from
// the c in force at the time of the last real update.
func (p *JacobianPolicy) Decide(c float64, phase Phase) Decision {
	refresh := false
	switch phase {
	case FirstConvergenceFail, SecondConvergenceFail, Checkpoint:
		refresh = true
	}
	if !p.haveJacobian {
		refresh = true
	}
	if p.haveJacobian && (c < p.cAtRefresh*RefreshThresholdLow || c > p.cAtRefresh*RefreshThresholdHigh) {
		refresh = true
	}

	refactor := refresh
	if !refactor && p.haveJacobian && (c < p.cAtFactor*p.refactorLow || c > p.cAtFactor*p.refactorHigh) {
		refactor = true
	}
	return Decision{RefreshJacobian: refresh, Refactor: refactor}
}

// Applied records that the caller refreshed and/or refactored using the
// given c, resetting the drift windows.
func (p *JacobianPolicy) Applied(c float64, d Decision) {
	if d.RefreshJacobian {
		p.haveJacobian = true
		p.cAtRefresh = c
	}
	if d.Refactor {
		p.cAtFactor = c
	}
}

// Invalidate forces the next Decide to report RefreshJacobian, used
// when the operator's parameters change underneath the solver.
func (p *JacobianPolicy) Invalidate() {
	p.haveJacobian = false
}
