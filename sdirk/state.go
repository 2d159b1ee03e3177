// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdirk

import (
	"github.com/cpmech/gosl/la"

	"github.com/dicksontsai/stiffode"
)

// State extends the shared solver state with the per-stage value
// buffer K the tableau needs, per spec.md §3's SDIRK extension.
type State struct {
	*stiffode.State

	K []la.Vector // tableau.S columns, each nstates long
}

// NewState allocates an SDIRK state for a problem with nstates states
// and the given tableau stage count.
func NewState(nstates, nout, stages int) *State {
	s := &State{
		State: stiffode.NewState(nstates, nout, 0),
		K:     make([]la.Vector, stages),
	}
	for i := range s.K {
		s.K[i] = stiffode.Zeros(nstates)
	}
	return s
}

// Clone deep-copies the SDIRK state for checkpointing.
func (s *State) Clone() *State {
	c := &State{State: s.State.Clone(), K: make([]la.Vector, len(s.K))}
	for i, k := range s.K {
		c.K[i] = append(la.Vector{}, k...)
	}
	return c
}
