// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jac builds Jacobian matrices for operators that expose no
// analytic derivative: a greedy column coloring over the declared
// sparsity pattern groups columns that may be perturbed together, then
// ByColoring makes one forward-difference evaluation per color instead
// of one per column. Dense probes every column with gonum's diff/fd.
package jac

import "github.com/cpmech/gosl/graph"

// ColumnGroups partitions ncols columns into colors such that no two
// columns sharing a color also share a row in the sparsity pattern
// (rows[col] lists the row indices touched by that column).
//
// The column-conflict graph is built and queried with graph.Graph: each
// pair of columns sharing a row becomes an edge, and graph.Graph.Init's
// Shares map (edges incident to a vertex) gives the neighbor lookup the
// coloring loop needs. The coloring itself is hand-written — the pack's
// graph package implements shortest-path and METIS-adjacency helpers
// but no vertex-coloring algorithm.
func ColumnGroups(ncols int, rows [][]int) [][]int {
	rowOwner := make(map[int][]int) // row -> columns touching it
	for col, rs := range rows {
		for _, r := range rs {
			rowOwner[r] = append(rowOwner[r], col)
		}
	}

	var edges [][]int
	seen := make(map[[2]int]bool)
	for _, cols := range rowOwner {
		for _, a := range cols {
			for _, b := range cols {
				if a == b {
					continue
				}
				key := [2]int{a, b}
				if a < b {
					key = [2]int{a, b}
				} else {
					key = [2]int{b, a}
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				edges = append(edges, []int{key[0], key[1]})
			}
		}
	}

	var g graph.Graph
	neighbors := make([]map[int]bool, ncols)
	for i := range neighbors {
		neighbors[i] = make(map[int]bool)
	}
	if len(edges) > 0 {
		g.Init(edges, nil, nil, nil)
		for v, edgeIDs := range g.Shares {
			for _, e := range edgeIDs {
				a, b := g.Edges[e][0], g.Edges[e][1]
				other := a
				if v == a {
					other = b
				}
				neighbors[v][other] = true
			}
		}
	}

	color := make([]int, ncols)
	for i := range color {
		color[i] = -1
	}
	var groups [][]int
	for col := 0; col < ncols; col++ {
		used := make(map[int]bool)
		for other := range neighbors[col] {
			if color[other] >= 0 {
				used[color[other]] = true
			}
		}
		c := 0
		for used[c] {
			c++
		}
		color[col] = c
		for len(groups) <= c {
			groups = append(groups, nil)
		}
		groups[c] = append(groups[c], col)
	}
	return groups
}
