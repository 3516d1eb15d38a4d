// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
	"sort"
	"strings"
)

// resolveDependencies matches every consumer to the producers of the
// resources it reads, adds write-after-write and write-after-read ordering
// edges, and returns a topological order over all passes. Ties are broken
// by registration order, so bake is deterministic for a fixed declaration
// sequence.
//
// A cyclic graph is a fatal configuration error naming the participating
// passes.
func resolveDependencies(g *Graph) ([]int, error) {
	n := len(g.passes)
	succ := make([][]int, n)
	indegree := make([]int, n)

	addEdge := func(from, to int) {
		if from == to {
			// A pass may read and write the same name (chain source
			// feeding its own output); that is not a graph edge.
			return
		}
		for _, s := range succ[from] {
			if s == to {
				return
			}
		}
		succ[from] = append(succ[from], to)
		indegree[to]++
	}

	for _, res := range g.resources {
		// Write-after-write: successive producers of one name execute in
		// declaration order.
		for i := 1; i < len(res.writers); i++ {
			addEdge(res.writers[i-1], res.writers[i])
		}
		for _, reader := range res.readers {
			for _, writer := range res.writers {
				if writer < reader {
					// Read-after-write: the consumer sees the most recent
					// producer's contents.
					addEdge(writer, reader)
				} else {
					// Write-after-read: a later producer must not overtake
					// the consumer.
					addEdge(reader, writer)
				}
			}
		}
	}

	// Kahn's algorithm; the ready set always yields the lowest pass index
	// first, making the schedule stable across bakes.
	order := make([]int, 0, n)
	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, s := range succ[next] {
			indegree[s]--
			if indegree[s] == 0 {
				i := sort.SearchInts(ready, s)
				ready = append(ready, 0)
				copy(ready[i+1:], ready[i:])
				ready[i] = s
			}
		}
	}

	if len(order) != n {
		var stuck []string
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				stuck = append(stuck, g.passes[i].name)
			}
		}
		return nil, fmt.Errorf("%w: involving passes [%s]",
			ErrGraphHasCycle, strings.Join(stuck, ", "))
	}

	Logger().Debug("framegraph: schedule resolved", "order", scheduleNames(g, order))
	return order, nil
}

// scheduleNames renders a pass-index order as names for diagnostics.
func scheduleNames(g *Graph, order []int) string {
	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = g.passes[idx].name
	}
	return strings.Join(names, " -> ")
}

// dependsThroughTexture reports whether consumer reads any of producer's
// outputs through a general sampled (texture) input. Such an edge forces
// the producer to fully complete and precludes subpass merging.
func dependsThroughTexture(producer, consumer *Pass) bool {
	for _, in := range consumer.textureInputs {
		for _, w := range in.writers {
			if w == producer.index {
				return true
			}
		}
	}
	return false
}

// dependsOn reports whether consumer reads any resource produced by
// producer, through any input kind.
func dependsOn(producer, consumer *Pass) bool {
	for _, u := range consumer.inputs() {
		for _, w := range u.res.writers {
			if w == producer.index {
				return true
			}
		}
	}
	return false
}
