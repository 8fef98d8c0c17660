package statechart

import (
	"slices"

	"github.com/roach88/motionchart/internal/condition"
)

// StartCycles finds groups of nodes whose start conditions depend on each
// other. A node in such a group can only start if some operand outside the
// group (or a constant) makes its condition true on its own; otherwise it
// stays NOT_STARTED forever.
//
// Cycles are warnings by default because they may be intentional:
//   - A fallback branch that is gated on "not primary"
//   - A node that is deliberately never started
//
// The algorithm:
//  1. Build dependency -> dependent adjacency from start conditions only
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, or a single node that gates itself
//
// Nodes are visited in insertion order and each returned cycle is sorted by
// NodeID, so the result is deterministic.
func (g *Graph) StartCycles() [][]NodeID {
	n := len(g.nodes)
	adj := make([][]int, n)
	selfLoop := make([]bool, n)
	for to := range g.nodes {
		for _, leaf := range condition.Leaves(g.start[to]) {
			from := leaf.Index()
			adj[from] = append(adj[from], to)
			if from == to {
				selfLoop[to] = true
			}
		}
	}

	var (
		index   = 0
		stack   []int
		indices = make([]int, n)
		lowlink = make([]int, n)
		visited = make([]bool, n)
		onStack = make([]bool, n)
		cycles  [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		visited[v] = true
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if !visited[w] {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || selfLoop[scc[0]] {
				slices.Sort(scc)
				cycles = append(cycles, scc)
			}
		}
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			strongConnect(i)
		}
	}

	slices.SortFunc(cycles, func(a, b []int) int {
		return a[0] - b[0]
	})

	out := make([][]NodeID, len(cycles))
	for i, scc := range cycles {
		out[i] = make([]NodeID, len(scc))
		for j, v := range scc {
			out[i][j] = g.id(v)
		}
	}
	return out
}
