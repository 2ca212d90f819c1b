package pass

import (
	"fmt"
	"slices"
	"strings"
)

// Plan is one valid execution order for a set of requested passes.
type Plan struct {
	Order   []ID   // линейный порядок
	Batches [][]ID // волны независимых проходов
	// External lists precursors that were not requested; the front-end is
	// expected to have satisfied them before the first pass runs.
	External []ID
}

// CycleError is returned when precursor edges among the requested passes
// form a cycle. It is a configuration defect, detected before any pass runs.
type CycleError struct {
	Passes []ID // проходы, оставшиеся в цикле
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Passes))
	for i, id := range e.Passes {
		names[i] = id.String()
	}
	return fmt.Sprintf("pass dependency cycle among: %s", strings.Join(names, ", "))
}

// Schedule orders the requested passes so that every pass comes after its
// requested precursors. Precursors outside the request are reported in
// Plan.External and impose no ordering. Ties are broken by ID order, so the
// result is deterministic.
func Schedule(g Graph, requested []ID) (*Plan, error) {
	nodes := make([]ID, 0, len(requested))
	for _, id := range requested {
		if !id.IsValid() {
			return nil, fmt.Errorf("invalid pass id %d", uint8(id))
		}
		if _, ok := g[id]; !ok {
			return nil, fmt.Errorf("pass %s has no descriptor", id)
		}
		if !slices.Contains(nodes, id) {
			nodes = append(nodes, id)
		}
	}
	slices.Sort(nodes)

	index := make(map[ID]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	// edges[from] = passes that list `from` as a precursor
	edges := make([][]int, len(nodes))
	indeg := make([]int, len(nodes))
	var external []ID
	for to, id := range nodes {
		seen := make(map[ID]struct{}, len(g[id].Precursors))
		for _, pre := range g[id].Precursors {
			if _, dup := seen[pre]; dup {
				continue
			}
			seen[pre] = struct{}{}
			from, ok := index[pre]
			if !ok {
				if !slices.Contains(external, pre) {
					external = append(external, pre)
				}
				continue
			}
			edges[from] = append(edges[from], to)
			indeg[to]++
		}
	}
	slices.Sort(external)

	plan := &Plan{
		Order:    make([]ID, 0, len(nodes)),
		External: external,
	}

	current := make([]int, 0, len(nodes))
	for i := range nodes {
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]ID, len(current))
		for i, n := range current {
			batch[i] = nodes[n]
		}
		plan.Batches = append(plan.Batches, batch)

		next := make([]int, 0)
		for _, n := range current {
			plan.Order = append(plan.Order, nodes[n])
			visited++
			for _, to := range edges[n] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != len(nodes) {
		cyc := &CycleError{}
		for i := range nodes {
			if indeg[i] > 0 {
				cyc.Passes = append(cyc.Passes, nodes[i])
			}
		}
		return nil, cyc
	}
	return plan, nil
}
