package export

import (
	"errors"
	"fmt"
	"sort"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/task"
)

var errCycle = errors.New("cycle detected")

// orderItem is one item with the references its resource makes.
type orderItem struct {
	kind        bundle.Kind
	id          string
	resourceKey string
	refs        []task.Ref
}

// leavesFirst returns item indices so that every referenced item comes
// before the items referencing it. Ties keep input order. On a cycle the
// input order is returned together with errCycle.
func leavesFirst(items []orderItem) ([]int, error) {
	byID := map[string]int{}
	byKey := map[string]int{}

	for i, it := range items {
		byID[string(it.kind)+"|"+it.id] = i
		if it.resourceKey != "" {
			byKey[string(it.kind)+"|"+it.resourceKey] = i
		}
	}

	order, err := topoSort(len(items), func(i int) []int {
		var deps []int

		for _, ref := range items[i].refs {
			j, ok := byID[string(ref.Kind)+"|"+ref.ID]
			if ref.ResourceKey != "" {
				j, ok = byKey[string(ref.Kind)+"|"+ref.ResourceKey]
			}

			if ok && j != i {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		identity := make([]int, len(items))
		for i := range identity {
			identity[i] = i
		}

		return identity, err
	}

	return order, nil
}

// topoSort returns indices in execution order.
//
// Nodes are by index. depsFn(i) yields indices that must come before i.
// When multiple nodes are available the smallest index is picked.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, errCycle
	}

	return order, nil
}
