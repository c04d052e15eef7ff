package graph

import (
	"slices"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
)

// Order returns every schema reachable from root with each parent type
// ahead of its child types. When several types are ready, the one
// discovered first from root goes first, so the order follows declaration
// order and is stable across runs.
func Order(root *schema.Schema) ([]*schema.Schema, error) {
	nodes := root.Walk()
	rank := make(map[*schema.Schema]int, len(nodes))
	for i, n := range nodes {
		rank[n] = i
	}

	// waiting counts the links into each type whose parent is not yet placed.
	waiting := make(map[*schema.Schema]int, len(nodes))
	for _, n := range nodes {
		for _, l := range n.Links {
			waiting[l.Child]++
		}
	}

	// ready holds ranks in ascending order.
	var ready []int
	for i, n := range nodes {
		if waiting[n] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]*schema.Schema, 0, len(nodes))
	for len(ready) > 0 {
		n := nodes[ready[0]]
		ready = ready[1:]
		out = append(out, n)

		for _, l := range n.Links {
			waiting[l.Child]--
			if waiting[l.Child] > 0 {
				continue
			}
			r := rank[l.Child]
			k, _ := slices.BinarySearch(ready, r)
			ready = slices.Insert(ready, k, r)
		}
	}

	if len(out) != len(nodes) {
		return nil, NewRelationalCycleError(findCycle(root))
	}
	return out, nil
}

// findCycle returns the sheet names along the first type cycle reachable
// from root, ending with the repeated sheet.
func findCycle(root *schema.Schema) []string {
	var path []string
	onPath := make(map[*schema.Schema]bool)
	done := make(map[*schema.Schema]bool)

	var visit func(*schema.Schema) []string
	visit = func(s *schema.Schema) []string {
		if onPath[s] {
			return append(slices.Clone(path), s.Sheet)
		}
		if done[s] {
			return nil
		}
		onPath[s] = true
		path = append(path, s.Sheet)
		for _, l := range s.Links {
			if c := visit(l.Child); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		onPath[s] = false
		done[s] = true
		return nil
	}
	return visit(root)
}
