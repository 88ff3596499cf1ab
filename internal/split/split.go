// Package split converts a flat partition vector into per-subgroup point
// sets and response sub-vectors, per spec §4.5: dense-reindex labels to
// 0..N-1, drop empty labels, preserve within-group order.
package split

import (
	"sort"

	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/points"
)

// Group is one subgroup's design points and response sub-vector.
type Group struct {
	Points *points.Set
	Y      []float64
}

// Split partitions all's n points and y according to clusters (any integer
// labels, any range). The returned groups are ordered by ascending original
// label value; this ordering is arbitrary but deterministic, and since
// aggregation treats subgroup order only as an index permutation, it does
// not affect numerical output (spec §8 invariant 3, partition invariance of
// labels).
func Split(all *points.Set, y []float64, clusters []int) ([]Group, error) {
	n := all.N()
	if len(y) != n {
		return nil, errs.InvalidShape("Y", n, len(y))
	}
	if len(clusters) != n {
		return nil, errs.InvalidShape("clusters", n, len(clusters))
	}

	labels := uniqueSorted(clusters)
	denseOf := make(map[int]int, len(labels))
	for idx, l := range labels {
		denseOf[l] = idx
	}

	indices := make([][]int, len(labels))
	for i, c := range clusters {
		g := denseOf[c]
		indices[g] = append(indices[g], i)
	}

	groups := make([]Group, 0, len(labels))
	for _, idx := range indices {
		if len(idx) == 0 {
			continue // empty groups are dropped, per spec §3/§4.5
		}
		ys := make([]float64, len(idx))
		for r, i := range idx {
			ys[r] = y[i]
		}
		groups = append(groups, Group{
			Points: all.Subset(idx),
			Y:      ys,
		})
	}
	return groups, nil
}

func uniqueSorted(clusters []int) []int {
	seen := make(map[int]struct{})
	labels := make([]int, 0)
	for _, c := range clusters {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			labels = append(labels, c)
		}
	}
	sort.Ints(labels)
	return labels
}
