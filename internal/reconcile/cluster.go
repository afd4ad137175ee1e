package reconcile

import "bookden/pkg/models"

// disjointSet is an array-backed union-find over record indices with path
// compression; unions attach root to root.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}

// Cluster partitions records into equivalence classes: any two records that
// share any grouping key land in the same cluster, transitively. Clusters are
// emitted in order of their first member, and input order is preserved within
// each cluster. A record with no usable key is its own singleton.
func Cluster(records []models.NormalizedBook) [][]models.NormalizedBook {
	if len(records) == 0 {
		return nil
	}

	sets := newDisjointSet(len(records))
	byKey := make(map[string][]int)
	for idx, record := range records {
		for _, key := range clusterKeys(record) {
			byKey[key] = append(byKey[key], idx)
		}
	}

	for _, indexes := range byKey {
		if len(indexes) < 2 {
			continue
		}
		anchor := indexes[0]
		for _, other := range indexes[1:] {
			sets.union(anchor, other)
		}
	}

	groupOf := make(map[int]int)
	var clusters [][]models.NormalizedBook
	for idx, record := range records {
		root := sets.find(idx)
		g, ok := groupOf[root]
		if !ok {
			g = len(clusters)
			groupOf[root] = g
			clusters = append(clusters, nil)
		}
		clusters[g] = append(clusters[g], record)
	}
	return clusters
}
