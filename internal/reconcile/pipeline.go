package reconcile

import (
	"context"
	"log"
	"sort"
	"sync"

	"bookden/pkg/models"
)

// Source is implemented by each external bibliographic provider. Lookup
// never fails: network or parse problems degrade to an empty result inside
// the adapter.
type Source interface {
	Name() string
	Lookup(ctx context.Context, seed models.NormalizedBook) []models.NormalizedBook
}

// Reconciler runs the normalize -> query -> cluster -> merge pipeline and
// memoizes results per stable book identity. Sources keep their configured
// order; that order, not adapter completion order, decides the merge fold.
type Reconciler struct {
	sources []Source
	cache   *Cache
}

func NewReconciler(cache *Cache, sources ...Source) *Reconciler {
	if cache == nil {
		cache = NewCache(DefaultCacheCapacity)
	}
	return &Reconciler{sources: sources, cache: cache}
}

// Reconcile resolves one raw search doc to a single merged record. A cache
// hit skips the adapters entirely; concurrent misses on the same identity
// each run the pipeline, and the cache keeps the most recent result.
func (r *Reconciler) Reconcile(ctx context.Context, doc map[string]any) (models.NormalizedBook, error) {
	seed := Normalize(doc)

	key := CacheKey(seed)
	if key != "" {
		if cached, ok := r.cache.Get(key); ok {
			return cached, nil
		}
	}

	merged, err := r.collect(ctx, seed)
	if err != nil {
		return models.NormalizedBook{}, err
	}

	if key != "" {
		r.cache.Put(key, merged)
	}
	return merged, nil
}

// collect queries every source, clusters seed + results and returns the best
// merged cluster.
func (r *Reconciler) collect(ctx context.Context, seed models.NormalizedBook) (models.NormalizedBook, error) {
	// Query concurrently, but buffer per source so the fold order stays the
	// configured one regardless of completion order.
	buffered := make([][]models.NormalizedBook, len(r.sources))
	var wg sync.WaitGroup
	for i, src := range r.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			buffered[i] = src.Lookup(ctx, seed)
		}(i, src)
	}
	wg.Wait()

	candidates := []models.NormalizedBook{seed}
	for i, results := range buffered {
		if len(results) > 0 {
			log.Printf("[reconcile] %s: %d candidates", r.sources[i].Name(), len(results))
		}
		candidates = append(candidates, results...)
	}

	clusters := Cluster(candidates)
	merged := make([]models.NormalizedBook, 0, len(clusters))
	for _, cluster := range clusters {
		m, err := Merge(cluster)
		if err != nil {
			return models.NormalizedBook{}, err
		}
		merged = append(merged, m)
	}

	return pickBest(merged, seed.Source), nil
}

// pickBest selects one merged cluster: prefer clusters containing the seed's
// own source, then more ISBNs collected, then presence of a cover. Remaining
// ties keep discovery order.
func pickBest(merged []models.NormalizedBook, seedSource string) models.NormalizedBook {
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]

		aSeed, bSeed := hasSource(a, seedSource), hasSource(b, seedSource)
		if aSeed != bSeed {
			return aSeed
		}
		if len(a.ISBNs) != len(b.ISBNs) {
			return len(a.ISBNs) > len(b.ISBNs)
		}
		aCover, bCover := a.CoverURL != "", b.CoverURL != ""
		if aCover != bCover {
			return aCover
		}
		return false
	})
	return merged[0]
}

func hasSource(b models.NormalizedBook, source string) bool {
	for _, p := range b.Provenance {
		if p.Source == source {
			return true
		}
	}
	return false
}
