package cache

import (
	"bytes"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/zipsift"
)

// Extractor wraps a zipsift.Extractor so that byte-identical buffers are
// scanned once and replayed from the store afterwards.
//
// Extractor returns results only: scan statistics describe a live scan and
// have no meaning on a replay. Use the base extractor directly when Stats
// matter.
//
// Extractor uses singleflight to deduplicate concurrent extractions of the
// same buffer, so a miss storm triggers a single scan.
type Extractor struct {
	base  *zipsift.Extractor
	store Store
	group singleflight.Group
}

// New wraps base with caching backed by store.
func New(base *zipsift.Extractor, store Store) *Extractor {
	return &Extractor{
		base:  base,
		store: store,
	}
}

// Extract scans data, replaying the recorded results when the exact same
// buffer was scanned before.
//
// Returned slices are deep copies on every path; callers may mutate them
// without corrupting the store.
func (x *Extractor) Extract(data []byte) []zipsift.Result {
	key := digest.FromBytes(data)

	// Check the store first (fast path, avoids singleflight overhead).
	if results, ok := x.store.Get(key); ok {
		return cloneResults(results)
	}

	v, _, _ := x.group.Do(string(key), func() (any, error) {
		// Double-check the store: another goroutine may have recorded this
		// buffer between our store check and acquiring the flight.
		if results, ok := x.store.Get(key); ok {
			return results, nil
		}

		results, _ := x.base.Extract(data)
		_ = x.store.Put(key, results) //nolint:errcheck // caching is opportunistic

		return results, nil
	})

	results, _ := v.([]zipsift.Result) //nolint:errcheck // scan path never returns an error
	return cloneResults(results)
}

// cloneResults deep-copies results so stored payloads stay immutable.
func cloneResults(results []zipsift.Result) []zipsift.Result {
	if results == nil {
		return nil
	}
	out := make([]zipsift.Result, len(results))
	for i, r := range results {
		out[i] = zipsift.Result{
			Name: r.Name,
			JSON: bytes.Clone(r.JSON),
		}
	}
	return out
}
