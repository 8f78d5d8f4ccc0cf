// Package flat implements an exact nearest-neighbour vector index with
// binary file persistence. The index holds every vector in memory and
// answers queries with an exhaustive L2 scan, which beats approximate
// structures at the corpus sizes a single workstation indexes.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// ctxCheckInterval is how many entries a search scans between context
// cancellation checks.
const ctxCheckInterval = 1024

// entry is one stored vector. Slice position doubles as insertion rank:
// removals compact the slice without reordering survivors.
type entry struct {
	chunkID    string
	documentID string
	vector     []float32
}

// Index is a flat L2 nearest-neighbour index. One writer mutates it at a
// time; searches share a read lock and observe each write atomically.
type Index struct {
	mu sync.RWMutex

	path  string
	model string
	dims  int

	entries []entry

	needsRebuild bool
	dirty        bool
	closed       bool
}

// Open loads the index at path for the given model and dimensionality.
// A missing file yields an empty index. A file written for a different
// model or dimensionality, or one that cannot be parsed, is set aside:
// the index starts empty and NeedsRebuild reports true so the caller can
// re-embed the registry. The stale file stays on disk until the next
// successful Save.
func Open(path, model string, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid index dimensionality %d", dims)
	}

	idx := &Index{path: path, model: model, dims: dims}

	snap, err := loadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return idx, nil
	case errors.Is(err, errBadFormat):
		idx.needsRebuild = true
		return idx, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexIO, err)
	}

	if snap.model != model || snap.dims != dims {
		idx.needsRebuild = true
		return idx, nil
	}

	idx.entries = snap.entries
	return idx, nil
}

// Insert adds one entry to the index.
func (i *Index) Insert(ctx context.Context, e driven.VectorEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return domain.ErrIndexClosed
	}
	if len(e.Vector) != i.dims {
		return &domain.DimensionMismatchError{Want: i.dims, Got: len(e.Vector)}
	}

	// Copy the vector so callers can reuse their buffer.
	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)

	i.entries = append(i.entries, entry{chunkID: e.ChunkID, documentID: e.DocumentID, vector: vec})
	i.dirty = true
	return nil
}

// RemoveDocument drops every entry owned by documentID and returns how
// many were removed. Surviving entries keep their relative order.
func (i *Index) RemoveDocument(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return 0, domain.ErrIndexClosed
	}

	kept := i.entries[:0]
	removed := 0
	for _, e := range i.entries {
		if e.documentID == documentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed > 0 {
		// Zero the tail so removed vectors can be collected.
		for n := len(kept); n < len(i.entries); n++ {
			i.entries[n] = entry{}
		}
		i.entries = kept
		i.dirty = true
	}
	return removed, nil
}

// Search returns the k entries nearest to query by L2 distance,
// ascending. Equal distances rank in insertion order. A k of at least
// Len returns every entry.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, domain.ErrIndexClosed
	}
	if len(query) != i.dims {
		return nil, &domain.DimensionMismatchError{Want: i.dims, Got: len(query)}
	}
	if k <= 0 || len(i.entries) == 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, 0, len(i.entries))
	for n, e := range i.entries {
		if n%ctxCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    e.chunkID,
			DocumentID: e.documentID,
			Distance:   l2Distance(query, e.vector),
		})
	}

	// Hits were appended in insertion order, so a stable sort keeps
	// equal distances in that order.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of entries in the index.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimensions returns the index's established dimensionality.
func (i *Index) Dimensions() int {
	return i.dims
}

// Model returns the embedding model the index was opened for.
func (i *Index) Model() string {
	return i.model
}

// NeedsRebuild reports whether Open found on-disk state that could not
// serve the configured model and discarded it.
func (i *Index) NeedsRebuild() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.needsRebuild
}

// DocumentIDs returns the distinct document IDs present, sorted.
func (i *Index) DocumentIDs() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	seen := make(map[string]struct{}, len(i.entries))
	ids := make([]string, 0, len(i.entries))
	for _, e := range i.entries {
		if _, ok := seen[e.documentID]; ok {
			continue
		}
		seen[e.documentID] = struct{}{}
		ids = append(ids, e.documentID)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes every entry, keeping the dimensionality. It also lifts
// the rebuild flag: once cleared there is no stale content left.
func (i *Index) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return domain.ErrIndexClosed
	}
	if len(i.entries) == 0 && !i.needsRebuild {
		return nil
	}
	i.entries = nil
	i.needsRebuild = false
	i.dirty = true
	return nil
}

// Save persists the index. On failure the previous on-disk snapshot is
// retained.
func (i *Index) Save() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return domain.ErrIndexClosed
	}
	return i.saveLocked()
}

func (i *Index) saveLocked() error {
	if !i.dirty {
		return nil
	}
	if err := writeFile(i.path, i.model, i.dims, i.entries); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexIO, err)
	}
	i.dirty = false
	return nil
}

// Close persists any unsaved changes and marks the index unusable.
// Closing twice is a no-op.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	err := i.saveLocked()
	i.closed = true
	return err
}

// l2Distance is the Euclidean distance between two same-length vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for n := range a {
		d := float64(a[n]) - float64(b[n])
		sum += d * d
	}
	return math.Sqrt(sum)
}
