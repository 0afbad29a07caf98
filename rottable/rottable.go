// Package rottable implements the rotation table: the keyed multi-map
// from a packed lookup key to every tile rotation that satisfies it.
// Three interchangeable storage strategies back the same small interface,
// mirroring the "container strategy chosen once, no dynamic dispatch on
// the hot path" shape the teacher codebase uses for its GADDAG storage
// (an in-memory array for small lexicons, a cached/shared one for large).
package rottable

import (
	"encoding/binary"
	"sort"
	"sync"

	"lukechampine.com/frand"

	"github.com/edgepuzzle/tessera/tile"
)

// Strategy names the concrete backing store, chosen once per table size
// by the orchestrator.
type Strategy int

const (
	// StrategyAuto lets NewTable pick dense vs. sparse from the key
	// domain size.
	StrategyAuto Strategy = iota
	StrategyDense
	StrategyOrderedMap
	StrategyHashedVector
)

// denseDomainCeiling is the largest key-domain size NewTable(StrategyAuto)
// will back with a plain array before switching to a sparse strategy;
// past this, a dense array wastes more memory than the macro-tile cascade
// it would be indexing.
const denseDomainCeiling = 1 << 22

// Table is the contract the DFS engine and bridge builder consume. Get is
// the hot-path method; it must never allocate on a hit.
type Table interface {
	Insert(t *tile.Tile)
	Get(key uint64) []*tile.Tile
	Size() int
	Randomize()

	// BucketSizes reports the occupancy of every non-empty bucket, off
	// the hot path — the validation harness folds this into a terminal
	// histogram to compare dense vs. sparse layout without depending on
	// either strategy's internal iteration order.
	BucketSizes() []int
}

// NewTable builds a table for the given layout, selecting a storage
// strategy automatically unless one is forced.
func NewTable(l tile.Layout, strategy Strategy) Table {
	domain := l.KeyDomain()
	if strategy == StrategyAuto {
		if domain <= denseDomainCeiling {
			strategy = StrategyDense
		} else {
			strategy = StrategyHashedVector
		}
	}
	switch strategy {
	case StrategyDense:
		return newDenseTable(l)
	case StrategyOrderedMap:
		return newOrderedMapTable(l)
	case StrategyHashedVector:
		return newHashedVectorTable(l)
	default:
		return newDenseTable(l)
	}
}

// variantKeys returns the up to four lookup keys a tile must be inserted
// under: its literal key, plus "any" substitutions on the left and/or top
// fields when those fields are non-border.
func variantKeys(l tile.Layout, t *tile.Tile) []uint64 {
	literal := t.LookupKey(l)
	keys := []uint64{literal}
	rIsBorder := t.Right == 0
	bIsBorder := t.Bottom == 0
	if t.Left != 0 {
		keys = append(keys, l.Pack(l.AnyLeft(), t.Top, rIsBorder, bIsBorder))
	}
	if t.Top != 0 {
		keys = append(keys, l.Pack(t.Left, l.AnyTop(), rIsBorder, bIsBorder))
	}
	if t.Left != 0 && t.Top != 0 {
		keys = append(keys, l.Pack(l.AnyLeft(), l.AnyTop(), rIsBorder, bIsBorder))
	}
	return keys
}

var emptyBucket []*tile.Tile

// shuffleBuckets assigns each tile a fresh random sort key and stable-
// sorts every provided bucket by it. Shared by all three strategies so
// randomize() behaves identically regardless of backing store.
func shuffleBuckets(buckets [][]*tile.Tile) {
	seen := make(map[*tile.Tile]bool)
	for _, b := range buckets {
		for _, t := range b {
			if !seen[t] {
				var randBuf [8]byte
				frand.Read(randBuf[:])
				t.Random = binary.LittleEndian.Uint64(randBuf[:])
				seen[t] = true
			}
		}
	}
	for _, b := range buckets {
		bucket := b
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Random < bucket[j].Random
		})
	}
}

// insertLock serializes writers across all three strategies, matching
// the distilled spec's "internal mutex serializes writers" contract for
// insert() while leaving Get() lock-free.
type insertLock struct {
	mu sync.Mutex
}

func (l *insertLock) Lock()   { l.mu.Lock() }
func (l *insertLock) Unlock() { l.mu.Unlock() }
