package rottable

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/edgepuzzle/tessera/tile"
)

// hashedVectorTable backs key domains above denseDomainCeiling with an
// open-addressed vector of slots, hashed with xxhash instead of Go's
// built-in map hash so that, given the same tile set, bucket placement is
// reproducible across runs — the validation harness relies on this to
// compare table sizes across strategies without the layout depending on
// map iteration order.
type hashedVectorTable struct {
	insertLock
	layout    tile.Layout
	slots     []hvSlot
	mask      uint64
	size      int
	slotsUsed int
}

type hvSlot struct {
	key     uint64
	used    bool
	buckets []*tile.Tile
}

// initialHVCapacity is a conservative starting vector size; it grows by
// doubling (and rehashing) once load factor crosses 0.75, same policy a
// hand-rolled open-addressing table would use in any language.
const initialHVCapacity = 1 << 16

func newHashedVectorTable(l tile.Layout) *hashedVectorTable {
	return &hashedVectorTable{
		layout: l,
		slots:  make([]hvSlot, initialHVCapacity),
		mask:   initialHVCapacity - 1,
	}
}

func hashKey(key uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return xxhash.Sum64(buf[:])
}

func (h *hashedVectorTable) Insert(t *tile.Tile) {
	h.Lock()
	defer h.Unlock()
	keys := variantKeys(h.layout, t)
	if h.slotsUsed+len(keys) > (len(h.slots)*3)/4 {
		h.grow()
	}
	for _, k := range keys {
		h.insertAt(k, t)
	}
	h.size++
}

func (h *hashedVectorTable) insertAt(key uint64, t *tile.Tile) {
	idx := hashKey(key) & h.mask
	for {
		s := &h.slots[idx]
		if !s.used {
			s.used = true
			s.key = key
			s.buckets = []*tile.Tile{t}
			h.slotsUsed++
			return
		}
		if s.key == key {
			s.buckets = append(s.buckets, t)
			return
		}
		idx = (idx + 1) & h.mask
	}
}

func (h *hashedVectorTable) grow() {
	old := h.slots
	newCap := len(old) * 2
	h.slots = make([]hvSlot, newCap)
	h.mask = uint64(newCap - 1)
	for _, s := range old {
		if !s.used {
			continue
		}
		idx := hashKey(s.key) & h.mask
		for h.slots[idx].used {
			idx = (idx + 1) & h.mask
		}
		h.slots[idx] = s
	}
}

func (h *hashedVectorTable) Get(key uint64) []*tile.Tile {
	idx := hashKey(key) & h.mask
	for {
		s := &h.slots[idx]
		if !s.used {
			return emptyBucket
		}
		if s.key == key {
			return s.buckets
		}
		idx = (idx + 1) & h.mask
	}
}

func (h *hashedVectorTable) Size() int { return h.size }

func (h *hashedVectorTable) Randomize() {
	all := make([][]*tile.Tile, 0, len(h.slots))
	for i := range h.slots {
		if h.slots[i].used {
			all = append(all, h.slots[i].buckets)
		}
	}
	shuffleBuckets(all)
}

func (h *hashedVectorTable) BucketSizes() []int {
	sizes := make([]int, 0, h.slotsUsed)
	for i := range h.slots {
		if h.slots[i].used {
			sizes = append(sizes, len(h.slots[i].buckets))
		}
	}
	return sizes
}
