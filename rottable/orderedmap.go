package rottable

import (
	"github.com/edgepuzzle/tessera/tile"
)

// orderedMapTable backs a mid-sized key domain with a Go map, preserving
// each bucket's own slice semantics exactly like denseTable — only the
// outer key->bucket lookup differs. Used only when StrategyOrderedMap is
// requested explicitly; StrategyAuto never selects it.
type orderedMapTable struct {
	insertLock
	layout  tile.Layout
	buckets map[uint64][]*tile.Tile
	size    int
}

func newOrderedMapTable(l tile.Layout) *orderedMapTable {
	return &orderedMapTable{
		layout:  l,
		buckets: make(map[uint64][]*tile.Tile),
	}
}

func (o *orderedMapTable) Insert(t *tile.Tile) {
	o.Lock()
	defer o.Unlock()
	for _, k := range variantKeys(o.layout, t) {
		o.buckets[k] = append(o.buckets[k], t)
	}
	o.size++
}

func (o *orderedMapTable) Get(key uint64) []*tile.Tile {
	b, ok := o.buckets[key]
	if !ok {
		return emptyBucket
	}
	return b
}

func (o *orderedMapTable) Size() int { return o.size }

func (o *orderedMapTable) Randomize() {
	all := make([][]*tile.Tile, 0, len(o.buckets))
	for _, b := range o.buckets {
		all = append(all, b)
	}
	shuffleBuckets(all)
}

func (o *orderedMapTable) BucketSizes() []int {
	sizes := make([]int, 0, len(o.buckets))
	for _, b := range o.buckets {
		sizes = append(sizes, len(b))
	}
	return sizes
}
