package rottable

import (
	"github.com/edgepuzzle/tessera/tile"
)

// denseTable backs small key domains (the 1x1 table, typically) with a
// plain array indexed directly by key: no hashing, no pointer chasing
// past the slice header itself.
type denseTable struct {
	insertLock
	layout  tile.Layout
	buckets [][]*tile.Tile
	size    int
}

func newDenseTable(l tile.Layout) *denseTable {
	return &denseTable{
		layout:  l,
		buckets: make([][]*tile.Tile, l.KeyDomain()),
	}
}

func (d *denseTable) Insert(t *tile.Tile) {
	d.Lock()
	defer d.Unlock()
	for _, k := range variantKeys(d.layout, t) {
		d.buckets[k] = append(d.buckets[k], t)
	}
	d.size++
}

func (d *denseTable) Get(key uint64) []*tile.Tile {
	if int(key) >= len(d.buckets) {
		return emptyBucket
	}
	b := d.buckets[key]
	if b == nil {
		return emptyBucket
	}
	return b
}

func (d *denseTable) Size() int { return d.size }

func (d *denseTable) Randomize() {
	shuffleBuckets(d.buckets)
}

func (d *denseTable) BucketSizes() []int {
	sizes := make([]int, 0, len(d.buckets))
	for _, b := range d.buckets {
		if len(b) > 0 {
			sizes = append(sizes, len(b))
		}
	}
	return sizes
}
