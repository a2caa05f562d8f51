package partition

import (
	"github.com/tidwall/rtree"
)

// BBox is a (lon, lat) rectangle in degrees, used to slice the segment
// stream into geographic chunks (spec.md §5's driver contract, "bbox"
// slicing mode).
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// BBoxRouter resolves a single (lon, lat) point to the index of a
// chunk whose box contains it, via an R-tree index over the chunk boxes —
// O(log n) instead of a linear scan over however many chunks the run
// was sliced into. This is the one consumer of the teacher's
// github.com/tidwall/rtree dependency remaining once the routing/CH
// packages (its only other user) were dropped; see DESIGN.md.
type BBoxRouter struct {
	tree *rtree.RTree
}

// NewBBoxRouter builds a router over boxes, indexed by their slice
// position — the same position callers pass to Assign as the chunk
// index.
func NewBBoxRouter(boxes []BBox) *BBoxRouter {
	tr := &rtree.RTree{}
	for i, b := range boxes {
		tr.Insert(
			[2]float64{b.MinLon, b.MinLat},
			[2]float64{b.MaxLon, b.MaxLat},
			i,
		)
	}
	return &BBoxRouter{tree: tr}
}

// ChunkFor returns the index of a chunk box containing (lon, lat), and
// false if no chunk box covers that point — callers should route such
// segments to a designated overflow chunk rather than dropping them.
func (r *BBoxRouter) ChunkFor(lon, lat float64) (int, bool) {
	found := -1
	r.tree.Search(
		[2]float64{lon, lat},
		[2]float64{lon, lat},
		func(min, max [2]float64, data interface{}) bool {
			found = data.(int)
			return false // first match is enough
		},
	)
	return found, found >= 0
}
