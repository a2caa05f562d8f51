// Package node implements the Node Interner of spec.md §4.2: a table
// that deduplicates quantized coordinates into dense, monotonically
// assigned OSM node ids.
//
// This is lifted out of the teacher's pkg/graph/builder.go Build
// function, where an equivalent nodeSet map + addNode closure
// deduplicated edge endpoints while building a CSR graph in one shot.
// Here it is promoted to a standalone, reusable type because the way
// builder needs to intern vertices incrementally, one segment at a
// time, rather than from a fully materialized edge list.
package node

import (
	"sort"

	"nvdb2osm/pkg/geo"
)

// Interner assigns dense int64 ids to quantized (lon, lat) pairs,
// returning the same id for coordinates that round to the same
// nanodegree grid point (spec.md §3 invariant: "two segments whose
// endpoints round to the same integer grid point share a node id").
type Interner struct {
	table  map[int64]int64 // packed coord -> node id
	nextID int64
	coords map[int64]coord // node id -> quantized coord, for PBF emission
}

type coord struct {
	lon, lat int32
}

// New creates an Interner that assigns ids starting at startID
// (spec.md §4.2: "monotonically assigned node id starting at
// node_id_start").
func New(startID int64) *Interner {
	return &Interner{
		table:  make(map[int64]int64),
		nextID: startID,
		coords: make(map[int64]coord),
	}
}

// Intern quantizes (lon, lat) and returns its node id, allocating a
// new one on first occurrence (spec.md §4.2 contract: "idempotent").
func (in *Interner) Intern(lon, lat float64) int64 {
	lonQ := geo.QuantizeDegrees(lon)
	latQ := geo.QuantizeDegrees(lat)
	key := geo.PackCoord(lonQ, latQ)

	if id, ok := in.table[key]; ok {
		return id
	}
	id := in.nextID
	in.nextID++
	in.table[key] = id
	in.coords[id] = coord{lon: lonQ, lat: latQ}
	return id
}

// Len returns the number of distinct points interned so far.
func (in *Interner) Len() int {
	return len(in.table)
}

// NextID returns the id that would be assigned to the next new point,
// i.e. node_id_start + distinct_points so far.
func (in *Interner) NextID() int64 {
	return in.nextID
}

// Coord returns the quantized coordinate for a previously interned
// node id. ok is false if id was never produced by this Interner.
func (in *Interner) Coord(id int64) (lon, lat int32, ok bool) {
	c, ok := in.coords[id]
	return c.lon, c.lat, ok
}

// Has reports whether id was produced by this Interner — used by the
// PBF encoder's fatal "way references unknown node" assertion
// (spec.md §4.4/§7).
func (in *Interner) Has(id int64) bool {
	_, ok := in.coords[id]
	return ok
}

// Nodes returns every interned node in ascending id order, ready for
// PutNode. The coordinate map is iterated in no particular order, so
// the result is sorted by id before it is returned.
func (in *Interner) Nodes() []ID {
	out := make([]ID, 0, len(in.coords))
	for id, c := range in.coords {
		out = append(out, ID{ID: id, Lon: c.lon, Lat: c.lat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ID pairs a node id with its quantized coordinate.
type ID struct {
	ID       int64
	Lon, Lat int32
}
