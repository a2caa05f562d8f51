package pbfwriter

// Node is one OSM node ready for encoding: an id and a quantized
// (lon, lat) pair in nanodegree units (granularity 100 — see
// pkg/geo.QuantizeDegrees). Nodes carry no tags in this system
// (spec.md §3).
type Node struct {
	ID      int64
	LonNano int32
	LatNano int32
}

// Way is one OSM way ready for encoding: an id, its node reference
// list (len >= 2, no consecutive duplicates — spec.md §3 invariants),
// and its tag set as ordered key/value pairs.
type Way struct {
	ID       int64
	NodeRefs []int64
	Tags     []TagPair
}

// TagPair is one key/value tag. A slice (not a map) because way tag
// order should be stable across runs for byte-identical output
// (spec.md §5 determinism guarantee).
type TagPair struct {
	Key, Value string
}

// encodeDenseNodes serializes nodes (already sorted by strictly
// increasing id — spec.md §4.4 ordering invariant) as a DenseNodes
// message: parallel delta-encoded id/lat/lon arrays. keys_vals is
// left empty since these nodes carry no tags.
func encodeDenseNodes(nodes []Node) *buffer {
	ids := make([]int64, len(nodes))
	lats := make([]int64, len(nodes))
	lons := make([]int64, len(nodes))

	var prevID, prevLat, prevLon int64
	for i, n := range nodes {
		ids[i] = int64(n.ID) - prevID
		lats[i] = int64(n.LatNano) - prevLat
		lons[i] = int64(n.LonNano) - prevLon
		prevID = n.ID
		prevLat = int64(n.LatNano)
		prevLon = int64(n.LonNano)
	}

	b := newBuffer()
	b.putPackedSVarints(1, ids)
	b.putPackedSVarints(8, lats)
	b.putPackedSVarints(9, lons)
	// Field 10 (keys_vals) intentionally omitted: no node tags.
	return b
}

// encodeWay serializes a single Way message. Node refs are delta-
// encoded (field 8); keys/vals (fields 2/3) are parallel string-table
// index arrays, one entry per tag.
func encodeWay(w Way, st *stringTable) *buffer {
	b := newBuffer()
	b.putVarintField(1, uint64(w.ID))

	if len(w.Tags) > 0 {
		keys := make([]uint64, len(w.Tags))
		vals := make([]uint64, len(w.Tags))
		for i, t := range w.Tags {
			keys[i] = uint64(st.intern(t.Key))
			vals[i] = uint64(st.intern(t.Value))
		}
		b.putPackedVarints(2, keys)
		b.putPackedVarints(3, vals)
	}

	refs := make([]int64, len(w.NodeRefs))
	var prev int64
	for i, r := range w.NodeRefs {
		refs[i] = r - prev
		prev = r
	}
	b.putPackedSVarints(8, refs)

	return b
}

// primitiveGroupDense wraps a DenseNodes payload in its
// PrimitiveGroup envelope (field 2).
func primitiveGroupDense(dense *buffer) *buffer {
	b := newBuffer()
	b.putMessageField(2, dense)
	return b
}

// primitiveGroupWays wraps a batch of already-encoded Way messages in
// their PrimitiveGroup envelope (field 3, repeated).
func primitiveGroupWays(ways []*buffer) *buffer {
	b := newBuffer()
	for _, w := range ways {
		b.putMessageField(3, w)
	}
	return b
}

// encodePrimitiveBlock assembles a full PrimitiveBlock message: the
// string table (field 1), granularity/offsets (fields 17/19/20, all
// defaults here — lat_offset = lon_offset = 0, granularity = 100),
// and the caller-supplied groups (field 2).
func encodePrimitiveBlock(st *stringTable, groups []*buffer) []byte {
	b := newBuffer()
	b.putMessageField(1, st.encode())
	for _, g := range groups {
		b.putMessageField(2, g)
	}
	b.putVarintField(17, uint64(100)) // granularity
	b.putVarintField(19, 0)           // lat_offset (plain int64, not zig-zag)
	b.putVarintField(20, 0)           // lon_offset (plain int64, not zig-zag)
	return b.Bytes()
}
