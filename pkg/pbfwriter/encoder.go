// Package pbfwriter implements the PBF Encoder of spec.md §4.4: a
// writer for the binary OSM PBF container — a sequence of
// zlib-compressed fileblocks holding length-delimited protobuf
// messages, with a string table, delta- and zig-zag-encoded node
// coordinates/ids, and a leading header block.
package pbfwriter

import (
	"io"
)

// maxEntitiesPerBlock caps how many nodes or ways go in one
// PrimitiveBlock (spec.md §4.4: "up to ~8000 ... per block").
const maxEntitiesPerBlock = 8000

// Encoder writes a stream of nodes followed by a stream of ways to an
// OSM PBF file. Nodes must be written first, all of them, in strictly
// increasing id order, before any way is written (spec.md §4.4:
// "All node blocks precede all way blocks"); Encoder enforces this
// with a fatal assertion rather than silently reordering, since a
// caller violating it indicates a bug in the pipeline, not bad input
// data (spec.md §7).
type Encoder struct {
	w io.Writer

	nodeBuf      []Node
	lastNodeID   int64
	haveLastNode bool

	wayBuf      []Way
	lastWayID   int64
	haveLastWay bool

	wroteAnyWay bool

	nodesWritten uint64
	waysWritten  uint64

	bbox bboxAccumulator
}

// bboxAccumulator tracks the overall coordinate range for the
// optional HeaderBlock bbox, computed from the first/last nodes
// (spec.md §4.4) — but since the header must be written before any
// node is known, this system writes the header bbox-less and instead
// offers Bounds() for callers that want to report it separately.
type bboxAccumulator struct {
	minLon, minLat, maxLon, maxLat int32
	seen                           bool
}

func (a *bboxAccumulator) extend(lon, lat int32) {
	if !a.seen {
		a.minLon, a.maxLon = lon, lon
		a.minLat, a.maxLat = lat, lat
		a.seen = true
		return
	}
	if lon < a.minLon {
		a.minLon = lon
	}
	if lon > a.maxLon {
		a.maxLon = lon
	}
	if lat < a.minLat {
		a.minLat = lat
	}
	if lat > a.maxLat {
		a.maxLat = lat
	}
}

// NewEncoder creates an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteHeader writes the leading HeaderBlock fileblock. writingProgram
// is an optional free-text identifier; pass "" to omit it. Must be
// called exactly once, before any node or way is written.
func (e *Encoder) WriteHeader(writingProgram string) error {
	payload := encodeHeaderBlock(nil, writingProgram)
	return writeFileBlock(e.w, "OSMHeader", payload)
}

// PutNode buffers one node for encoding. Ids must arrive in strictly
// increasing order (spec.md §4.4 ordering invariant; §8 property 4).
// Buffered nodes are flushed to a PrimitiveBlock fileblock once
// maxEntitiesPerBlock have accumulated.
func (e *Encoder) PutNode(n Node) error {
	invariant(!e.wroteAnyWay, "PutNode called after a way was written")
	invariant(!e.haveLastNode || n.ID > e.lastNodeID,
		"node id %d is not strictly greater than previous id %d", n.ID, e.lastNodeID)
	e.lastNodeID = n.ID
	e.haveLastNode = true
	e.bbox.extend(n.LonNano, n.LatNano)

	e.nodeBuf = append(e.nodeBuf, n)
	e.nodesWritten++
	if len(e.nodeBuf) >= maxEntitiesPerBlock {
		return e.flushNodes()
	}
	return nil
}

// PutWay buffers one way for encoding. Ids must arrive in strictly
// increasing order, and every node it references must already have
// been written via PutNode (spec.md §3/§4.4/§7: a way referencing an
// unknown node is a fatal invariant violation). knownNodeIDs is
// queried to enforce that.
func (e *Encoder) PutWay(w Way, knownNodeIDs func(id int64) bool) error {
	if !e.wroteAnyWay {
		// First way: flush any remaining buffered nodes so node blocks
		// fully precede way blocks in the file.
		if err := e.flushNodes(); err != nil {
			return err
		}
		e.wroteAnyWay = true
	}
	invariant(!e.haveLastWay || w.ID > e.lastWayID,
		"way id %d is not strictly greater than previous id %d", w.ID, e.lastWayID)
	invariant(len(w.NodeRefs) >= 2, "way %d has fewer than 2 node refs", w.ID)
	for i := 1; i < len(w.NodeRefs); i++ {
		invariant(w.NodeRefs[i] != w.NodeRefs[i-1],
			"way %d has consecutive duplicate node ref %d", w.ID, w.NodeRefs[i])
	}
	if knownNodeIDs != nil {
		for _, ref := range w.NodeRefs {
			invariant(knownNodeIDs(ref), "way %d references unknown node %d", w.ID, ref)
		}
	}

	e.lastWayID = w.ID
	e.haveLastWay = true

	e.wayBuf = append(e.wayBuf, w)
	e.waysWritten++
	if len(e.wayBuf) >= maxEntitiesPerBlock {
		return e.flushWays()
	}
	return nil
}

// Close flushes any buffered entities. It does not close the
// underlying writer.
func (e *Encoder) Close() error {
	if err := e.flushNodes(); err != nil {
		return err
	}
	return e.flushWays()
}

// Counts returns the number of nodes and ways written so far.
func (e *Encoder) Counts() (nodes, ways uint64) {
	return e.nodesWritten, e.waysWritten
}

// BlockCount returns how many PrimitiveBlock fileblocks n entities are
// split across, given maxEntitiesPerBlock — exported so the partition
// driver can locate the node/way boundary inside a chunk's raw
// fileblock sequence without duplicating this package's batching
// constant.
func BlockCount(n uint64) int {
	if n == 0 {
		return 0
	}
	return int((n + maxEntitiesPerBlock - 1) / maxEntitiesPerBlock)
}

// Bounds returns the accumulated node coordinate bounding box and
// whether any node has been written.
func (e *Encoder) Bounds() (minLon, minLat, maxLon, maxLat int32, ok bool) {
	return e.bbox.minLon, e.bbox.minLat, e.bbox.maxLon, e.bbox.maxLat, e.bbox.seen
}

func (e *Encoder) flushNodes() error {
	if len(e.nodeBuf) == 0 {
		return nil
	}
	st := newStringTable()
	dense := encodeDenseNodes(e.nodeBuf)
	group := primitiveGroupDense(dense)
	payload := encodePrimitiveBlock(st, []*buffer{group})
	e.nodeBuf = e.nodeBuf[:0]
	return writeFileBlock(e.w, "OSMData", payload)
}

func (e *Encoder) flushWays() error {
	if len(e.wayBuf) == 0 {
		return nil
	}
	st := newStringTable()
	encoded := make([]*buffer, len(e.wayBuf))
	for i, w := range e.wayBuf {
		encoded[i] = encodeWay(w, st)
	}
	group := primitiveGroupWays(encoded)
	payload := encodePrimitiveBlock(st, []*buffer{group})
	e.wayBuf = e.wayBuf[:0]
	return writeFileBlock(e.w, "OSMData", payload)
}
